// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package screencopy schedules capture sessions against surface commits.
//
// A Session is a client request to capture an output, a workspace (possibly
// one that is not shown anywhere) or a single window into client buffers.
// Each capture attempt is a Pending pair of session and BufferParams waiting
// in exactly one Queue: the queue of the output, workspace or window the
// session targets.
//
// On every commit the Scheduler resolves pending attempts:
//
//   - window attempts of the committed window become deferred render tasks
//   - workspace attempts whose workspace is shown on its output join the
//     Batch attached to the output's next frame
//   - workspace attempts for the exact offscreen (output, workspace) pair
//     that changed become deferred render tasks
//   - anything else stays queued, in order
//
// Deferred tasks run on the event loop after the commit handler returns.
// Each outcome is resolved the same way, whether it comes from a deferred
// task or from a backend frame:
//
//   - no damage: the attempt returns to its home queue unchanged
//   - success: the session is marked rendered and the client notified
//   - *RenderError: logged, the session fails with the error's reason
//
// A session the client closed is dropped silently at every step.
package screencopy
