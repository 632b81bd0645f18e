// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package render decides which capture attempts ride each output's next
// frame and fills capture buffers in software.
//
// # Adapter
//
// After a commit, Adapter.Schedule walks the outputs the surface is visible
// on. For each output it extends the commit's frame batch with the
// attempts queued directly against that output, keeps the attempts whose
// session targets that output and asks the backend to render the output
// with them attached.
//
// # Software
//
// Software implements screencopy.Renderer on the CPU. It composites the
// client buffers of a window, workspace or output into the capture buffer
// with golang.org/x/image/draw and fingerprints the composited content so a
// capture that would produce the same pixels reports no damage.
package render
