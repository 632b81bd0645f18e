// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package backend provides the output backends the commit path renders and
// imports through.
//
// # Backend Registration
//
// Backends register a Factory under a name. The kms and headless backends
// are registered on import; New selects one by name, or the best available
// one when the name is empty:
//
//	b, err := backend.New("", backend.Config{Nodes: nodes})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Frames
//
// ScheduleRender does not render. It records a Frame for the output,
// coalescing repeated requests until the next Flush, which is the point
// where a real backend would wait for vblank. Flush fills the capture
// buffers attached to each frame and reports the outcome to a Resolver.
//
// # Available Backends
//
//   - "kms": outputs are driven by GPU render nodes; committed buffers are
//     imported early to the node of every output showing them
//   - "headless": no GPU; early import is a no-op
package backend
