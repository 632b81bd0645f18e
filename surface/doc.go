// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package surface models client surfaces as seen by the commit path.
//
// A Surface is a client-owned drawable that receives attach and commit
// requests. Each surface carries exactly one role, assigned once through the
// Compositor and never changed afterwards:
//
//   - Toplevel: an xdg_toplevel application window
//   - Popup: an xdg_popup attached to a parent surface
//   - LayerSurface: a wlr-layer-shell surface anchored to an output
//
// Role is a closed variant. Code that dispatches on it uses a type switch
// over the three concrete role types and panics on anything else.
//
// # Role attributes
//
// Protocol state that several subsystems read (most importantly whether the
// initial configure was sent) lives in an AttributeStore keyed by surface
// id. Every entry has its own mutex and is only reachable through
// AttributeStore.With, so a caller never holds the lock beyond its callback.
//
// # Buffers
//
// Attach stages a buffer; LoadBuffer, called at the start of commit
// handling, makes it the current buffer visible to renderers.
package surface
