// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package comp is the commit path of a Wayland compositor.
//
// Every time a client commits a surface, [State.Commit] coordinates, in a
// fixed order:
//
//  1. making the committed buffer current
//  2. the initial configure handshake of new toplevels, mapping them once
//     the client answered with a buffer
//  3. the initial configure of new layer surfaces
//  4. the initial configure of popups
//  5. interactive resize, workspace bookkeeping and window captures of
//     mapped windows
//  6. early import of the buffer to the render nodes showing it
//  7. popup bookkeeping
//  8. layer-shell arrangement of the surface's output
//  9. workspace captures the commit makes possible
//  10. a render request for every output showing the surface
//
// A commit of a toplevel or layer surface whose initial configure was not
// answered yet stops after step 2 or 3: nothing downstream may treat the
// surface as live before that.
//
// Window and workspace captures that cannot ride a frame are rendered by
// idle tasks on the event loop, after Commit returns. Call [State.Dispatch]
// from the event loop to run them.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] or [WithLogger] to
// enable structured logging through log/slog.
package comp
