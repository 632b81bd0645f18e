// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package shell is an in-memory desktop shell: it owns windows, the
// elements wrapping them, workspaces, seats, popups and layer-shell
// surfaces, and answers the layout queries the commit path asks.
//
// The shell does not decide window placement beyond the simplest policy
// (new windows open at the origin of the output they are mapped on). It
// exists so the commit path has real state to drive.
//
// # Lifecycle
//
// A toplevel starts as a PendingWindow until the commit path maps it onto
// an output with MapWindow. A layer surface starts as a PendingLayer until
// MapLayer inserts it into its output's LayerMap, which arranges the layers
// and sends the configure carrying the computed size.
//
// # Screencopy queues
//
// Windows, workspaces and outputs each own a screencopy.Queue of capture
// attempts waiting for content. The shell only stores them; the commit
// path decides when they are drained.
package shell
