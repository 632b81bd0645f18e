// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package shell

import (
	"slices"

	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/surface"
	"github.com/Elias-Graf/cosmic-comp/workspace"
)

// Workspace is a set of elements assigned to an output. It is shown when it
// is the active workspace of that output.
type Workspace struct {
	handle   workspace.Handle
	name     string
	output   *output.Output
	elements []*Element
	pending  *screencopy.Queue

	commits    uint64
	lastCommit surface.ID
}

func newWorkspace(name string, o *output.Output) *Workspace {
	return &Workspace{
		handle:  workspace.NewHandle(),
		name:    name,
		output:  o,
		pending: screencopy.NewQueue("workspace " + name),
	}
}

// Handle returns the workspace handle.
func (w *Workspace) Handle() workspace.Handle { return w.handle }

// Name returns the workspace name.
func (w *Workspace) Name() string { return w.name }

// Output returns the output the workspace is assigned to.
func (w *Workspace) Output() *output.Output { return w.output }

// Elements returns the mapped elements, bottom to top.
func (w *Workspace) Elements() []*Element { return w.elements }

// PendingBuffers returns the queue of workspace captures waiting for
// content.
func (w *Workspace) PendingBuffers() *screencopy.Queue { return w.pending }

// Commit records that s, a surface shown in the workspace, committed new
// state.
func (w *Workspace) Commit(s *surface.Surface) {
	w.commits++
	w.lastCommit = s.ID()
}

// Commits returns the number of commits recorded.
func (w *Workspace) Commits() uint64 { return w.commits }

// LastCommit returns the surface that committed most recently, false if
// none did.
func (w *Workspace) LastCommit() (surface.ID, bool) { return w.lastCommit, w.commits > 0 }

func (w *Workspace) add(e *Element) {
	e.workspace = w
	w.elements = append(w.elements, e)
}

func (w *Workspace) remove(e *Element) {
	w.elements = slices.DeleteFunc(w.elements, func(x *Element) bool { return x == e })
	e.workspace = nil
}

// Seat is an input seat. Newly mapped windows open on its active output.
type Seat struct {
	name   string
	active *output.Output
}

// NewSeat creates a seat focused on active.
func NewSeat(name string, active *output.Output) *Seat {
	return &Seat{name: name, active: active}
}

// Name returns the seat name.
func (s *Seat) Name() string { return s.name }

// ActiveOutput returns the output holding the seat's focus.
func (s *Seat) ActiveOutput() *output.Output { return s.active }

// SetActiveOutput moves the seat's focus to o.
func (s *Seat) SetActiveOutput(o *output.Output) { s.active = o }
