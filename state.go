// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package comp

import (
	"log/slog"

	"github.com/Elias-Graf/cosmic-comp/configure"
	"github.com/Elias-Graf/cosmic-comp/eventloop"
	"github.com/Elias-Graf/cosmic-comp/gpuimport"
	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/render"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/shell"
	"github.com/Elias-Graf/cosmic-comp/surface"
	"github.com/Elias-Graf/cosmic-comp/workspace"
)

// Shell is the window management the commit path consults.
type Shell interface {
	configure.LayerMapper
	render.ContentSource

	PendingWindow(s *surface.Surface) (shell.PendingWindow, bool)
	PendingLayer(s *surface.Surface) (shell.PendingLayer, bool)
	FindPopup(s *surface.Surface) (*surface.Popup, bool)
	CommitPopups(s *surface.Surface)

	MapWindow(w *shell.Window, o *output.Output) *shell.Element
	ElementForSurface(s *surface.Surface) (*shell.Element, bool)
	SpaceFor(e *shell.Element) *shell.Workspace

	LayerOutputForSurface(s *surface.Surface) (*output.Output, bool)
	ArrangeLayers(o *output.Output)

	Workspace(h workspace.Handle) (*shell.Workspace, bool)
	WorkspacesForSurface(s *surface.Surface) []shell.WorkspaceOutput
	VisibleOutputsForSurface(s *surface.Surface) []*output.Output
	ActiveSet() screencopy.ActiveSet
	OutputQueue(o *output.Output) *screencopy.Queue

	RemoveSurface(s *surface.Surface)
}

// Backend imports buffers and renders outputs.
type Backend interface {
	gpuimport.Importer
	render.FrameScheduler
}

// surfaceForgetter is implemented by backends keeping per-surface import
// state.
type surfaceForgetter interface {
	Forget(s *surface.Surface)
}

var _ Shell = (*shell.Shell)(nil)

// State owns the components of the commit path. It belongs to the event
// loop goroutine.
type State struct {
	shell   Shell
	backend Backend
	loop    *eventloop.Loop

	tracker  *configure.Tracker
	imports  *gpuimport.Coordinator
	capture  *screencopy.Scheduler
	frames   *render.Adapter
	software *render.Software

	log *slog.Logger
}

// New creates the commit path for sh and b.
func New(sh Shell, b Backend, opts ...Option) *State {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.loop == nil {
		o.loop = eventloop.New()
	}

	st := &State{
		shell:    sh,
		backend:  b,
		loop:     o.loop,
		tracker:  configure.NewTracker(sh),
		imports:  gpuimport.NewCoordinator(),
		frames:   render.NewAdapter(),
		software: render.NewSoftware(sh),
	}
	renderer := o.renderer
	if renderer == nil {
		renderer = st.software
	}
	st.capture = screencopy.NewScheduler(st.loop, renderer)
	st.SetLogger(o.logger)
	return st
}

// SetLogger sets the logger of the state and its components. Nil disables
// logging.
func (st *State) SetLogger(l *slog.Logger) {
	l = logging.OrNop(l)
	st.log = l
	propagateLogger(l, st.tracker, st.imports, st.capture, st.frames, st.software, st.shell, st.backend)
}

// Loop returns the event loop running deferred captures.
func (st *State) Loop() *eventloop.Loop { return st.loop }

// Scheduler returns the screencopy scheduler. Backends report the outcome
// of frame captures to it.
func (st *State) Scheduler() *screencopy.Scheduler { return st.capture }

// Software returns the renderer filling capture buffers on the CPU.
func (st *State) Software() *render.Software { return st.software }

// Destroy removes the destroyed surface s from the shell and releases what
// the backend imported for it.
func (st *State) Destroy(s *surface.Surface) {
	st.shell.RemoveSurface(s)
	if f, ok := st.backend.(surfaceForgetter); ok {
		f.Forget(s)
	}
	st.log.Debug("surface destroyed", "surface", s)
}

// CloseSession closes s and drops the damage state kept for it.
func (st *State) CloseSession(s *screencopy.Session) {
	s.Close()
	st.software.Forget(s)
}

// Dispatch runs the deferred captures queued so far and returns how many
// ran.
func (st *State) Dispatch() int { return st.loop.DispatchIdle() }

// Commit handles a commit of s.
func (st *State) Commit(s *surface.Surface) {
	s.LoadBuffer()

	if pw, ok := st.shell.PendingWindow(s); ok {
		if !st.tracker.Toplevel(pw.Window.Toplevel()) || !s.HasBuffer() {
			st.log.Debug("commit of unmapped window", "surface", s, "buffer", s.HasBuffer())
			return
		}
		st.shell.MapWindow(pw.Window, pw.Seat.ActiveOutput())
	}

	if pl, ok := st.shell.PendingLayer(s); ok {
		if !st.tracker.Layer(pl.Layer) {
			return
		}
	}

	if p, ok := st.shell.FindPopup(s); ok {
		st.tracker.Popup(p)
	}

	if e, ok := st.shell.ElementForSurface(s); ok {
		e.ApplyResizeToLocation(s)
		if ws := st.shell.SpaceFor(e); ws != nil {
			ws.Commit(s)
		}
		if e.IsActive(s) {
			st.capture.ScheduleWindow(s, e.Active().TakePendingBuffers())
		}
	}

	st.imports.EarlyImport(st.backend, s, st.shell.VisibleOutputsForSurface(s))

	st.shell.CommitPopups(s)

	if o, ok := st.shell.LayerOutputForSurface(s); ok {
		st.shell.ArrangeLayers(o)
	}

	var batch screencopy.Batch
	active := st.shell.ActiveSet()
	for _, wo := range st.shell.WorkspacesForSurface(s) {
		ws, ok := st.shell.Workspace(wo.Workspace)
		if !ok {
			continue
		}
		st.capture.ScanWorkspace(ws.PendingBuffers(), wo.Workspace, wo.Output, active, &batch)
	}

	st.frames.Schedule(st.backend, st.shell.VisibleOutputsForSurface(s), &batch, st.shell.OutputQueue)
}
