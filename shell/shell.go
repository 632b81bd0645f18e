// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package shell

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/surface"
	"github.com/Elias-Graf/cosmic-comp/workspace"
)

var (
	// ErrUnknownOutput is returned for outputs not added to the shell.
	ErrUnknownOutput = errors.New("shell: unknown output")

	// ErrUnknownWorkspace is returned for handles of no workspace.
	ErrUnknownWorkspace = errors.New("shell: unknown workspace")

	// ErrWrongOutput is returned when activating a workspace on an output
	// it is not assigned to.
	ErrWrongOutput = errors.New("shell: workspace belongs to another output")
)

// PendingWindow is a toplevel waiting for its initial configure to be
// acknowledged with a buffer.
type PendingWindow struct {
	Window *Window
	Seat   *Seat
}

// PendingLayer is a layer surface waiting to be mapped.
type PendingLayer struct {
	Layer  *surface.LayerSurface
	Output *output.Output
}

// WorkspaceOutput names a workspace together with the output it is
// assigned to.
type WorkspaceOutput struct {
	Workspace workspace.Handle
	Output    *output.Output
}

// Shell is the reference shell. It belongs to the event loop goroutine.
type Shell struct {
	outputs    []*output.Output
	queues     map[*output.Output]*screencopy.Queue
	layerMaps  map[*output.Output]*LayerMap
	active     map[*output.Output]*Workspace
	workspaces []*Workspace

	pendingWindows []PendingWindow
	pendingLayers  []PendingLayer
	elements       map[surface.ID]*Element
	popups         *Popups

	log *slog.Logger
}

// New creates a shell without outputs.
func New() *Shell {
	return &Shell{
		queues:    make(map[*output.Output]*screencopy.Queue),
		layerMaps: make(map[*output.Output]*LayerMap),
		active:    make(map[*output.Output]*Workspace),
		elements:  make(map[surface.ID]*Element),
		popups:    NewPopups(),
		log:       logging.Nop(),
	}
}

// SetLogger sets the shell's logger. Nil disables logging.
func (sh *Shell) SetLogger(l *slog.Logger) { sh.log = logging.OrNop(l) }

// AddOutput adds o with a first workspace named name, which becomes active.
func (sh *Shell) AddOutput(o *output.Output, name string) *Workspace {
	if _, ok := sh.queues[o]; !ok {
		sh.outputs = append(sh.outputs, o)
		sh.queues[o] = screencopy.NewQueue("output " + o.Name())
		sh.layerMaps[o] = NewLayerMap(o)
	}
	w := newWorkspace(name, o)
	sh.workspaces = append(sh.workspaces, w)
	if sh.active[o] == nil {
		sh.active[o] = w
	}
	sh.log.Info("output added", "output", o, "workspace", name)
	return w
}

// AddWorkspace adds an inactive workspace to o.
func (sh *Shell) AddWorkspace(o *output.Output, name string) (*Workspace, error) {
	if _, ok := sh.queues[o]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownOutput, o)
	}
	w := newWorkspace(name, o)
	sh.workspaces = append(sh.workspaces, w)
	return w, nil
}

// Activate shows workspace h on output o.
func (sh *Shell) Activate(o *output.Output, h workspace.Handle) error {
	w, ok := sh.Workspace(h)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownWorkspace, h)
	}
	if w.output != o {
		return fmt.Errorf("%w: %s is on %v", ErrWrongOutput, w.name, w.output)
	}
	sh.active[o] = w
	return nil
}

// Outputs returns the outputs in the order they were added.
func (sh *Shell) Outputs() []*output.Output { return sh.outputs }

// OutputQueue returns the queue of output captures waiting for the next
// frame of o.
func (sh *Shell) OutputQueue(o *output.Output) *screencopy.Queue { return sh.queues[o] }

// LayerMap returns the layer map of o.
func (sh *Shell) LayerMap(o *output.Output) (*LayerMap, bool) {
	m, ok := sh.layerMaps[o]
	return m, ok
}

// Workspace returns the workspace with handle h.
func (sh *Shell) Workspace(h workspace.Handle) (*Workspace, bool) {
	for _, w := range sh.workspaces {
		if w.handle == h {
			return w, true
		}
	}
	return nil, false
}

// WorkspaceByName returns the first workspace named name.
func (sh *Shell) WorkspaceByName(name string) (*Workspace, bool) {
	for _, w := range sh.workspaces {
		if w.name == name {
			return w, true
		}
	}
	return nil, false
}

// ActiveSpace returns the workspace shown on o.
func (sh *Shell) ActiveSpace(o *output.Output) (workspace.Handle, bool) {
	w, ok := sh.active[o]
	if !ok {
		return workspace.Handle{}, false
	}
	return w.handle, true
}

// ActiveSet returns every (output, workspace) pair currently shown.
func (sh *Shell) ActiveSet() screencopy.ActiveSet {
	set := make(screencopy.ActiveSet, len(sh.active))
	for o, w := range sh.active {
		set[screencopy.ActiveSpace{Output: o, Workspace: w.handle}] = struct{}{}
	}
	return set
}

// AddPendingWindow registers a new toplevel opened through seat.
func (sh *Shell) AddPendingWindow(w *Window, seat *Seat) {
	sh.pendingWindows = append(sh.pendingWindows, PendingWindow{Window: w, Seat: seat})
}

// PendingWindow returns the pending window whose surface is s.
func (sh *Shell) PendingWindow(s *surface.Surface) (PendingWindow, bool) {
	for _, pw := range sh.pendingWindows {
		if pw.Window.Surface() == s {
			return pw, true
		}
	}
	return PendingWindow{}, false
}

// AddPendingLayer registers a new layer surface.
func (sh *Shell) AddPendingLayer(l *surface.LayerSurface) {
	sh.pendingLayers = append(sh.pendingLayers, PendingLayer{Layer: l, Output: l.Output()})
}

// PendingLayer returns the pending layer surface whose surface is s.
func (sh *Shell) PendingLayer(s *surface.Surface) (PendingLayer, bool) {
	for _, pl := range sh.pendingLayers {
		if pl.Layer.Surface() == s {
			return pl, true
		}
	}
	return PendingLayer{}, false
}

// Popups returns the popup tracker.
func (sh *Shell) Popups() *Popups { return sh.popups }

// FindPopup returns the tracked popup whose surface is s.
func (sh *Shell) FindPopup(s *surface.Surface) (*surface.Popup, bool) { return sh.popups.Find(s) }

// CommitPopups refreshes the popup bookkeeping of s.
func (sh *Shell) CommitPopups(s *surface.Surface) { sh.popups.Commit(s) }

// MapWindow maps the pending window w onto the active workspace of o at
// the output's origin. An unknown output leaves w pending and returns nil.
func (sh *Shell) MapWindow(w *Window, o *output.Output) *Element {
	ws, ok := sh.active[o]
	if !ok {
		sh.log.Warn("map window on unknown output", "surface", w.Surface(), "output", o)
		return nil
	}
	sh.pendingWindows = slices.DeleteFunc(sh.pendingWindows, func(pw PendingWindow) bool { return pw.Window == w })

	e := newElement(w, o.Geometry().Min)
	ws.add(e)
	sh.elements[w.Surface().ID()] = e
	sh.log.Debug("window mapped", "surface", w.Surface(), "output", o, "workspace", ws.name)
	return e
}

// MapLayer maps the pending layer surface l on its output and arranges the
// output's layers, which sends l its configure. A layer surface on an
// unknown output stays pending.
func (sh *Shell) MapLayer(l *surface.LayerSurface) {
	m, ok := sh.layerMaps[l.Output()]
	if !ok {
		sh.log.Warn("map layer on unknown output", "surface", l.Surface(), "output", l.Output())
		return
	}
	sh.pendingLayers = slices.DeleteFunc(sh.pendingLayers, func(pl PendingLayer) bool { return pl.Layer == l })
	m.Map(l)
	m.Arrange()
	sh.log.Debug("layer mapped", "surface", l.Surface(), "namespace", l.Namespace(), "output", l.Output())
}

// StackWindow adds w to the element e, sharing its place.
func (sh *Shell) StackWindow(e *Element, w *Window) {
	sh.pendingWindows = slices.DeleteFunc(sh.pendingWindows, func(pw PendingWindow) bool { return pw.Window == w })
	e.Stack(w)
	sh.elements[w.Surface().ID()] = e
}

// MoveElement moves e to workspace h.
func (sh *Shell) MoveElement(e *Element, h workspace.Handle) error {
	w, ok := sh.Workspace(h)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownWorkspace, h)
	}
	if e.workspace != nil {
		e.workspace.remove(e)
	}
	w.add(e)
	return nil
}

// ElementForSurface returns the mapped element containing the window
// surface s.
func (sh *Shell) ElementForSurface(s *surface.Surface) (*Element, bool) {
	e, ok := sh.elements[s.ID()]
	return e, ok
}

// SpaceFor returns the workspace holding e.
func (sh *Shell) SpaceFor(e *Element) *Workspace { return e.workspace }

// rootElement returns the element s is shown in, following popup parents.
func (sh *Shell) rootElement(s *surface.Surface) (*Element, bool) {
	for range 16 {
		if e, ok := sh.elements[s.ID()]; ok {
			return e, true
		}
		p, ok := sh.popups.Find(s)
		if !ok {
			return nil, false
		}
		s = p.Parent()
	}
	return nil, false
}

// WorkspacesForSurface returns the workspaces s contributes content to.
func (sh *Shell) WorkspacesForSurface(s *surface.Surface) []WorkspaceOutput {
	e, ok := sh.rootElement(s)
	if !ok || e.workspace == nil {
		return nil
	}
	return []WorkspaceOutput{{Workspace: e.workspace.handle, Output: e.workspace.output}}
}

// VisibleOutputsForSurface returns the outputs currently showing s.
func (sh *Shell) VisibleOutputsForSurface(s *surface.Surface) []*output.Output {
	if o, ok := sh.LayerOutputForSurface(s); ok {
		return []*output.Output{o}
	}
	e, ok := sh.rootElement(s)
	if !ok || e.workspace == nil {
		return nil
	}
	geo := e.Geometry()
	if geo.Empty() {
		geo = image.Rectangle{Min: e.location, Max: e.location.Add(image.Pt(1, 1))}
	}
	var out []*output.Output
	for _, o := range sh.outputs {
		if sh.active[o] == e.workspace && o.Geometry().Overlaps(geo) {
			out = append(out, o)
		}
	}
	return out
}

// LayerOutputForSurface returns the output of the mapped layer surface s.
func (sh *Shell) LayerOutputForSurface(s *surface.Surface) (*output.Output, bool) {
	for _, o := range sh.outputs {
		if sh.layerMaps[o].Contains(s) {
			return o, true
		}
	}
	return nil, false
}

// ArrangeLayers re-arranges the layer surfaces of o.
func (sh *Shell) ArrangeLayers(o *output.Output) {
	if m, ok := sh.layerMaps[o]; ok {
		m.Arrange()
	}
}

// RemoveSurface forgets every trace of s: pending entries, elements,
// popups and layers.
func (sh *Shell) RemoveSurface(s *surface.Surface) {
	sh.pendingWindows = slices.DeleteFunc(sh.pendingWindows, func(pw PendingWindow) bool { return pw.Window.Surface() == s })
	sh.pendingLayers = slices.DeleteFunc(sh.pendingLayers, func(pl PendingLayer) bool { return pl.Layer.Surface() == s })
	sh.popups.forget(s)

	if e, ok := sh.elements[s.ID()]; ok {
		delete(sh.elements, s.ID())
		e.windows = slices.DeleteFunc(e.windows, func(w *Window) bool { return w.Surface() == s })
		if len(e.windows) == 0 {
			if e.workspace != nil {
				e.workspace.remove(e)
			}
		} else if e.active >= len(e.windows) {
			e.active = len(e.windows) - 1
		}
	}

	for _, m := range sh.layerMaps {
		for _, l := range m.layers {
			if l.Surface() == s {
				m.Unmap(l)
				m.Arrange()
				break
			}
		}
	}
}
