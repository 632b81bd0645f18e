// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package shell

import (
	"fmt"
	"image"

	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// Window is a toplevel surface managed by the shell.
type Window struct {
	toplevel *surface.Toplevel
	pending  *screencopy.Queue
}

// NewWindow wraps top.
func NewWindow(top *surface.Toplevel) *Window {
	return &Window{
		toplevel: top,
		pending:  screencopy.NewQueue(fmt.Sprintf("window %d", top.Surface().ID())),
	}
}

// Surface returns the window's surface.
func (w *Window) Surface() *surface.Surface { return w.toplevel.Surface() }

// Toplevel returns the window's toplevel role.
func (w *Window) Toplevel() *surface.Toplevel { return w.toplevel }

// PendingBuffers returns the queue of window captures waiting for content.
func (w *Window) PendingBuffers() *screencopy.Queue { return w.pending }

// TakePendingBuffers removes and returns every waiting window capture.
func (w *Window) TakePendingBuffers() []screencopy.Pending { return w.pending.Drain() }

// Size returns the size of the current buffer, zero without one.
func (w *Window) Size() image.Point { return w.Surface().Buffer().Dimensions() }

// ResizeEdge is a set of window edges grabbed by an interactive resize.
type ResizeEdge uint8

const (
	EdgeTop ResizeEdge = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// resizeState tracks an interactive resize. The edges opposite the grabbed
// ones stay where they were when the grab started.
type resizeState struct {
	edges   ResizeEdge
	initial image.Rectangle
}

// Element is a mapped stack of windows occupying one place in a workspace.
// Only the active window is shown.
type Element struct {
	windows   []*Window
	active    int
	location  image.Point
	workspace *Workspace
	resize    *resizeState
}

func newElement(w *Window, location image.Point) *Element {
	return &Element{windows: []*Window{w}, location: location}
}

// Windows returns the windows stacked in the element.
func (e *Element) Windows() []*Window { return e.windows }

// Active returns the shown window.
func (e *Element) Active() *Window { return e.windows[e.active] }

// IsActive reports whether s is the surface of the shown window.
func (e *Element) IsActive(s *surface.Surface) bool { return e.Active().Surface() == s }

// SetActive shows w, which must already be stacked in the element.
func (e *Element) SetActive(w *Window) bool {
	for i, x := range e.windows {
		if x == w {
			e.active = i
			return true
		}
	}
	return false
}

// Stack adds w behind the shown window.
func (e *Element) Stack(w *Window) { e.windows = append(e.windows, w) }

// Contains reports whether s belongs to one of the element's windows.
func (e *Element) Contains(s *surface.Surface) bool {
	for _, w := range e.windows {
		if w.Surface() == s {
			return true
		}
	}
	return false
}

// Location returns the top-left corner in global coordinates.
func (e *Element) Location() image.Point { return e.location }

// SetLocation moves the element.
func (e *Element) SetLocation(p image.Point) { e.location = p }

// Geometry returns the rectangle of the shown window in global coordinates.
func (e *Element) Geometry() image.Rectangle {
	return image.Rectangle{Min: e.location, Max: e.location.Add(e.Active().Size())}
}

// Workspace returns the workspace the element is placed in.
func (e *Element) Workspace() *Workspace { return e.workspace }

// StartResize begins an interactive resize grabbing edges.
func (e *Element) StartResize(edges ResizeEdge) {
	e.resize = &resizeState{edges: edges, initial: e.Geometry()}
}

// EndResize ends the interactive resize.
func (e *Element) EndResize() { e.resize = nil }

// Resizing reports whether an interactive resize is in progress.
func (e *Element) Resizing() bool { return e.resize != nil }

// ApplyResizeToLocation moves the element after s committed a new size
// during a resize grabbing the top or left edge, keeping the opposite
// edge in place.
func (e *Element) ApplyResizeToLocation(s *surface.Surface) {
	if e.resize == nil || !e.IsActive(s) {
		return
	}
	size := e.Active().Size()
	loc := e.location
	if e.resize.edges&EdgeLeft != 0 {
		loc.X = e.resize.initial.Max.X - size.X
	}
	if e.resize.edges&EdgeTop != 0 {
		loc.Y = e.resize.initial.Max.Y - size.Y
	}
	e.location = loc
}
