// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"image"

	"github.com/Elias-Graf/cosmic-comp/output"
)

// ErrPopupDismissed is returned when configuring a popup that was dismissed.
var ErrPopupDismissed = errors.New("surface: popup dismissed")

// ConfigureEvent is a configure sent from the compositor to a client.
type ConfigureEvent struct {
	Surface ID
	Serial  uint32

	// Size is the suggested size. A zero size lets the client choose.
	Size image.Point
}

// ConfigureSink receives configure events on behalf of the client
// connection.
type ConfigureSink interface {
	Configure(ev ConfigureEvent)
}

// Role is the protocol role of a surface: *Toplevel, *Popup or
// *LayerSurface. The set is closed.
type Role interface {
	Surface() *Surface
	isRole()
}

// pendingApplier is implemented by roles carrying double-buffered state
// that becomes current on commit.
type pendingApplier interface {
	applyPending()
}

// Toplevel is an xdg_toplevel window surface.
type Toplevel struct {
	surface *Surface
	comp    *Compositor

	title       string
	pendingSize image.Point
	hasSize     bool
}

func (*Toplevel) isRole() {}

// Surface returns the underlying surface.
func (t *Toplevel) Surface() *Surface { return t.surface }

// Title returns the window title.
func (t *Toplevel) Title() string { return t.title }

// SetTitle sets the window title.
func (t *Toplevel) SetTitle(title string) { t.title = title }

// SetPendingSize sets the size offered with the next configure.
func (t *Toplevel) SetPendingSize(size image.Point) {
	t.pendingSize = size
	t.hasSize = true
}

// ClearPendingSize lets the client pick its own size on the next configure.
func (t *Toplevel) ClearPendingSize() {
	t.pendingSize = image.Point{}
	t.hasSize = false
}

// PendingSize returns the size offered with the next configure, if any.
func (t *Toplevel) PendingSize() (image.Point, bool) {
	return t.pendingSize, t.hasSize
}

// SendConfigure sends the pending state to the client and returns the
// configure serial.
func (t *Toplevel) SendConfigure() uint32 {
	return t.comp.sendConfigure(t.surface, t.pendingSize)
}

// Popup is an xdg_popup surface.
type Popup struct {
	surface *Surface
	comp    *Compositor
	parent  *Surface

	positioner image.Rectangle
	geometry   image.Rectangle
	dismissed  bool
}

func (*Popup) isRole() {}

// Surface returns the underlying surface.
func (p *Popup) Surface() *Surface { return p.surface }

// Parent returns the parent surface.
func (p *Popup) Parent() *Surface { return p.parent }

// Reposition updates the positioner rectangle, relative to the parent.
func (p *Popup) Reposition(r image.Rectangle) { p.positioner = r }

// Positioner returns the requested rectangle relative to the parent.
func (p *Popup) Positioner() image.Rectangle { return p.positioner }

// Geometry returns the last committed popup rectangle relative to the parent.
func (p *Popup) Geometry() image.Rectangle { return p.geometry }

// SetGeometry records the committed popup rectangle.
func (p *Popup) SetGeometry(r image.Rectangle) { p.geometry = r }

// Dismiss marks the popup as dismissed; further configures fail.
func (p *Popup) Dismiss() { p.dismissed = true }

// SendConfigure sends the positioner geometry to the client. Popups may be
// configured at any time; the only failure is a dismissed popup.
func (p *Popup) SendConfigure() (uint32, error) {
	if p.dismissed {
		return 0, ErrPopupDismissed
	}
	return p.comp.sendConfigure(p.surface, p.positioner.Size()), nil
}

// Layer is the stacking layer of a layer surface.
type Layer uint8

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

// String returns the protocol name of the layer.
func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerBottom:
		return "bottom"
	case LayerTop:
		return "top"
	case LayerOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// Anchor is a set of output edges a layer surface is anchored to.
type Anchor uint8

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// Has reports whether all edges in e are set.
func (a Anchor) Has(e Anchor) bool { return a&e == e }

// Margins are distances from the anchored edges.
type Margins struct {
	Top, Right, Bottom, Left int
}

// LayerState is the double-buffered client state of a layer surface.
type LayerState struct {
	Layer         Layer
	Anchor        Anchor
	Size          image.Point
	Margins       Margins
	ExclusiveZone int
}

// LayerSurface is a wlr-layer-shell surface.
type LayerSurface struct {
	surface   *Surface
	comp      *Compositor
	namespace string
	output    *output.Output

	pending  LayerState
	current  LayerState
	geometry image.Rectangle
}

func (*LayerSurface) isRole() {}

// Surface returns the underlying surface.
func (l *LayerSurface) Surface() *Surface { return l.surface }

// Namespace returns the client supplied namespace.
func (l *LayerSurface) Namespace() string { return l.namespace }

// Output returns the output the surface is placed on.
func (l *LayerSurface) Output() *output.Output { return l.output }

// SetState stages client state for the next commit.
func (l *LayerSurface) SetState(st LayerState) { l.pending = st }

// State returns the committed client state.
func (l *LayerSurface) State() LayerState { return l.current }

// Geometry returns the arranged rectangle in global coordinates.
func (l *LayerSurface) Geometry() image.Rectangle { return l.geometry }

// SetGeometry records the arranged rectangle.
func (l *LayerSurface) SetGeometry(r image.Rectangle) { l.geometry = r }

// SendConfigure offers size to the client.
func (l *LayerSurface) SendConfigure(size image.Point) uint32 {
	return l.comp.sendConfigure(l.surface, size)
}

func (l *LayerSurface) applyPending() { l.current = l.pending }
