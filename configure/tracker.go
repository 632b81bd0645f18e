// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package configure guards the initial configure handshake of each surface
// role.
//
// Toplevels and popups can be configured independently of layout, so the
// tracker sends their first configure directly. Layer surfaces cannot be
// configured before their size is known, which requires arranging the
// output's layers; for them the tracker asks the shell to map the surface
// and the shell sends the configure as part of the arrangement.
package configure

import (
	"fmt"
	"log/slog"

	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// LayerMapper maps a layer surface, computing its geometry and sending its
// configure as a side effect.
type LayerMapper interface {
	MapLayer(l *surface.LayerSurface)
}

// Tracker sends initial configures.
type Tracker struct {
	mapper LayerMapper
	log    *slog.Logger
}

// NewTracker creates a tracker that maps layer surfaces through mapper.
func NewTracker(mapper LayerMapper) *Tracker {
	return &Tracker{mapper: mapper, log: logging.Nop()}
}

// SetLogger sets the tracker's logger. Nil disables logging.
func (t *Tracker) SetLogger(l *slog.Logger) { t.log = logging.OrNop(l) }

// Toplevel sends the initial configure of a toplevel if it was not sent
// yet, leaving the size to the client. It returns whether the configure had
// already been sent before this call, so it is false on the call that sends
// it.
func (t *Tracker) Toplevel(top *surface.Toplevel) bool {
	sent := top.Surface().InitialConfigureSent()
	if !sent {
		top.ClearPendingSize()
		serial := top.SendConfigure()
		t.log.Debug("initial configure", "surface", top.Surface(), "role", "toplevel", "serial", serial)
	}
	return sent
}

// Popup sends the initial configure of a popup if it was not sent yet.
// Popups may always be configured, so a failure panics.
func (t *Tracker) Popup(p *surface.Popup) {
	if p.Surface().InitialConfigureSent() {
		return
	}
	serial, err := p.SendConfigure()
	if err != nil {
		panic(fmt.Sprintf("configure: initial configure of popup %v failed: %v", p.Surface(), err))
	}
	t.log.Debug("initial configure", "surface", p.Surface(), "role", "popup", "serial", serial)
}

// Layer maps a layer surface whose initial configure was not sent yet. It
// returns whether the configure had already been sent before this call.
func (t *Tracker) Layer(l *surface.LayerSurface) bool {
	sent := l.Surface().InitialConfigureSent()
	if !sent {
		t.mapper.MapLayer(l)
		t.log.Debug("initial configure", "surface", l.Surface(), "role", "layer", "namespace", l.Namespace())
	}
	return sent
}

// Ensure dispatches on the role variant. Popups report true since their
// configure never gates further processing.
func (t *Tracker) Ensure(r surface.Role) bool {
	switch r := r.(type) {
	case *surface.Toplevel:
		return t.Toplevel(r)
	case *surface.Popup:
		t.Popup(r)
		return true
	case *surface.LayerSurface:
		return t.Layer(r)
	default:
		panic(fmt.Sprintf("configure: unknown surface role %T", r))
	}
}
