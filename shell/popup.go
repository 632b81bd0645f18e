// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package shell

import (
	"cmp"
	"slices"

	"github.com/Elias-Graf/cosmic-comp/surface"
)

// Popups tracks the popups of mapped surfaces.
type Popups struct {
	popups map[surface.ID]*surface.Popup
}

// NewPopups creates an empty popup tracker.
func NewPopups() *Popups {
	return &Popups{popups: make(map[surface.ID]*surface.Popup)}
}

// Track starts tracking p.
func (ps *Popups) Track(p *surface.Popup) { ps.popups[p.Surface().ID()] = p }

// Find returns the popup whose surface is s.
func (ps *Popups) Find(s *surface.Surface) (*surface.Popup, bool) {
	p, ok := ps.popups[s.ID()]
	return p, ok
}

// Commit applies the requested positioner of the popup committing s and
// stops tracking destroyed popups.
func (ps *Popups) Commit(s *surface.Surface) {
	p, ok := ps.popups[s.ID()]
	if !ok {
		return
	}
	if !s.Alive() {
		delete(ps.popups, s.ID())
		return
	}
	p.SetGeometry(p.Positioner())
}

// Children returns the tracked popups whose parent is s, oldest first.
func (ps *Popups) Children(s *surface.Surface) []*surface.Popup {
	var out []*surface.Popup
	for _, p := range ps.popups {
		if p.Parent() == s {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *surface.Popup) int {
		return cmp.Compare(a.Surface().ID(), b.Surface().ID())
	})
	return out
}

// Len returns the number of tracked popups.
func (ps *Popups) Len() int { return len(ps.popups) }

func (ps *Popups) forget(s *surface.Surface) { delete(ps.popups, s.ID()) }
