// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package shell

import (
	"fmt"

	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/render"
	"github.com/Elias-Graf/cosmic-comp/surface"
	"github.com/Elias-Graf/cosmic-comp/workspace"
)

// OutputContent returns what o shows, bottom to top: background and bottom
// layers, the active workspace, then top and overlay layers.
func (sh *Shell) OutputContent(o *output.Output) []render.Placement {
	m, ok := sh.layerMaps[o]
	if !ok {
		return nil
	}
	var out []render.Placement
	out = appendLayers(out, m, surface.LayerBackground, surface.LayerBottom)
	if w, ok := sh.active[o]; ok {
		out = sh.appendWorkspace(out, w, o)
	}
	out = appendLayers(out, m, surface.LayerTop, surface.LayerOverlay)
	return out
}

// WorkspaceContent returns the elements of workspace h laid out as if it
// was shown on o.
func (sh *Shell) WorkspaceContent(o *output.Output, h workspace.Handle) ([]render.Placement, error) {
	w, ok := sh.Workspace(h)
	if !ok {
		return nil, fmt.Errorf("%w: %v", render.ErrUnknownWorkspace, h)
	}
	return sh.appendWorkspace(nil, w, o), nil
}

func (sh *Shell) appendWorkspace(out []render.Placement, w *Workspace, o *output.Output) []render.Placement {
	shift := o.Geometry().Min.Sub(w.output.Geometry().Min)
	for _, e := range w.elements {
		win := e.Active().Surface()
		at := e.location.Add(shift)
		out = append(out, render.Placement{Surface: win, Location: at})
		for _, p := range sh.popups.Children(win) {
			out = append(out, render.Placement{Surface: p.Surface(), Location: at.Add(p.Geometry().Min)})
		}
	}
	return out
}

func appendLayers(out []render.Placement, m *LayerMap, layers ...surface.Layer) []render.Placement {
	for _, layer := range layers {
		for _, l := range m.InLayer(layer) {
			out = append(out, render.Placement{Surface: l.Surface(), Location: l.Geometry().Min})
		}
	}
	return out
}
