// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package shell

import (
	"image"
	"slices"

	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// LayerMap holds the mapped layer surfaces of one output.
type LayerMap struct {
	output     *output.Output
	layers     []*surface.LayerSurface
	configured map[surface.ID]image.Point
	usable     image.Rectangle
}

// NewLayerMap creates an empty layer map for o.
func NewLayerMap(o *output.Output) *LayerMap {
	return &LayerMap{
		output:     o,
		configured: make(map[surface.ID]image.Point),
		usable:     o.Geometry(),
	}
}

// Output returns the output of the map.
func (m *LayerMap) Output() *output.Output { return m.output }

// Layers returns the mapped layer surfaces in mapping order.
func (m *LayerMap) Layers() []*surface.LayerSurface { return m.layers }

// Contains reports whether s is a mapped layer surface of the map.
func (m *LayerMap) Contains(s *surface.Surface) bool {
	return slices.ContainsFunc(m.layers, func(l *surface.LayerSurface) bool { return l.Surface() == s })
}

// UsableArea returns the output area left after exclusive zones.
func (m *LayerMap) UsableArea() image.Rectangle { return m.usable }

// Map inserts l. The caller arranges afterwards.
func (m *LayerMap) Map(l *surface.LayerSurface) {
	if !m.Contains(l.Surface()) {
		m.layers = append(m.layers, l)
	}
}

// Unmap removes l.
func (m *LayerMap) Unmap(l *surface.LayerSurface) {
	m.layers = slices.DeleteFunc(m.layers, func(x *surface.LayerSurface) bool { return x == l })
	delete(m.configured, l.Surface().ID())
}

// InLayer returns the mapped surfaces of layer in mapping order.
func (m *LayerMap) InLayer(layer surface.Layer) []*surface.LayerSurface {
	var out []*surface.LayerSurface
	for _, l := range m.layers {
		if l.State().Layer == layer {
			out = append(out, l)
		}
	}
	return out
}

// Arrange computes the geometry of every mapped surface from its committed
// anchor, size and margins, and sends a configure to each surface whose
// size changed or that was never configured. It returns the number of
// configures sent.
//
// Exclusive zones are applied in mapping order, shrinking the area later
// surfaces are placed in.
func (m *LayerMap) Arrange() int {
	full := m.output.Geometry()
	usable := full
	sent := 0

	for _, l := range m.layers {
		st := l.State()
		area := usable
		if st.ExclusiveZone < 0 {
			area = full
		}
		geo := layerGeometry(st, area)
		l.SetGeometry(geo)

		size := geo.Size()
		if prev, ok := m.configured[l.Surface().ID()]; !ok || prev != size || !l.Surface().InitialConfigureSent() {
			l.SendConfigure(size)
			m.configured[l.Surface().ID()] = size
			sent++
		}

		if st.ExclusiveZone > 0 {
			usable = shrink(usable, st)
		}
	}
	m.usable = usable
	return sent
}

func layerGeometry(st surface.LayerState, area image.Rectangle) image.Rectangle {
	mg := st.Margins
	size := st.Size
	if size.X == 0 && st.Anchor.Has(surface.AnchorLeft|surface.AnchorRight) {
		size.X = area.Dx() - mg.Left - mg.Right
	}
	if size.Y == 0 && st.Anchor.Has(surface.AnchorTop|surface.AnchorBottom) {
		size.Y = area.Dy() - mg.Top - mg.Bottom
	}
	size.X = max(size.X, 0)
	size.Y = max(size.Y, 0)

	var at image.Point
	switch {
	case st.Anchor.Has(surface.AnchorLeft) && !st.Anchor.Has(surface.AnchorRight):
		at.X = area.Min.X + mg.Left
	case st.Anchor.Has(surface.AnchorRight) && !st.Anchor.Has(surface.AnchorLeft):
		at.X = area.Max.X - mg.Right - size.X
	default:
		at.X = area.Min.X + (area.Dx()-size.X)/2
	}
	switch {
	case st.Anchor.Has(surface.AnchorTop) && !st.Anchor.Has(surface.AnchorBottom):
		at.Y = area.Min.Y + mg.Top
	case st.Anchor.Has(surface.AnchorBottom) && !st.Anchor.Has(surface.AnchorTop):
		at.Y = area.Max.Y - mg.Bottom - size.Y
	default:
		at.Y = area.Min.Y + (area.Dy()-size.Y)/2
	}
	return image.Rectangle{Min: at, Max: at.Add(size)}
}

// shrink removes the exclusive zone of st from area. A zone only applies
// to a surface anchored to one edge, optionally stretched along it.
func shrink(area image.Rectangle, st surface.LayerState) image.Rectangle {
	const (
		horizontal = surface.AnchorLeft | surface.AnchorRight
		vertical   = surface.AnchorTop | surface.AnchorBottom
	)
	a := st.Anchor
	zone := st.ExclusiveZone
	switch {
	case a&vertical == surface.AnchorTop && (a&horizontal == 0 || a.Has(horizontal)):
		area.Min.Y = min(area.Min.Y+zone+st.Margins.Top, area.Max.Y)
	case a&vertical == surface.AnchorBottom && (a&horizontal == 0 || a.Has(horizontal)):
		area.Max.Y = max(area.Max.Y-zone-st.Margins.Bottom, area.Min.Y)
	case a&horizontal == surface.AnchorLeft && (a&vertical == 0 || a.Has(vertical)):
		area.Min.X = min(area.Min.X+zone+st.Margins.Left, area.Max.X)
	case a&horizontal == surface.AnchorRight && (a&vertical == 0 || a.Has(vertical)):
		area.Max.X = max(area.Max.X-zone-st.Margins.Right, area.Min.X)
	}
	return area
}
