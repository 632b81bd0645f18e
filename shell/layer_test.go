// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package shell

import (
	"image"
	"testing"

	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

type configureLog struct {
	events []surface.ConfigureEvent
}

func (c *configureLog) Configure(ev surface.ConfigureEvent) { c.events = append(c.events, ev) }

func TestLayerGeometry(t *testing.T) {
	area := image.Rect(0, 0, 100, 50)
	tests := []struct {
		name string
		st   surface.LayerState
		want image.Rectangle
	}{
		{
			name: "centered",
			st:   surface.LayerState{Size: image.Pt(20, 10)},
			want: image.Rect(40, 20, 60, 30),
		},
		{
			name: "top bar",
			st: surface.LayerState{
				Anchor: surface.AnchorTop | surface.AnchorLeft | surface.AnchorRight,
				Size:   image.Pt(0, 8),
			},
			want: image.Rect(0, 0, 100, 8),
		},
		{
			name: "bottom right with margins",
			st: surface.LayerState{
				Anchor:  surface.AnchorBottom | surface.AnchorRight,
				Size:    image.Pt(10, 10),
				Margins: surface.Margins{Right: 5, Bottom: 2},
			},
			want: image.Rect(85, 38, 95, 48),
		},
		{
			name: "fullscreen",
			st: surface.LayerState{
				Anchor: surface.AnchorTop | surface.AnchorBottom | surface.AnchorLeft | surface.AnchorRight,
			},
			want: area,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := layerGeometry(tt.st, area); got != tt.want {
				t.Errorf("layerGeometry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArrangeExclusiveZone(t *testing.T) {
	log := &configureLog{}
	c := surface.NewCompositor(log)
	o := output.New("A", image.Rect(0, 0, 100, 100))
	m := NewLayerMap(o)

	barSurf := c.CreateSurface()
	bar, _ := c.NewLayerSurface(barSurf, o, "panel", surface.LayerState{
		Layer:         surface.LayerTop,
		Anchor:        surface.AnchorTop | surface.AnchorLeft | surface.AnchorRight,
		Size:          image.Pt(0, 10),
		ExclusiveZone: 10,
	})
	barSurf.LoadBuffer()

	dockSurf := c.CreateSurface()
	dock, _ := c.NewLayerSurface(dockSurf, o, "dock", surface.LayerState{
		Layer:  surface.LayerTop,
		Anchor: surface.AnchorTop,
		Size:   image.Pt(20, 5),
	})
	dockSurf.LoadBuffer()

	m.Map(bar)
	m.Map(dock)
	if sent := m.Arrange(); sent != 2 {
		t.Fatalf("Arrange() sent %d configures, want 2", sent)
	}
	if got := dock.Geometry(); got != image.Rect(40, 10, 60, 15) {
		t.Errorf("dock geometry = %v, want below the panel", got)
	}
	if got := m.UsableArea(); got != image.Rect(0, 10, 100, 100) {
		t.Errorf("UsableArea() = %v", got)
	}
	if len(log.events) != 2 || log.events[0].Size != image.Pt(100, 10) {
		t.Errorf("configures = %+v", log.events)
	}

	if sent := m.Arrange(); sent != 0 {
		t.Errorf("second Arrange() sent %d configures, want 0", sent)
	}

	dock.SetState(surface.LayerState{Layer: surface.LayerTop, Anchor: surface.AnchorTop, Size: image.Pt(30, 5)})
	dockSurf.LoadBuffer()
	if sent := m.Arrange(); sent != 1 {
		t.Errorf("Arrange() after resize sent %d configures, want 1", sent)
	}

	m.Unmap(bar)
	m.Arrange()
	if got := dock.Geometry(); got.Min.Y != 0 {
		t.Errorf("dock geometry = %v after panel unmapped", got)
	}
}

func TestMapLayer(t *testing.T) {
	c := surface.NewCompositor(nil)
	sh := New()
	o := output.New("A", image.Rect(0, 0, 100, 100))
	sh.AddOutput(o, "1")

	s := c.CreateSurface()
	l, _ := c.NewLayerSurface(s, o, "osd", surface.LayerState{Layer: surface.LayerOverlay, Size: image.Pt(10, 10)})
	s.LoadBuffer()
	sh.AddPendingLayer(l)

	if pl, ok := sh.PendingLayer(s); !ok || pl.Output != o {
		t.Fatalf("PendingLayer() = %+v, %v", pl, ok)
	}
	sh.MapLayer(l)

	if _, ok := sh.PendingLayer(s); ok {
		t.Error("layer still pending after map")
	}
	if !s.InitialConfigureSent() {
		t.Error("MapLayer did not configure the surface")
	}
	if got, ok := sh.LayerOutputForSurface(s); !ok || got != o {
		t.Errorf("LayerOutputForSurface() = %v, %v", got, ok)
	}
	if vis := sh.VisibleOutputsForSurface(s); len(vis) != 1 || vis[0] != o {
		t.Errorf("VisibleOutputsForSurface() = %v", vis)
	}

	sh.RemoveSurface(s)
	if _, ok := sh.LayerOutputForSurface(s); ok {
		t.Error("removed layer still mapped")
	}
}

func TestMapLayerUnknownOutputStaysPending(t *testing.T) {
	c := surface.NewCompositor(nil)
	sh := New()
	sh.AddOutput(output.New("A", image.Rect(0, 0, 100, 100)), "1")
	stray := output.New("X", image.Rect(0, 0, 10, 10))

	s := c.CreateSurface()
	l, _ := c.NewLayerSurface(s, stray, "bar", surface.LayerState{Layer: surface.LayerTop, Size: image.Pt(10, 10)})
	s.LoadBuffer()
	sh.AddPendingLayer(l)
	sh.MapLayer(l)

	if _, ok := sh.PendingLayer(s); !ok {
		t.Error("layer dropped from pending after failed map")
	}
	if s.InitialConfigureSent() {
		t.Error("layer on unknown output was configured")
	}
	if _, ok := sh.LayerOutputForSurface(s); ok {
		t.Error("layer mapped on unknown output")
	}
}
