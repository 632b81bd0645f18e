// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package output describes the outputs (monitors) a compositor presents to.
//
// Outputs are compared by identity: two *Output values refer to the same
// output only if they are the same pointer.
package output

import (
	"image"
	"math"
)

// Output is a presentation target with a position in the global layout.
type Output struct {
	name     string
	geometry image.Rectangle
	scale    float64
}

// New creates an output with the given connector name and layout geometry.
func New(name string, geometry image.Rectangle) *Output {
	return &Output{name: name, geometry: geometry, scale: 1}
}

// Name returns the connector name (e.g. "DP-1").
func (o *Output) Name() string { return o.name }

// Geometry returns the output rectangle in global layout coordinates.
func (o *Output) Geometry() image.Rectangle { return o.geometry }

// SetGeometry moves or resizes the output.
func (o *Output) SetGeometry(r image.Rectangle) { o.geometry = r }

// Scale returns the output scale factor.
func (o *Output) Scale() float64 { return o.scale }

// SetScale changes the output scale factor. Non-positive values reset it to 1.
func (o *Output) SetScale(s float64) {
	if s <= 0 {
		s = 1
	}
	o.scale = s
}

// PixelSize returns the output size in buffer pixels, its layout size
// multiplied by the scale and rounded.
func (o *Output) PixelSize() image.Point {
	sz := o.geometry.Size()
	if o.scale == 1 {
		return sz
	}
	return image.Pt(int(math.Round(float64(sz.X)*o.scale)), int(math.Round(float64(sz.Y)*o.scale)))
}

// String implements fmt.Stringer.
func (o *Output) String() string {
	if o == nil {
		return "<nil output>"
	}
	return o.name
}
