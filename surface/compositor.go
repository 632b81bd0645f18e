// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"image"

	"github.com/Elias-Graf/cosmic-comp/output"
)

// ErrRoleAssigned is returned when assigning a role to a surface that
// already has one.
var ErrRoleAssigned = errors.New("surface: role already assigned")

// ErrDestroyed is returned when operating on a destroyed surface.
var ErrDestroyed = errors.New("surface: destroyed")

// Compositor creates surfaces, assigns roles and sends configure events.
type Compositor struct {
	attrs    *AttributeStore
	sink     ConfigureSink
	nextID   ID
	serial   uint32
	surfaces map[ID]*Surface
}

// NewCompositor creates a compositor delivering configures to sink. A nil
// sink discards them.
func NewCompositor(sink ConfigureSink) *Compositor {
	return &Compositor{
		attrs:    NewAttributeStore(),
		sink:     sink,
		surfaces: make(map[ID]*Surface),
	}
}

// Attributes returns the shared role attribute store.
func (c *Compositor) Attributes() *AttributeStore { return c.attrs }

// CreateSurface creates a surface without a role.
func (c *Compositor) CreateSurface() *Surface {
	c.nextID++
	s := &Surface{id: c.nextID, attrs: c.attrs}
	c.surfaces[s.id] = s
	return s
}

// Surface looks up a live surface by id.
func (c *Compositor) Surface(id ID) (*Surface, bool) {
	s, ok := c.surfaces[id]
	return s, ok
}

// NewToplevel gives s the toplevel role.
func (c *Compositor) NewToplevel(s *Surface) (*Toplevel, error) {
	t := &Toplevel{surface: s, comp: c}
	if err := c.assign(s, t); err != nil {
		return nil, err
	}
	return t, nil
}

// NewPopup gives s the popup role, positioned relative to parent.
func (c *Compositor) NewPopup(s, parent *Surface, positioner image.Rectangle) (*Popup, error) {
	p := &Popup{surface: s, comp: c, parent: parent, positioner: positioner}
	if err := c.assign(s, p); err != nil {
		return nil, err
	}
	return p, nil
}

// NewLayerSurface gives s the layer-shell role on output o. The initial
// state becomes current on the first commit.
func (c *Compositor) NewLayerSurface(s *Surface, o *output.Output, namespace string, st LayerState) (*LayerSurface, error) {
	l := &LayerSurface{surface: s, comp: c, namespace: namespace, output: o, pending: st}
	if err := c.assign(s, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Destroy releases s and its role attributes.
func (c *Compositor) Destroy(s *Surface) {
	s.destroyed = true
	delete(c.surfaces, s.id)
	c.attrs.Remove(s.id)
}

// Ack records the client acknowledging a configure serial.
func (c *Compositor) Ack(s *Surface, serial uint32) {
	s.Attributes(func(a *Attributes) {
		if serial > a.AckedSerial {
			a.AckedSerial = serial
		}
	})
}

func (c *Compositor) assign(s *Surface, r Role) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if s.role != nil {
		return ErrRoleAssigned
	}
	s.role = r
	return nil
}

func (c *Compositor) sendConfigure(s *Surface, size image.Point) uint32 {
	c.serial++
	serial := c.serial
	s.Attributes(func(a *Attributes) { a.MarkConfigureSent(serial) })
	if c.sink != nil {
		c.sink.Configure(ConfigureEvent{Surface: s.id, Serial: serial, Size: size})
	}
	return serial
}
