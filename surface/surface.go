// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// ID identifies a surface for the lifetime of the compositor.
type ID uint64

// Buffer is a client buffer attached to a surface.
//
// Image holds the CPU-visible pixels when the buffer is shared memory; it is
// nil for buffers that only exist on a GPU.
type Buffer struct {
	Image  *image.RGBA
	Format gputypes.TextureFormat
	Size   gputypes.Extent3D
}

// NewShmBuffer wraps CPU pixels as an RGBA8 buffer.
func NewShmBuffer(img *image.RGBA) *Buffer {
	b := img.Bounds()
	return &Buffer{
		Image:  img,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Size:   gputypes.NewExtent2D(uint32(b.Dx()), uint32(b.Dy())),
	}
}

// Dimensions returns the buffer size as a point.
func (b *Buffer) Dimensions() image.Point {
	if b == nil {
		return image.Point{}
	}
	return image.Pt(int(b.Size.Width), int(b.Size.Height))
}

// Surface is a client drawable receiving commits.
//
// Surfaces are not safe for concurrent use; they are owned by the
// compositor's event loop. Role attributes are the exception, see
// AttributeStore.
type Surface struct {
	id    ID
	role  Role
	attrs *AttributeStore

	pending    *Buffer
	hasPending bool
	damaged    bool

	current    *Buffer
	commits    uint64
	generation uint64
	destroyed  bool
}

// ID returns the surface id.
func (s *Surface) ID() ID { return s.id }

// Role returns the role of the surface, or nil if none was assigned yet.
func (s *Surface) Role() Role { return s.role }

// Attach stages buffer b for the next commit. Attaching nil unmaps the
// surface content on commit.
func (s *Surface) Attach(b *Buffer) {
	s.pending = b
	s.hasPending = true
}

// Damage marks the surface content as changed for the next commit.
func (s *Surface) Damage() { s.damaged = true }

// LoadBuffer applies the staged buffer state of a commit. It must be called
// once at the start of commit handling, before anything inspects Buffer.
func (s *Surface) LoadBuffer() {
	s.commits++
	if pa, ok := s.role.(pendingApplier); ok {
		pa.applyPending()
	}
	if s.hasPending {
		s.current = s.pending
		s.pending = nil
		s.hasPending = false
		s.generation++
	} else if s.damaged && s.current != nil {
		s.generation++
	}
	s.damaged = false
}

// Buffer returns the current buffer, nil if none is attached.
func (s *Surface) Buffer() *Buffer { return s.current }

// HasBuffer reports whether the surface currently has a buffer.
func (s *Surface) HasBuffer() bool { return s.current != nil }

// Commits returns the number of commits handled so far.
func (s *Surface) Commits() uint64 { return s.commits }

// Generation increments every time the visible content changes. Renderers
// compare generations to detect damage.
func (s *Surface) Generation() uint64 { return s.generation }

// Attributes runs fn with exclusive access to the role attributes.
func (s *Surface) Attributes(fn func(*Attributes)) {
	s.attrs.With(s.id, fn)
}

// InitialConfigureSent reports whether the initial configure was sent.
func (s *Surface) InitialConfigureSent() bool {
	var sent bool
	s.Attributes(func(a *Attributes) { sent = a.InitialConfigureSent })
	return sent
}

// Alive reports whether the client still holds the surface.
func (s *Surface) Alive() bool { return !s.destroyed }

// String implements fmt.Stringer.
func (s *Surface) String() string {
	if s == nil {
		return "<nil surface>"
	}
	return fmt.Sprintf("surface#%d", s.id)
}
