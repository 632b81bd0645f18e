// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/zeebo/blake3"
	"golang.org/x/image/draw"

	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/surface"
	"github.com/Elias-Graf/cosmic-comp/workspace"
)

var (
	// ErrNoBuffer is reported when a capture attempt carries no buffer.
	ErrNoBuffer = errors.New("render: capture has no buffer")

	// ErrWindowGone is reported when capturing a destroyed window.
	ErrWindowGone = errors.New("render: window destroyed")

	// ErrUnknownWorkspace is returned by content sources for handles they
	// do not know.
	ErrUnknownWorkspace = errors.New("render: unknown workspace")
)

// Placement positions a surface in global layout coordinates.
type Placement struct {
	Surface  *surface.Surface
	Location image.Point
}

// ContentSource lists what is visible where. Placements are ordered bottom
// to top.
type ContentSource interface {
	// OutputContent returns what output o currently shows.
	OutputContent(o *output.Output) []Placement

	// WorkspaceContent returns workspace h laid out as if it were shown on
	// output o.
	WorkspaceContent(o *output.Output, h workspace.Handle) ([]Placement, error)
}

type fingerprint [32]byte

// Software fills capture buffers on the CPU.
type Software struct {
	source ContentSource
	last   map[*screencopy.Session]fingerprint
	log    *slog.Logger
}

// NewSoftware creates a renderer reading scene content from source.
func NewSoftware(source ContentSource) *Software {
	return &Software{
		source: source,
		last:   make(map[*screencopy.Session]fingerprint),
		log:    logging.Nop(),
	}
}

// SetLogger sets the renderer's logger. Nil disables logging.
func (r *Software) SetLogger(l *slog.Logger) { r.log = logging.OrNop(l) }

// Forget drops the damage state kept for s. State of closed sessions is
// also dropped on the next render.
func (r *Software) Forget(s *screencopy.Session) { delete(r.last, s) }

func (r *Software) prune() {
	for s := range r.last {
		if !s.Alive() {
			delete(r.last, s)
		}
	}
}

// Capture renders p according to its session type.
func (r *Software) Capture(p screencopy.Pending) (bool, error) {
	switch t := p.Session.Type().(type) {
	case screencopy.OutputTarget:
		return r.RenderOutput(p.Session, p.Params, t.Output)
	case screencopy.WorkspaceTarget:
		return r.RenderWorkspace(p.Session, p.Params, t.Output, t.Workspace)
	case screencopy.WindowTarget:
		return r.RenderWindow(p.Session, p.Params, t.Surface)
	default:
		panic(fmt.Sprintf("render: unknown session type %T", t))
	}
}

// RenderOutput captures the current content of o.
func (r *Software) RenderOutput(s *screencopy.Session, params screencopy.BufferParams, o *output.Output) (bool, error) {
	if o == nil {
		return false, &screencopy.RenderError{Reason: screencopy.ReasonInvalidOutput}
	}
	if err := checkSize(params, o.PixelSize()); err != nil {
		return false, err
	}
	return r.composite(s, params, o.Geometry().Min, o.Scale(), r.source.OutputContent(o)), nil
}

// RenderWorkspace captures workspace h as if shown on o.
func (r *Software) RenderWorkspace(s *screencopy.Session, params screencopy.BufferParams, o *output.Output, h workspace.Handle) (bool, error) {
	if o == nil {
		return false, &screencopy.RenderError{Reason: screencopy.ReasonInvalidOutput}
	}
	if err := checkSize(params, o.PixelSize()); err != nil {
		return false, err
	}
	content, err := r.source.WorkspaceContent(o, h)
	if err != nil {
		return false, &screencopy.RenderError{Reason: screencopy.ReasonInvalidWorkspace, Err: err}
	}
	return r.composite(s, params, o.Geometry().Min, o.Scale(), content), nil
}

// RenderWindow captures the buffer of window. A window without a buffer has
// nothing new to show and reports no damage.
func (r *Software) RenderWindow(s *screencopy.Session, params screencopy.BufferParams, window *surface.Surface) (bool, error) {
	if window == nil || !window.Alive() {
		return false, &screencopy.RenderError{Reason: screencopy.ReasonInvalidWindow, Err: ErrWindowGone}
	}
	if !window.HasBuffer() {
		return false, nil
	}
	if err := checkSize(params, window.Buffer().Dimensions()); err != nil {
		return false, err
	}
	return r.composite(s, params, image.Point{}, 1, []Placement{{Surface: window}}), nil
}

// composite draws content into the capture buffer unless it is unchanged
// since the session's previous capture and the buffer still holds that
// capture.
func (r *Software) composite(s *screencopy.Session, params screencopy.BufferParams, origin image.Point, scale float64, content []Placement) bool {
	r.prune()
	fp := contentFingerprint(params.Buffer.Bounds().Size(), scale, origin, content)
	if prev, ok := r.last[s]; ok && prev == fp && params.Age > 0 {
		return false
	}

	dst := params.Buffer
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for _, pl := range content {
		buf := pl.Surface.Buffer()
		if buf == nil || buf.Image == nil {
			continue
		}
		src := buf.Image
		at := pl.Location.Sub(origin)
		dr := image.Rectangle{
			Min: scalePoint(at, scale),
			Max: scalePoint(at.Add(src.Bounds().Size()), scale),
		}.Add(dst.Bounds().Min)

		if scale == 1 {
			draw.Draw(dst, dr, src, src.Bounds().Min, draw.Over)
		} else {
			draw.ApproxBiLinear.Scale(dst, dr, src, src.Bounds(), draw.Over, nil)
		}
	}

	r.last[s] = fp
	r.log.Debug("capture rendered", "session", s, "surfaces", len(content))
	return true
}

func contentFingerprint(size image.Point, scale float64, origin image.Point, content []Placement) fingerprint {
	var buf []byte
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(size.X)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(size.Y)))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(scale))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(origin.X)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(origin.Y)))
	for _, pl := range content {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(pl.Surface.ID()))
		buf = binary.LittleEndian.AppendUint64(buf, pl.Surface.Generation())
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(pl.Location.X)))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(pl.Location.Y)))
	}
	return fingerprint(blake3.Sum256(buf))
}

func checkSize(params screencopy.BufferParams, want image.Point) error {
	if params.Buffer == nil {
		return &screencopy.RenderError{Reason: screencopy.ReasonBufferConstraints, Err: ErrNoBuffer}
	}
	if got := params.Buffer.Bounds().Size(); got != want {
		return &screencopy.RenderError{
			Reason: screencopy.ReasonBufferConstraints,
			Err:    fmt.Errorf("render: buffer is %v, want %v", got, want),
		}
	}
	return nil
}

func scalePoint(p image.Point, scale float64) image.Point {
	if scale == 1 {
		return p
	}
	return image.Pt(int(math.Round(float64(p.X)*scale)), int(math.Round(float64(p.Y)*scale)))
}
