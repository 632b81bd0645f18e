// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/Elias-Graf/cosmic-comp/gpuimport"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
)

// Common backend errors.
var (
	// ErrNoBuffer is returned when importing a surface without a buffer.
	ErrNoBuffer = errors.New("backend: surface has no buffer")

	// ErrUnsupportedFormat is returned when a node cannot sample a buffer
	// format.
	ErrUnsupportedFormat = errors.New("backend: unsupported buffer format")

	// ErrUnknownNode is returned for nodes the backend does not drive.
	ErrUnknownNode = errors.New("backend: unknown render node")
)

// Backend drives outputs.
type Backend interface {
	// Name returns the backend identifier (e.g., "kms", "headless").
	Name() string

	// TargetNodeForOutput and TryEarlyImport implement early import. A
	// backend without render nodes never reports a target.
	gpuimport.Importer

	// ScheduleRender records a frame for o. Sessions attached to the
	// frame are captured when the frame is flushed.
	ScheduleRender(o *output.Output, sessions []screencopy.Pending)

	// Frames returns the frames scheduled since the last Flush.
	Frames() []Frame

	// Flush presents every scheduled frame, capturing attached sessions
	// through c and reporting each outcome to r. It returns the number of
	// frames presented.
	Flush(c Capturer, r Resolver) int
}

// Capturer fills the buffer of a capture attempt.
type Capturer interface {
	Capture(p screencopy.Pending) (damaged bool, err error)
}

// Resolver applies the outcome of a capture attempt.
type Resolver interface {
	Resolve(p screencopy.Pending, damaged bool, err error)
}

// Device is the part of a GPU device a backend needs to decide whether a
// node can import buffers. Every gpucontext.DeviceProvider satisfies it.
type Device interface {
	SurfaceFormat() gputypes.TextureFormat
	AdapterInfo() gpucontext.AdapterInfo
}

var _ Device = gpucontext.DeviceProvider(nil)

// StaticDevice is a Device described by configuration.
type StaticDevice struct {
	Info   gpucontext.AdapterInfo
	Format gputypes.TextureFormat
}

// SurfaceFormat returns the scanout format.
func (d StaticDevice) SurfaceFormat() gputypes.TextureFormat { return d.Format }

// AdapterInfo returns the adapter description.
func (d StaticDevice) AdapterInfo() gpucontext.AdapterInfo { return d.Info }

// NodeConfig describes one render node.
type NodeConfig struct {
	Node   gpuimport.Node
	Device Device

	// GPU receives imported buffers. Nil records imports without uploading.
	GPU *GPU
}

// Config configures a backend.
type Config struct {
	// Nodes lists the render nodes available to the backend.
	Nodes []NodeConfig

	// OutputNodes maps output names to the path of the node driving them.
	OutputNodes map[string]string

	Logger *slog.Logger
}

// Frame is a render request for one output.
type Frame struct {
	Output *output.Output

	// Sessions is nil when no capture is attached to the frame.
	Sessions []screencopy.Pending

	// Requests counts the ScheduleRender calls coalesced into the frame.
	Requests int
}

// frameQueue coalesces render requests per output until flushed.
type frameQueue struct {
	frames []Frame
	log    *slog.Logger
}

func (q *frameQueue) schedule(o *output.Output, sessions []screencopy.Pending) {
	for i := range q.frames {
		f := &q.frames[i]
		if f.Output != o {
			continue
		}
		f.Requests++
		if sessions != nil {
			if f.Sessions == nil {
				f.Sessions = make([]screencopy.Pending, 0, len(sessions))
			}
			f.Sessions = append(f.Sessions, sessions...)
		}
		return
	}
	q.frames = append(q.frames, Frame{Output: o, Sessions: sessions, Requests: 1})
}

func (q *frameQueue) pending() []Frame {
	return append([]Frame(nil), q.frames...)
}

func (q *frameQueue) flush(c Capturer, r Resolver) int {
	frames := q.frames
	q.frames = nil
	for _, f := range frames {
		for _, p := range f.Sessions {
			if !p.Session.Alive() {
				continue
			}
			damaged, err := c.Capture(p)
			r.Resolve(p, damaged, err)
		}
		q.log.Debug("frame presented", "output", f.Output, "captures", len(f.Sessions), "requests", f.Requests)
	}
	return len(frames)
}
