// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package screencopy

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/surface"
	"github.com/Elias-Graf/cosmic-comp/workspace"
)

// SessionType is what a session captures: OutputTarget, WorkspaceTarget or
// WindowTarget. The set is closed.
type SessionType interface {
	isSessionType()
}

// OutputTarget captures an output continuously.
type OutputTarget struct {
	Output *output.Output
}

// WorkspaceTarget captures a workspace rendered as if shown on Output,
// whether or not it is currently active there.
type WorkspaceTarget struct {
	Output    *output.Output
	Workspace workspace.Handle
}

// WindowTarget captures the content of a single window.
type WindowTarget struct {
	Surface *surface.Surface
}

func (OutputTarget) isSessionType()    {}
func (WorkspaceTarget) isSessionType() {}
func (WindowTarget) isSessionType()    {}

// TargetOutput returns the output component of t. Window targets have none.
func TargetOutput(t SessionType) (*output.Output, bool) {
	switch t := t.(type) {
	case OutputTarget:
		return t.Output, true
	case WorkspaceTarget:
		return t.Output, true
	case WindowTarget:
		return nil, false
	default:
		panic(fmt.Sprintf("screencopy: unknown session type %T", t))
	}
}

// FailureReason tells the client why a capture failed.
type FailureReason uint8

const (
	ReasonUnspec FailureReason = iota
	ReasonInvalidOutput
	ReasonOutputDisabled
	ReasonInvalidWorkspace
	ReasonInvalidWindow
	ReasonBufferConstraints
)

// String returns the protocol name of the reason.
func (r FailureReason) String() string {
	switch r {
	case ReasonUnspec:
		return "unspec"
	case ReasonInvalidOutput:
		return "invalid_output"
	case ReasonOutputDisabled:
		return "output_disabled"
	case ReasonInvalidWorkspace:
		return "invalid_workspace"
	case ReasonInvalidWindow:
		return "invalid_window"
	case ReasonBufferConstraints:
		return "buffer_constraints"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// State is the progress of the current capture attempt.
type State uint8

const (
	StatePending State = iota
	StateScheduled
	StateRendered
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateScheduled:
		return "scheduled"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BufferParams describes the destination buffer of a capture attempt.
type BufferParams struct {
	Buffer *image.RGBA
	Format gputypes.TextureFormat
	Size   gputypes.Extent3D

	// Age is the number of frames since the buffer was last filled, 0 if
	// its content is undefined.
	Age uint32
}

// NewBufferParams describes buf as an RGBA8 capture buffer.
func NewBufferParams(buf *image.RGBA) BufferParams {
	b := buf.Bounds()
	return BufferParams{
		Buffer: buf,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Size:   gputypes.NewExtent2D(uint32(b.Dx()), uint32(b.Dy())),
	}
}

// Pending is one capture attempt awaiting a render opportunity.
type Pending struct {
	Session *Session
	Params  BufferParams
}

// Client is the protocol side of a session, notified of outcomes.
type Client interface {
	Ready(s *Session, params BufferParams)
	Failed(s *Session, reason FailureReason)
}

// Session is a capture request created by the protocol layer. Sessions
// belong to the event loop; only Alive may be called from other goroutines.
type Session struct {
	typ    SessionType
	client Client
	closed atomic.Bool

	state  State
	reason FailureReason
	frames uint64

	home   *Queue
	queue  *Queue
	queued int
}

// NewSession creates a session of type t reporting to client. A nil client
// drops notifications.
func NewSession(t SessionType, client Client) *Session {
	if t == nil {
		panic("screencopy: nil session type")
	}
	return &Session{typ: t, client: client}
}

// Type returns what the session captures.
func (s *Session) Type() SessionType { return s.typ }

// Alive reports whether the client still holds the session.
func (s *Session) Alive() bool { return !s.closed.Load() }

// Close marks the session destroyed by the client and removes its pending
// attempts. It is safe to call more than once.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	if s.queue != nil {
		s.queue.Remove(s)
	}
}

// State returns the state of the current attempt.
func (s *Session) State() State { return s.state }

// Reason returns the failure reason of a failed attempt.
func (s *Session) Reason() FailureReason { return s.reason }

// Frames returns the number of successfully captured frames.
func (s *Session) Frames() uint64 { return s.frames }

// Queue returns the queue currently holding the session, nil if none.
func (s *Session) Queue() *Queue { return s.queue }

// Fail ends the current attempt with reason and notifies the client.
func (s *Session) Fail(reason FailureReason) {
	s.state = StateFailed
	s.reason = reason
	if s.client != nil {
		s.client.Failed(s, reason)
	}
}

// StillPending returns an attempt that produced no damage to the queue it
// was last taken from.
func (s *Session) StillPending(params BufferParams) error {
	if s.home == nil {
		return ErrNoHomeQueue
	}
	return s.home.Push(s, params)
}

func (s *Session) markScheduled() { s.state = StateScheduled }

func (s *Session) markRendered(params BufferParams) {
	s.state = StateRendered
	s.frames++
	if s.client != nil {
		s.client.Ready(s, params)
	}
}

// String implements fmt.Stringer.
func (s *Session) String() string {
	switch t := s.typ.(type) {
	case OutputTarget:
		return fmt.Sprintf("output session %v", t.Output)
	case WorkspaceTarget:
		return fmt.Sprintf("workspace session %v on %v", t.Workspace, t.Output)
	case WindowTarget:
		return fmt.Sprintf("window session %v", t.Surface)
	default:
		return "session"
	}
}
