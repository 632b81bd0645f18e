// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package screencopy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Elias-Graf/cosmic-comp/eventloop"
	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/surface"
	"github.com/Elias-Graf/cosmic-comp/workspace"
)

// RenderError is a failed capture. Reason is reported to the client, Err
// is only logged.
type RenderError struct {
	Reason FailureReason
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return "screencopy: render failed: " + e.Reason.String()
	}
	return fmt.Sprintf("screencopy: render failed (%v): %v", e.Reason, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer renders offscreen captures. Implementations report whether the
// buffer received new content; false means nothing changed since the last
// capture of the session. Failures should be *RenderError values.
type Renderer interface {
	RenderWindow(s *Session, params BufferParams, window *surface.Surface) (damaged bool, err error)
	RenderWorkspace(s *Session, params BufferParams, o *output.Output, h workspace.Handle) (damaged bool, err error)
}

// IdleInserter schedules deferred tasks, see eventloop.Loop.
type IdleInserter interface {
	InsertIdle(t eventloop.Task)
}

// ActiveSpace pairs an output with the workspace it currently shows.
type ActiveSpace struct {
	Output    *output.Output
	Workspace workspace.Handle
}

// ActiveSet is the set of (output, workspace) pairs currently displayed.
type ActiveSet map[ActiveSpace]struct{}

// NewActiveSet builds a set from pairs.
func NewActiveSet(pairs ...ActiveSpace) ActiveSet {
	set := make(ActiveSet, len(pairs))
	for _, p := range pairs {
		set[p] = struct{}{}
	}
	return set
}

// Contains reports whether h is shown on o.
func (a ActiveSet) Contains(o *output.Output, h workspace.Handle) bool {
	_, ok := a[ActiveSpace{Output: o, Workspace: h}]
	return ok
}

// Batch collects attempts that ride the next frame of their output.
// The zero Batch is empty and unset; it becomes set on the first Add.
type Batch struct {
	entries []Pending
	set     bool
}

// Add appends attempts and marks the batch as set.
func (b *Batch) Add(p ...Pending) {
	b.entries = append(b.entries, p...)
	b.set = true
}

// Drain moves every attempt waiting in q into the batch. An empty q leaves
// the batch untouched.
func (b *Batch) Drain(q *Queue) {
	drained := q.Drain()
	if len(drained) == 0 {
		return
	}
	for _, p := range drained {
		p.Session.markScheduled()
	}
	b.Add(drained...)
}

// IsSet reports whether anything was ever added.
func (b *Batch) IsSet() bool { return b.set }

// Len returns the number of collected attempts.
func (b *Batch) Len() int { return len(b.entries) }

// Entries returns the collected attempts.
func (b *Batch) Entries() []Pending { return b.entries }

// Scheduler turns pending attempts into frame batches and deferred render
// tasks.
type Scheduler struct {
	loop     IdleInserter
	renderer Renderer
	log      *slog.Logger
}

// NewScheduler creates a scheduler posting deferred renders to loop.
func NewScheduler(loop IdleInserter, renderer Renderer) *Scheduler {
	return &Scheduler{loop: loop, renderer: renderer, log: logging.Nop()}
}

// SetLogger sets the scheduler's logger. Nil disables logging.
func (sc *Scheduler) SetLogger(l *slog.Logger) { sc.log = logging.OrNop(l) }

// ScheduleWindow posts one deferred window render per attempt. pending is
// typically drained from the committed window's queue.
func (sc *Scheduler) ScheduleWindow(window *surface.Surface, pending []Pending) {
	for _, p := range pending {
		p.Session.markScheduled()
		sc.loop.InsertIdle(&windowTask{sched: sc, pending: p, window: window})
	}
}

// ScanWorkspace resolves the workspace queue q of workspace h, which the
// committed surface shows on output o. Attempts for a workspace that is
// displayed somewhere move into batch; attempts for exactly (o, h) get a
// deferred offscreen render; everything else stays queued in order.
//
// Only workspace sessions may wait in a workspace queue. Anything else
// panics.
func (sc *Scheduler) ScanWorkspace(q *Queue, h workspace.Handle, o *output.Output, active ActiveSet, batch *Batch) {
	if q.Len() == 0 {
		return
	}

	taken, deferred := q.partition(func(p Pending) disposition {
		wt, ok := p.Session.Type().(WorkspaceTarget)
		if !ok {
			panic(fmt.Sprintf("screencopy: %T session in workspace queue %q", p.Session.Type(), q.Name()))
		}
		switch {
		case active.Contains(wt.Output, wt.Workspace):
			return take
		case wt.Output == o && wt.Workspace == h:
			return takeDeferred
		default:
			return retain
		}
	})

	for _, p := range taken {
		p.Session.markScheduled()
	}
	if len(taken) > 0 {
		batch.Add(taken...)
	}
	for _, p := range deferred {
		p.Session.markScheduled()
		sc.loop.InsertIdle(&workspaceTask{sched: sc, pending: p, output: o, workspace: h})
	}

	sc.log.Debug("workspace queue scanned",
		"queue", q.Name(), "output", o, "batched", len(taken), "deferred", len(deferred), "left", q.Len())
}

// Resolve applies the outcome of a render attempt: no damage requeues the
// attempt, success marks the session rendered, failure fails it. Closed
// sessions are ignored.
func (sc *Scheduler) Resolve(p Pending, damaged bool, err error) {
	s := p.Session
	if !s.Alive() {
		return
	}

	switch {
	case err != nil:
		reason := ReasonUnspec
		var re *RenderError
		if errors.As(err, &re) {
			reason = re.Reason
		}
		sc.log.Warn("screencopy session failed", "session", s, "reason", reason, "err", err)
		s.Fail(reason)
	case !damaged:
		if err := s.StillPending(p.Params); err != nil {
			sc.log.Debug("screencopy requeue dropped", "session", s, "err", err)
		}
	default:
		s.markRendered(p.Params)
	}
}

// windowTask is a deferred window capture.
type windowTask struct {
	sched   *Scheduler
	pending Pending
	window  *surface.Surface
}

func (t *windowTask) Run() {
	if !t.pending.Session.Alive() {
		return
	}
	damaged, err := t.sched.renderer.RenderWindow(t.pending.Session, t.pending.Params, t.window)
	t.sched.Resolve(t.pending, damaged, err)
}

// workspaceTask is a deferred offscreen workspace capture.
type workspaceTask struct {
	sched     *Scheduler
	pending   Pending
	output    *output.Output
	workspace workspace.Handle
}

func (t *workspaceTask) Run() {
	if !t.pending.Session.Alive() {
		return
	}
	damaged, err := t.sched.renderer.RenderWorkspace(t.pending.Session, t.pending.Params, t.output, t.workspace)
	t.sched.Resolve(t.pending, damaged, err)
}
