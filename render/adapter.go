// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package render

import (
	"log/slog"

	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
)

// FrameScheduler requests a render of an output. sessions is nil when no
// capture attempt is attached to the frame.
type FrameScheduler interface {
	ScheduleRender(o *output.Output, sessions []screencopy.Pending)
}

// QueueLookup returns the capture queue owned by output o, nil if the
// output has none.
type QueueLookup func(o *output.Output) *screencopy.Queue

// Adapter schedules per-output renders after a commit.
type Adapter struct {
	log *slog.Logger
}

// NewAdapter creates an adapter.
func NewAdapter() *Adapter {
	return &Adapter{log: logging.Nop()}
}

// SetLogger sets the adapter's logger. Nil disables logging.
func (a *Adapter) SetLogger(l *slog.Logger) { a.log = logging.OrNop(l) }

// Schedule requests a render of every output in outputs. batch holds the
// attempts collected by the workspace scan; each output's own queue is
// drained into it before filtering, so attempts only reach the output
// their session targets.
//
// Attempts in batch that no output in outputs accepted go back to their
// home queue.
func (a *Adapter) Schedule(fs FrameScheduler, outputs []*output.Output, batch *screencopy.Batch, queueFor QueueLookup) {
	delivered := make(map[int]bool)

	for _, o := range outputs {
		if queueFor != nil {
			if q := queueFor(o); q != nil {
				batch.Drain(q)
			}
		}

		var sessions []screencopy.Pending
		if batch.IsSet() {
			sessions = make([]screencopy.Pending, 0, batch.Len())
			for i, p := range batch.Entries() {
				if target, ok := screencopy.TargetOutput(p.Session.Type()); ok && target == o {
					sessions = append(sessions, p)
					delivered[i] = true
				}
			}
		}

		a.log.Debug("schedule render", "output", o, "sessions", len(sessions))
		fs.ScheduleRender(o, sessions)
	}

	for i, p := range batch.Entries() {
		if delivered[i] || !p.Session.Alive() {
			continue
		}
		if err := p.Session.StillPending(p.Params); err != nil {
			a.log.Debug("undelivered capture dropped", "session", p.Session, "err", err)
		}
	}
}
