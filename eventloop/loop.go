// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package eventloop provides the idle task queue of the compositor's single
// threaded event loop.
//
// Idle tasks are deferred work: they run after the current event handler
// returns and before the next external event is dispatched, in insertion
// order. A task inserted while idle tasks are being dispatched runs on the
// following dispatch, so a task that keeps rescheduling itself cannot starve
// event processing.
package eventloop

// Task is a unit of deferred work.
type Task interface {
	Run()
}

// TaskFunc adapts a function to Task.
type TaskFunc func()

// Run calls f.
func (f TaskFunc) Run() { f() }

// Loop owns the idle queue. The zero value is ready to use.
//
// Loop is not safe for concurrent use; it belongs to the event loop
// goroutine.
type Loop struct {
	idle []Task
}

// New creates an empty loop.
func New() *Loop { return &Loop{} }

// InsertIdle schedules t to run on the next DispatchIdle.
func (l *Loop) InsertIdle(t Task) {
	l.idle = append(l.idle, t)
}

// Pending returns the number of queued idle tasks.
func (l *Loop) Pending() int { return len(l.idle) }

// DispatchIdle runs the tasks queued before the call and returns how many
// ran.
func (l *Loop) DispatchIdle() int {
	batch := l.idle
	l.idle = nil
	for i, t := range batch {
		batch[i] = nil
		t.Run()
	}
	return len(batch)
}

// Drain dispatches until no idle task is left and returns the total number
// of tasks run.
func (l *Loop) Drain() int {
	n := 0
	for len(l.idle) > 0 {
		n += l.DispatchIdle()
	}
	return n
}
