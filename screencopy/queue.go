// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package screencopy

import "errors"

var (
	// ErrAlreadyQueued is returned when pushing a session that waits in
	// another queue, or pushing the same attempt twice.
	ErrAlreadyQueued = errors.New("screencopy: session already queued")

	// ErrSessionClosed is returned when pushing a session the client closed.
	ErrSessionClosed = errors.New("screencopy: session closed")

	// ErrNoHomeQueue is returned when requeueing a session that was never
	// queued.
	ErrNoHomeQueue = errors.New("screencopy: session has no home queue")
)

// Queue holds capture attempts in arrival order. Each output, workspace and
// window owns one.
type Queue struct {
	name    string
	entries []Pending
}

// NewQueue creates an empty queue. The name is used in log output.
func NewQueue(name string) *Queue {
	return &Queue{name: name}
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// Len returns the number of waiting attempts.
func (q *Queue) Len() int { return len(q.entries) }

// Entries returns a copy of the waiting attempts.
func (q *Queue) Entries() []Pending {
	return append([]Pending(nil), q.entries...)
}

// Push appends an attempt. A session waits in at most one queue, and the
// same (session, buffer) attempt at most once.
func (q *Queue) Push(s *Session, params BufferParams) error {
	if !s.Alive() {
		return ErrSessionClosed
	}
	if s.queue != nil && s.queue != q {
		return ErrAlreadyQueued
	}
	for _, p := range q.entries {
		if p.Session == s && p.Params.Buffer == params.Buffer {
			return ErrAlreadyQueued
		}
	}

	q.entries = append(q.entries, Pending{Session: s, Params: params})
	s.queue = q
	s.home = q
	s.queued++
	s.state = StatePending
	return nil
}

// Drain removes and returns all waiting attempts.
func (q *Queue) Drain() []Pending {
	out := q.entries
	q.entries = nil
	for _, p := range out {
		p.Session.dequeued()
	}
	return out
}

// Remove drops every attempt of s and returns how many were dropped.
func (q *Queue) Remove(s *Session) int {
	n := 0
	kept := q.entries[:0]
	for _, p := range q.entries {
		if p.Session == s {
			s.dequeued()
			n++
			continue
		}
		kept = append(kept, p)
	}
	clear(q.entries[len(kept):])
	q.entries = kept
	return n
}

// disposition is the outcome of classifying a queued attempt.
type disposition uint8

const (
	retain disposition = iota
	take
	takeDeferred
)

// partition classifies every entry in one pass. Retained entries keep their
// relative order; taken entries are returned in queue order.
func (q *Queue) partition(classify func(Pending) disposition) (taken, deferred []Pending) {
	kept := q.entries[:0]
	for _, p := range q.entries {
		switch classify(p) {
		case take:
			p.Session.dequeued()
			taken = append(taken, p)
		case takeDeferred:
			p.Session.dequeued()
			deferred = append(deferred, p)
		default:
			kept = append(kept, p)
		}
	}
	clear(q.entries[len(kept):])
	q.entries = kept
	return taken, deferred
}

func (s *Session) dequeued() {
	s.queued--
	if s.queued <= 0 {
		s.queued = 0
		s.queue = nil
	}
}
