// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package surface

import "sync"

// Attributes is the per-surface protocol state shared between the commit
// path and other readers such as the renderer.
type Attributes struct {
	// InitialConfigureSent flips from false to true exactly once, when the
	// first configure event for the surface is sent. It never reverts.
	InitialConfigureSent bool

	// LastSerial is the serial of the most recent configure event.
	LastSerial uint32

	// AckedSerial is the last configure serial acknowledged by the client.
	AckedSerial uint32
}

// MarkConfigureSent records a configure event with the given serial.
// Only the first call changes InitialConfigureSent.
func (a *Attributes) MarkConfigureSent(serial uint32) {
	a.InitialConfigureSent = true
	a.LastSerial = serial
}

type attributeEntry struct {
	mu    sync.Mutex
	attrs Attributes
}

// AttributeStore holds role attributes for all surfaces of a compositor,
// keyed by surface id.
//
// The store lock only guards the id→entry map. Each entry carries its own
// lock which is held for the duration of a With callback.
type AttributeStore struct {
	mu      sync.Mutex
	entries map[ID]*attributeEntry
}

// NewAttributeStore creates an empty store.
func NewAttributeStore() *AttributeStore {
	return &AttributeStore{entries: make(map[ID]*attributeEntry)}
}

// With runs fn with exclusive access to the attributes of the surface id.
// The entry is created on first access. fn must not retain the pointer.
func (s *AttributeStore) With(id ID, fn func(*Attributes)) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.attrs)
}

// Snapshot returns a copy of the attributes of id.
func (s *AttributeStore) Snapshot(id ID) Attributes {
	var out Attributes
	s.With(id, func(a *Attributes) { out = *a })
	return out
}

// Remove drops the entry of a destroyed surface.
func (s *AttributeStore) Remove(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of tracked surfaces.
func (s *AttributeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *AttributeStore) entry(id ID) *attributeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries == nil {
		s.entries = make(map[ID]*attributeEntry)
	}
	e, ok := s.entries[id]
	if !ok {
		e = &attributeEntry{}
		s.entries[id] = e
	}
	return e
}
