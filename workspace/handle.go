// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package workspace defines the identity of a workspace.
//
// The workspace contents live in the shell; everything that only needs to
// name a workspace (screencopy sessions, active space sets) uses Handle.
package workspace

import "github.com/google/uuid"

// Handle identifies a workspace. The zero Handle names no workspace.
type Handle struct {
	id uuid.UUID
}

// NewHandle allocates a fresh workspace handle.
func NewHandle() Handle {
	return Handle{id: uuid.New()}
}

// ParseHandle parses the textual form produced by Handle.String.
func ParseHandle(s string) (Handle, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Handle{}, err
	}
	return Handle{id: id}, nil
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.id == uuid.Nil }

// String implements fmt.Stringer.
func (h Handle) String() string { return h.id.String() }
