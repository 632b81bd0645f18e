// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistryDefaults(t *testing.T) {
	if got := Available(); !slices.Equal(got, []string{HeadlessName, KMSName}) {
		t.Errorf("Available() = %v", got)
	}
	if !IsRegistered(KMSName) || !IsRegistered(HeadlessName) {
		t.Error("built-in backends not registered")
	}
}

func TestNewBest(t *testing.T) {
	b, err := New("", Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.Name() != KMSName {
		t.Errorf("best backend = %q, want %q", b.Name(), KMSName)
	}
}

func TestNewByName(t *testing.T) {
	b, err := New(HeadlessName, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := b.(*Headless); !ok {
		t.Errorf("New(%q) = %T", HeadlessName, b)
	}
}

func TestNewNotFound(t *testing.T) {
	_, err := New("vulkan-direct", Config{})
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Name != "vulkan-direct" {
		t.Errorf("New() error = %v, want NotFoundError", err)
	}
}

func TestNewFactoryError(t *testing.T) {
	_, err := New(KMSName, Config{OutputNodes: map[string]string{"DP-1": "/dev/dri/missing"}})
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("New() error = %v, want ErrUnknownNode", err)
	}
}

func TestRegisterUnregister(t *testing.T) {
	Register("test", func(cfg Config) (Backend, error) { return NewHeadless(cfg), nil })
	defer Unregister("test")

	if !IsRegistered("test") {
		t.Fatal("IsRegistered(test) = false after Register")
	}
	b, err := New("test", Config{})
	if err != nil || b == nil {
		t.Errorf("New(test) = %v, %v", b, err)
	}
}
