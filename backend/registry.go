// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
)

// Backend name constants.
const (
	// KMSName is the name of the render node backend.
	KMSName = "kms"
	// HeadlessName is the name of the backend without GPU.
	HeadlessName = "headless"
)

// Factory creates a backend from cfg.
type Factory func(cfg Config) (Backend, error)

// registry holds registered backends. Priority order for selection: a
// backend with render nodes is preferred over headless.
var registry = gpucontext.NewRegistry[Factory](
	gpucontext.WithPriority(KMSName, HeadlessName),
)

func init() {
	Register(KMSName, func(cfg Config) (Backend, error) { return NewKMS(cfg) })
	Register(HeadlessName, func(cfg Config) (Backend, error) { return NewHeadless(cfg), nil })
}

// Register registers a backend factory with the given name. If a backend
// with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registry.Register(name, func() Factory { return factory })
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registry.Unregister(name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	names := registry.Available()
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// New creates the backend registered as name. An empty name selects the
// best available backend.
func New(name string, cfg Config) (Backend, error) {
	if name == "" {
		name = registry.BestName()
		if name == "" {
			return nil, &NotFoundError{}
		}
	}
	if !registry.Has(name) {
		return nil, &NotFoundError{Name: name}
	}
	b, err := registry.Get(name)(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend: create %q: %w", name, err)
	}
	return b, nil
}

// NotFoundError indicates a named backend is not registered.
type NotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return "backend: no backend registered"
	}
	return fmt.Sprintf("backend: %q not registered (available: %v)", e.Name, Available())
}
