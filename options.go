// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package comp

import (
	"log/slog"

	"github.com/Elias-Graf/cosmic-comp/eventloop"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
)

// Option configures a State during creation.
//
// Example:
//
//	st := comp.New(sh, b, comp.WithLogger(logger))
type Option func(*options)

// options holds optional configuration for State creation.
type options struct {
	logger   *slog.Logger
	loop     *eventloop.Loop
	renderer screencopy.Renderer
}

// defaultOptions returns the default state options.
func defaultOptions() options {
	return options{
		logger: Logger(),
	}
}

// WithLogger sets the logger of the state and all its components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEventLoop makes deferred captures run on loop instead of a private
// one.
func WithEventLoop(loop *eventloop.Loop) Option {
	return func(o *options) {
		o.loop = loop
	}
}

// WithRenderer replaces the software renderer used by deferred window and
// workspace captures.
func WithRenderer(r screencopy.Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}
