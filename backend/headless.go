// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"log/slog"

	"github.com/Elias-Graf/cosmic-comp/gpuimport"
	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// Headless presents frames without a GPU. Render nodes in the
// configuration are ignored.
type Headless struct {
	frames frameQueue
}

// NewHeadless creates a headless backend.
func NewHeadless(cfg Config) *Headless {
	h := &Headless{}
	h.frames.log = logging.OrNop(cfg.Logger)
	h.frames.log.Info("backend initialized", "backend", HeadlessName)
	return h
}

// Name returns the backend identifier.
func (h *Headless) Name() string { return HeadlessName }

// SetLogger sets the backend's logger. Nil disables logging.
func (h *Headless) SetLogger(l *slog.Logger) { h.frames.log = logging.OrNop(l) }

// TargetNodeForOutput always reports no node.
func (h *Headless) TargetNodeForOutput(*output.Output) (gpuimport.Node, bool) {
	return gpuimport.Node{}, false
}

// TryEarlyImport is never reached since no output has a node.
func (h *Headless) TryEarlyImport(*surface.Surface, *output.Output, gpuimport.Node) error {
	return ErrUnknownNode
}

// ScheduleRender records a frame for o.
func (h *Headless) ScheduleRender(o *output.Output, sessions []screencopy.Pending) {
	h.frames.schedule(o, sessions)
}

// Frames returns the frames scheduled since the last Flush.
func (h *Headless) Frames() []Frame { return h.frames.pending() }

// Flush presents the scheduled frames.
func (h *Headless) Flush(c Capturer, r Resolver) int { return h.frames.flush(c, r) }
