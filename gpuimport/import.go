// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package gpuimport triggers early import of committed buffers to the GPU
// render nodes driving the outputs a surface is visible on.
//
// Early import is an optimization: importing a client buffer right after
// commit hides the import latency from the next frame. Outputs without a
// hardware render node are skipped.
package gpuimport

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// Node identifies a GPU render node. Several outputs may share a node.
type Node struct {
	// Path is the device node, e.g. "/dev/dri/renderD128".
	Path string

	// API is the graphics API used on this node.
	API gputypes.Backend
}

// String implements fmt.Stringer.
func (n Node) String() string {
	return fmt.Sprintf("%s (%v)", n.Path, n.API)
}

// Importer is implemented by backends able to import buffers to render
// nodes.
type Importer interface {
	// TargetNodeForOutput returns the node that renders o.
	TargetNodeForOutput(o *output.Output) (Node, bool)

	// TryEarlyImport imports the current buffer of s to node for output o.
	TryEarlyImport(s *surface.Surface, o *output.Output, node Node) error
}

// Coordinator deduplicates imports per commit.
type Coordinator struct {
	log *slog.Logger
}

// NewCoordinator creates a coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{log: logging.Nop()}
}

// SetLogger sets the coordinator's logger. Nil disables logging.
func (c *Coordinator) SetLogger(l *slog.Logger) { c.log = logging.OrNop(l) }

// EarlyImport imports the buffer of s once to every distinct render node
// among outputs. It must run after any mapping done for the commit, since
// outputs are the outputs s is visible on. A nil importer means the backend
// is not hardware accelerated and nothing happens.
func (c *Coordinator) EarlyImport(imp Importer, s *surface.Surface, outputs []*output.Output) {
	if imp == nil || len(outputs) == 0 {
		return
	}

	imported := make(map[Node]struct{}, len(outputs))
	for _, o := range outputs {
		node, ok := imp.TargetNodeForOutput(o)
		if !ok {
			continue
		}
		if _, done := imported[node]; done {
			continue
		}
		imported[node] = struct{}{}

		if err := imp.TryEarlyImport(s, o, node); err != nil {
			c.log.Debug("early import failed", "surface", s, "output", o, "node", node, "err", err)
		}
	}
}
