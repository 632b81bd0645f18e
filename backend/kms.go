// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Elias-Graf/cosmic-comp/gpuimport"
	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// Import records one buffer imported to a node.
type Import struct {
	Surface    surface.ID
	Output     string
	Node       gpuimport.Node
	Generation uint64
}

// renderNode is a node the KMS backend drives.
type renderNode struct {
	node   gpuimport.Node
	device Device
	gpu    *GPU
	// imported maps surfaces to the buffer generation last imported.
	imported map[surface.ID]uint64
	textures map[surface.ID]hal.Texture
}

// release destroys the texture imported for id.
func (n *renderNode) release(id surface.ID) {
	if tex, ok := n.textures[id]; ok {
		n.gpu.Device.DestroyTexture(tex)
		delete(n.textures, id)
	}
	delete(n.imported, id)
}

// hardware reports whether the node can import client buffers. Software
// adapters render on the CPU and read client memory directly.
func (n *renderNode) hardware() bool {
	return n.device == nil || n.device.AdapterInfo().Type != gpucontext.AdapterTypeSoftware
}

// KMS drives outputs through GPU render nodes.
type KMS struct {
	nodes   map[string]*renderNode
	outputs map[string]string
	imports []Import
	frames  frameQueue
	log     *slog.Logger
}

// NewKMS creates a KMS backend. Every output mapping must name a
// configured node.
func NewKMS(cfg Config) (*KMS, error) {
	k := &KMS{
		nodes:   make(map[string]*renderNode, len(cfg.Nodes)),
		outputs: make(map[string]string, len(cfg.OutputNodes)),
		log:     logging.OrNop(cfg.Logger),
	}
	k.frames.log = k.log

	for _, nc := range cfg.Nodes {
		if _, dup := k.nodes[nc.Node.Path]; dup {
			return nil, fmt.Errorf("backend: duplicate render node %s", nc.Node.Path)
		}
		k.nodes[nc.Node.Path] = &renderNode{
			node:     nc.Node,
			device:   nc.Device,
			gpu:      nc.GPU,
			imported: make(map[surface.ID]uint64),
			textures: make(map[surface.ID]hal.Texture),
		}
	}
	for out, path := range cfg.OutputNodes {
		if _, ok := k.nodes[path]; !ok {
			return nil, fmt.Errorf("%w: %s for output %s", ErrUnknownNode, path, out)
		}
		k.outputs[out] = path
	}
	k.log.Info("backend initialized", "backend", KMSName, "nodes", len(k.nodes), "outputs", len(k.outputs))
	return k, nil
}

// Name returns the backend identifier.
func (k *KMS) Name() string { return KMSName }

// SetLogger sets the backend's logger. Nil disables logging.
func (k *KMS) SetLogger(l *slog.Logger) {
	k.log = logging.OrNop(l)
	k.frames.log = k.log
}

// TargetNodeForOutput returns the hardware node driving o.
func (k *KMS) TargetNodeForOutput(o *output.Output) (gpuimport.Node, bool) {
	path, ok := k.outputs[o.Name()]
	if !ok {
		return gpuimport.Node{}, false
	}
	n := k.nodes[path]
	if !n.hardware() {
		return gpuimport.Node{}, false
	}
	return n.node, true
}

// TryEarlyImport imports the current buffer of s to node. On nodes with an
// opened GPU the buffer is uploaded into a texture replacing the previous
// one. Importing the same buffer generation twice is a no-op.
func (k *KMS) TryEarlyImport(s *surface.Surface, o *output.Output, node gpuimport.Node) error {
	n, ok := k.nodes[node.Path]
	if !ok || n.node != node {
		return fmt.Errorf("%w: %v", ErrUnknownNode, node)
	}
	buf := s.Buffer()
	if buf == nil {
		return ErrNoBuffer
	}
	if !importable(buf.Format, n.device) {
		return fmt.Errorf("%w: %v on %v", ErrUnsupportedFormat, buf.Format, node)
	}

	gen := s.Generation()
	if last, ok := n.imported[s.ID()]; ok && last == gen {
		return nil
	}
	if n.gpu != nil {
		tex, err := n.gpu.upload(fmt.Sprintf("surface_%d_gen_%d", s.ID(), gen), buf)
		if err != nil {
			return fmt.Errorf("backend: import to %v: %w", node, err)
		}
		if old, ok := n.textures[s.ID()]; ok {
			n.gpu.Device.DestroyTexture(old)
		}
		n.textures[s.ID()] = tex
	}
	n.imported[s.ID()] = gen
	k.imports = append(k.imports, Import{Surface: s.ID(), Output: o.Name(), Node: node, Generation: gen})
	k.log.Debug("buffer imported", "surface", s, "node", node, "generation", gen)
	return nil
}

// Imports returns every import performed so far, oldest first.
func (k *KMS) Imports() []Import { return append([]Import(nil), k.imports...) }

// Texture returns the texture holding the buffer of s imported to the node
// at path.
func (k *KMS) Texture(s *surface.Surface, path string) (hal.Texture, bool) {
	n, ok := k.nodes[path]
	if !ok {
		return nil, false
	}
	tex, ok := n.textures[s.ID()]
	return tex, ok
}

// Forget drops the import state of s on every node and destroys its
// textures.
func (k *KMS) Forget(s *surface.Surface) {
	for _, n := range k.nodes {
		n.release(s.ID())
	}
}

// Close destroys every imported texture. The GPUs stay open; they belong
// to the caller.
func (k *KMS) Close() {
	for _, n := range k.nodes {
		for id := range n.textures {
			n.release(id)
		}
	}
}

// ScheduleRender records a frame for o.
func (k *KMS) ScheduleRender(o *output.Output, sessions []screencopy.Pending) {
	k.frames.schedule(o, sessions)
}

// Frames returns the frames scheduled since the last Flush.
func (k *KMS) Frames() []Frame { return k.frames.pending() }

// Flush presents the scheduled frames.
func (k *KMS) Flush(c Capturer, r Resolver) int { return k.frames.flush(c, r) }

func importable(f gputypes.TextureFormat, d Device) bool {
	switch {
	case f == gputypes.TextureFormatUndefined, f.IsDepthStencil():
		return false
	case f == gputypes.TextureFormatRGBA8Unorm, f == gputypes.TextureFormatBGRA8Unorm:
		return true
	default:
		return d != nil && f == d.SurfaceFormat()
	}
}
