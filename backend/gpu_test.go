// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"image"
	"testing"

	"github.com/gogpu/wgpu/hal/noop"

	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// openNoopGPU opens a device without real hardware.
func openNoopGPU(t *testing.T) *GPU {
	t.Helper()
	g, err := OpenGPU(&noop.API{})
	if err != nil {
		t.Fatalf("OpenGPU() error = %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func TestOpenGPU(t *testing.T) {
	g := openNoopGPU(t)
	if g.Device == nil || g.Queue == nil {
		t.Fatal("OpenGPU() returned no device or queue")
	}
}

func TestImportUploadsTexture(t *testing.T) {
	g := openNoopGPU(t)
	k, err := NewKMS(Config{
		Nodes:       []NodeConfig{{Node: card0, GPU: g}},
		OutputNodes: map[string]string{"A": card0.Path},
	})
	if err != nil {
		t.Fatalf("NewKMS() error = %v", err)
	}
	defer k.Close()

	c := surface.NewCompositor(nil)
	o := output.New("A", image.Rect(0, 0, 4, 4))
	s := c.CreateSurface()
	s.Attach(surface.NewShmBuffer(image.NewRGBA(image.Rect(0, 0, 4, 4))))
	s.LoadBuffer()

	if err := k.TryEarlyImport(s, o, card0); err != nil {
		t.Fatalf("TryEarlyImport() error = %v", err)
	}
	if tex, ok := k.Texture(s, card0.Path); !ok || tex == nil {
		t.Fatal("no texture after import")
	}

	if err := k.TryEarlyImport(s, o, card0); err != nil {
		t.Fatal(err)
	}
	if len(k.Imports()) != 1 {
		t.Errorf("same generation imported %d times", len(k.Imports()))
	}

	s.Attach(surface.NewShmBuffer(image.NewRGBA(image.Rect(0, 0, 8, 8))))
	s.LoadBuffer()
	if err := k.TryEarlyImport(s, o, card0); err != nil {
		t.Fatal(err)
	}
	if len(k.nodes[card0.Path].textures) != 1 {
		t.Errorf("node holds %d textures, want the replacement only", len(k.nodes[card0.Path].textures))
	}

	k.Forget(s)
	if _, ok := k.Texture(s, card0.Path); ok {
		t.Error("texture kept after Forget")
	}
	if err := k.TryEarlyImport(s, o, card0); err != nil {
		t.Fatal(err)
	}
	if len(k.Imports()) != 3 {
		t.Errorf("got %d imports, want 3", len(k.Imports()))
	}
}
