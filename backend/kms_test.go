// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/Elias-Graf/cosmic-comp/gpuimport"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

var (
	card0 = gpuimport.Node{Path: "/dev/dri/renderD128", API: gputypes.BackendVulkan}
	card1 = gpuimport.Node{Path: "/dev/dri/renderD129", API: gputypes.BackendVulkan}
	soft  = gpuimport.Node{Path: "/dev/dri/renderD130", API: gputypes.BackendGL}
)

func testKMS(t *testing.T) *KMS {
	t.Helper()
	k, err := NewKMS(Config{
		Nodes: []NodeConfig{
			{Node: card0, Device: StaticDevice{Info: gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeDiscrete}}},
			{Node: card1},
			{Node: soft, Device: StaticDevice{Info: gpucontext.AdapterInfo{Name: "llvmpipe", Type: gpucontext.AdapterTypeSoftware}}},
		},
		OutputNodes: map[string]string{"A": card0.Path, "B": card1.Path, "C": soft.Path},
	})
	if err != nil {
		t.Fatalf("NewKMS() error = %v", err)
	}
	return k
}

func TestTargetNodeForOutput(t *testing.T) {
	k := testKMS(t)
	tests := []struct {
		output string
		want   gpuimport.Node
		ok     bool
	}{
		{"A", card0, true},
		{"B", card1, true},
		{"C", gpuimport.Node{}, false},
		{"D", gpuimport.Node{}, false},
	}
	for _, tt := range tests {
		got, ok := k.TargetNodeForOutput(output.New(tt.output, image.Rect(0, 0, 1, 1)))
		if got != tt.want || ok != tt.ok {
			t.Errorf("TargetNodeForOutput(%s) = %v, %v; want %v, %v", tt.output, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTryEarlyImport(t *testing.T) {
	k := testKMS(t)
	c := surface.NewCompositor(nil)
	o := output.New("A", image.Rect(0, 0, 1, 1))
	s := c.CreateSurface()

	if err := k.TryEarlyImport(s, o, card0); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("import without buffer error = %v", err)
	}

	s.Attach(surface.NewShmBuffer(image.NewRGBA(image.Rect(0, 0, 2, 2))))
	s.LoadBuffer()
	if err := k.TryEarlyImport(s, o, card0); err != nil {
		t.Fatalf("TryEarlyImport() error = %v", err)
	}
	if err := k.TryEarlyImport(s, o, card0); err != nil {
		t.Fatalf("repeated TryEarlyImport() error = %v", err)
	}
	if n := len(k.Imports()); n != 1 {
		t.Errorf("got %d imports for one buffer generation, want 1", n)
	}

	s.Damage()
	s.LoadBuffer()
	_ = k.TryEarlyImport(s, o, card0)
	if n := len(k.Imports()); n != 2 {
		t.Errorf("got %d imports after new content, want 2", n)
	}

	if err := k.TryEarlyImport(s, o, gpuimport.Node{Path: "/dev/null"}); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("import to unknown node error = %v", err)
	}

	depth := c.CreateSurface()
	depth.Attach(&surface.Buffer{Format: gputypes.TextureFormatDepth32Float})
	depth.LoadBuffer()
	if err := k.TryEarlyImport(depth, o, card0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("import of depth buffer error = %v", err)
	}
}

func TestEarlyImportThroughCoordinator(t *testing.T) {
	k, err := NewKMS(Config{
		Nodes:       []NodeConfig{{Node: card0}, {Node: card1}},
		OutputNodes: map[string]string{"A": card0.Path, "B": card1.Path, "C": card0.Path},
	})
	if err != nil {
		t.Fatal(err)
	}
	c := surface.NewCompositor(nil)
	s := c.CreateSurface()
	s.Attach(surface.NewShmBuffer(image.NewRGBA(image.Rect(0, 0, 2, 2))))
	s.LoadBuffer()

	outputs := []*output.Output{
		output.New("A", image.Rect(0, 0, 1, 1)),
		output.New("B", image.Rect(1, 0, 2, 1)),
		output.New("C", image.Rect(2, 0, 3, 1)),
	}
	gpuimport.NewCoordinator().EarlyImport(k, s, outputs)

	imports := k.Imports()
	if len(imports) != 2 || imports[0].Node != card0 || imports[1].Node != card1 {
		t.Errorf("imports = %+v, want one per node", imports)
	}
}

type captureLog struct {
	captured []screencopy.Pending
	resolved []bool
}

func (c *captureLog) Capture(p screencopy.Pending) (bool, error) {
	c.captured = append(c.captured, p)
	return true, nil
}

func (c *captureLog) Resolve(_ screencopy.Pending, damaged bool, _ error) {
	c.resolved = append(c.resolved, damaged)
}

func TestFramesCoalesce(t *testing.T) {
	h := NewHeadless(Config{})
	a := output.New("A", image.Rect(0, 0, 1, 1))
	b := output.New("B", image.Rect(1, 0, 2, 1))

	s1 := screencopy.NewSession(screencopy.OutputTarget{Output: a}, nil)
	s2 := screencopy.NewSession(screencopy.OutputTarget{Output: a}, nil)
	dead := screencopy.NewSession(screencopy.OutputTarget{Output: a}, nil)
	dead.Close()

	h.ScheduleRender(a, nil)
	h.ScheduleRender(b, []screencopy.Pending{})
	h.ScheduleRender(a, []screencopy.Pending{{Session: s1}, {Session: dead}})
	h.ScheduleRender(a, []screencopy.Pending{{Session: s2}})

	frames := h.Frames()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Output != a || frames[0].Requests != 3 || len(frames[0].Sessions) != 3 {
		t.Errorf("frame A = %+v", frames[0])
	}
	if frames[1].Sessions == nil {
		t.Error("frame B lost its empty capture list")
	}

	log := &captureLog{}
	if n := h.Flush(log, log); n != 2 {
		t.Errorf("Flush() = %d, want 2", n)
	}
	if len(log.captured) != 2 || log.captured[0].Session != s1 || log.captured[1].Session != s2 {
		t.Errorf("captured %+v, want s1 and s2", log.captured)
	}
	if len(h.Frames()) != 0 {
		t.Error("frames left after Flush")
	}
}

func TestHeadlessHasNoNodes(t *testing.T) {
	h := NewHeadless(Config{Nodes: []NodeConfig{{Node: card0}}})
	if _, ok := h.TargetNodeForOutput(output.New("A", image.Rect(0, 0, 1, 1))); ok {
		t.Error("headless backend reported a render node")
	}
}
