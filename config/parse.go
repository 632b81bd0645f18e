// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package config

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/Elias-Graf/cosmic-comp/shell"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// ParseAPI parses a graphics API name.
func ParseAPI(s string) (gputypes.Backend, error) {
	switch strings.ToLower(s) {
	case "vulkan":
		return gputypes.BackendVulkan, nil
	case "gl", "gles", "opengl":
		return gputypes.BackendGL, nil
	case "metal":
		return gputypes.BackendMetal, nil
	case "dx12":
		return gputypes.BackendDX12, nil
	default:
		return gputypes.BackendEmpty, fmt.Errorf("unknown api %q (supported: vulkan, gl, metal, dx12)", s)
	}
}

// ParseAdapterType parses an adapter type name.
func ParseAdapterType(s string) (gpucontext.AdapterType, error) {
	switch strings.ToLower(s) {
	case "discrete":
		return gpucontext.AdapterTypeDiscrete, nil
	case "integrated":
		return gpucontext.AdapterTypeIntegrated, nil
	case "software":
		return gpucontext.AdapterTypeSoftware, nil
	case "unknown", "":
		return gpucontext.AdapterTypeUnknown, nil
	default:
		return gpucontext.AdapterTypeUnknown, fmt.Errorf("unknown adapter %q (supported: discrete, integrated, software, unknown)", s)
	}
}

// ParseColor parses #rrggbb or #rrggbbaa. Empty is opaque white.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, nil
	}
	raw := strings.TrimPrefix(s, "#")
	if len(raw) != 6 && len(raw) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	c := color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// ParseLayer parses a layer-shell layer name. Empty is top.
func ParseLayer(s string) (surface.Layer, error) {
	switch s {
	case "background":
		return surface.LayerBackground, nil
	case "bottom":
		return surface.LayerBottom, nil
	case "top", "":
		return surface.LayerTop, nil
	case "overlay":
		return surface.LayerOverlay, nil
	default:
		return 0, fmt.Errorf("unknown layer %q (supported: background, bottom, top, overlay)", s)
	}
}

// ParseAnchor parses a list of edge names into an anchor set.
func ParseAnchor(edges []string) (surface.Anchor, error) {
	var a surface.Anchor
	for _, e := range edges {
		switch e {
		case "top":
			a |= surface.AnchorTop
		case "bottom":
			a |= surface.AnchorBottom
		case "left":
			a |= surface.AnchorLeft
		case "right":
			a |= surface.AnchorRight
		default:
			return 0, fmt.Errorf("unknown anchor %q", e)
		}
	}
	return a, nil
}

// ParseEdges parses the edges grabbed by an interactive resize.
func ParseEdges(edges []string) (shell.ResizeEdge, error) {
	if len(edges) == 0 {
		return 0, fmt.Errorf("resize needs at least one edge")
	}
	var r shell.ResizeEdge
	for _, e := range edges {
		switch e {
		case "top":
			r |= shell.EdgeTop
		case "bottom":
			r |= shell.EdgeBottom
		case "left":
			r |= shell.EdgeLeft
		case "right":
			r |= shell.EdgeRight
		default:
			return 0, fmt.Errorf("unknown edge %q", e)
		}
	}
	return r, nil
}
