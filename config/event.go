// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"image"
)

// Event operations.
const (
	OpToplevel  = "toplevel"
	OpPopup     = "popup"
	OpLayer     = "layer"
	OpAttach    = "attach"
	OpDamage    = "damage"
	OpCommit    = "commit"
	OpDestroy   = "destroy"
	OpCapture   = "capture"
	OpClose     = "close"
	OpActivate  = "activate"
	OpFocus     = "focus"
	OpResize    = "resize"
	OpResizeEnd = "resize_end"
	OpDispatch  = "dispatch"
	OpFlush     = "flush"
)

// Capture targets.
const (
	TargetOutput    = "output"
	TargetWorkspace = "workspace"
	TargetWindow    = "window"
)

// Event is one scripted client or compositor event. Which fields apply
// depends on Op.
type Event struct {
	Op string `yaml:"op"`

	// Surface names the surface the event applies to. Names are chosen by
	// the script and bound by toplevel, popup and layer events.
	Surface string `yaml:"surface"`

	// Parent names the parent surface of a popup.
	Parent string `yaml:"parent"`

	Output    string `yaml:"output"`
	Workspace string `yaml:"workspace"`

	// Position and Size give the popup rectangle relative to its parent,
	// the requested layer surface size, or the attached buffer size.
	Position Position `yaml:"position"`
	Size     Size     `yaml:"size"`

	// Color fills an attached buffer, as #rrggbb or #rrggbbaa.
	Color string `yaml:"color"`

	// Layer surface state.
	Layer         string   `yaml:"layer"`
	Anchor        []string `yaml:"anchor"`
	ExclusiveZone int      `yaml:"exclusive_zone"`
	Namespace     string   `yaml:"namespace"`

	// Session names a capture session, bound by capture events.
	Session string `yaml:"session"`
	Target  string `yaml:"target"`
	Age     uint32 `yaml:"age"`

	// Edges lists the edges grabbed by a resize.
	Edges []string `yaml:"edges"`

	Title string `yaml:"title"`
}

// Rect returns Position and Size as a rectangle.
func (e Event) Rect() image.Rectangle {
	at := image.Pt(e.Position.X, e.Position.Y)
	return image.Rectangle{Min: at, Max: at.Add(image.Point(e.Size))}
}

var (
	errSurfaceRequired = errors.New("surface is required")
	errOutputRequired  = errors.New("output is required")
)

func (e Event) validate(outputs, workspaces map[string]bool) error {
	needOutput := func() error {
		if e.Output == "" {
			return errOutputRequired
		}
		if !outputs[e.Output] {
			return fmt.Errorf("unknown output %q", e.Output)
		}
		return nil
	}
	needWorkspace := func() error {
		if !workspaces[e.Workspace] {
			return fmt.Errorf("unknown workspace %q", e.Workspace)
		}
		return nil
	}

	switch e.Op {
	case OpToplevel, OpDamage, OpCommit, OpDestroy, OpResizeEnd:
		if e.Surface == "" {
			return errSurfaceRequired
		}
	case OpPopup:
		if e.Surface == "" || e.Parent == "" {
			return errors.New("surface and parent are required")
		}
	case OpLayer:
		if e.Surface == "" {
			return errSurfaceRequired
		}
		if err := needOutput(); err != nil {
			return err
		}
		if _, err := ParseLayer(e.Layer); err != nil {
			return err
		}
		if _, err := ParseAnchor(e.Anchor); err != nil {
			return err
		}
	case OpAttach:
		if e.Surface == "" {
			return errSurfaceRequired
		}
		if e.Size.X < 0 || e.Size.Y < 0 {
			return fmt.Errorf("negative buffer size %dx%d", e.Size.X, e.Size.Y)
		}
		if _, err := ParseColor(e.Color); err != nil {
			return err
		}
	case OpCapture:
		if e.Session == "" {
			return errors.New("session is required")
		}
		switch e.Target {
		case TargetOutput:
			return needOutput()
		case TargetWorkspace:
			if err := needOutput(); err != nil {
				return err
			}
			return needWorkspace()
		case TargetWindow:
			if e.Surface == "" {
				return errSurfaceRequired
			}
		default:
			return fmt.Errorf("unknown capture target %q (supported: output, workspace, window)", e.Target)
		}
	case OpClose:
		if e.Session == "" {
			return errors.New("session is required")
		}
	case OpActivate:
		if err := needOutput(); err != nil {
			return err
		}
		return needWorkspace()
	case OpFocus:
		return needOutput()
	case OpResize:
		if e.Surface == "" {
			return errSurfaceRequired
		}
		if _, err := ParseEdges(e.Edges); err != nil {
			return err
		}
	case OpDispatch, OpFlush:
	default:
		return fmt.Errorf("unknown op %q", e.Op)
	}
	return nil
}
