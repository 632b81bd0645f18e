// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Package config loads the YAML description of a compositor session: its
// outputs, render nodes and workspaces, plus a script of client events to
// replay.
package config

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the top-level configuration.
type Config struct {
	// Backend selects the output backend ("kms" or "headless"). Empty
	// selects the best available one.
	Backend string `yaml:"backend"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// Seat names the input seat. Defaults to seat0.
	Seat string `yaml:"seat"`

	// Outputs lists the connected outputs. The seat starts on the first.
	Outputs []Output `yaml:"outputs"`

	// Nodes lists the GPU render nodes.
	Nodes []Node `yaml:"nodes"`

	// Script is the sequence of client events to replay.
	Script []Event `yaml:"script"`
}

// Output describes one output.
type Output struct {
	Name     string   `yaml:"name"`
	Position Position `yaml:"position"`
	Size     Size     `yaml:"size"`

	// Scale defaults to 1.
	Scale float64 `yaml:"scale"`

	// Node is the path of the render node driving the output, empty for
	// none.
	Node string `yaml:"node"`

	// Workspaces names the workspaces of the output; the first is active.
	// Defaults to a single workspace named after the output.
	Workspaces []string `yaml:"workspaces"`
}

// Geometry returns the output rectangle in global coordinates.
func (o Output) Geometry() image.Rectangle {
	at := image.Pt(o.Position.X, o.Position.Y)
	return image.Rectangle{Min: at, Max: at.Add(image.Point(o.Size))}
}

// Node describes one render node.
type Node struct {
	Path string `yaml:"path"`

	// API is the graphics API: vulkan, gl, metal or dx12.
	API string `yaml:"api"`

	// Adapter is the adapter type: discrete, integrated, software or
	// unknown. Defaults to unknown.
	Adapter string `yaml:"adapter"`

	// Name is the adapter name reported by the driver.
	Name string `yaml:"name"`

	// GPU selects the device buffers are uploaded to: "none" records
	// imports only, "noop" opens a device without hardware, "hal" opens
	// the registered HAL backend of API. Defaults to none.
	GPU string `yaml:"gpu"`
}

// Node GPU modes.
const (
	GPUNone = "none"
	GPUNoop = "noop"
	GPUHAL  = "hal"
)

// Position is a point in the global layout.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Size is a width and height in pixels.
type Size image.Point

// UnmarshalYAML accepts both "1920x1080" and {width: 1920, height: 1080}.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		w, h, ok := strings.Cut(value.Value, "x")
		if !ok {
			return fmt.Errorf("line %d: size %q: want WIDTHxHEIGHT", value.Line, value.Value)
		}
		x, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("line %d: size %q: %w", value.Line, value.Value, err)
		}
		y, err := strconv.Atoi(h)
		if err != nil {
			return fmt.Errorf("line %d: size %q: %w", value.Line, value.Value, err)
		}
		*s = Size{X: x, Y: y}
		return nil
	}

	var raw struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*s = Size{X: raw.Width, Y: raw.Height}
	return nil
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Seat == "" {
		c.Seat = "seat0"
	}
	for i := range c.Outputs {
		o := &c.Outputs[i]
		if o.Scale == 0 {
			o.Scale = 1
		}
		if len(o.Workspaces) == 0 {
			o.Workspaces = []string{o.Name}
		}
	}
	for i := range c.Nodes {
		if c.Nodes[i].Adapter == "" {
			c.Nodes[i].Adapter = "unknown"
		}
		if c.Nodes[i].GPU == "" {
			c.Nodes[i].GPU = GPUNone
		}
	}
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level: %v", err)
	}
	if len(c.Outputs) == 0 {
		return invalid("at least one output is required")
	}

	nodes := make(map[string]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		if n.Path == "" {
			return invalid("node %d: path is required", i)
		}
		if nodes[n.Path] {
			return invalid("node %q: duplicate path", n.Path)
		}
		nodes[n.Path] = true
		if _, err := ParseAPI(n.API); err != nil {
			return invalid("node %q: %v", n.Path, err)
		}
		if _, err := ParseAdapterType(n.Adapter); err != nil {
			return invalid("node %q: %v", n.Path, err)
		}
		switch n.GPU {
		case GPUNone, GPUNoop, GPUHAL:
		default:
			return invalid("node %q: unknown gpu %q (supported: none, noop, hal)", n.Path, n.GPU)
		}
	}

	outputs := make(map[string]bool, len(c.Outputs))
	workspaces := make(map[string]bool)
	for i, o := range c.Outputs {
		if o.Name == "" {
			return invalid("output %d: name is required", i)
		}
		if outputs[o.Name] {
			return invalid("output %q: duplicate name", o.Name)
		}
		outputs[o.Name] = true
		if o.Size.X <= 0 || o.Size.Y <= 0 {
			return invalid("output %q: size must be positive, got %dx%d", o.Name, o.Size.X, o.Size.Y)
		}
		if o.Scale < 0 {
			return invalid("output %q: negative scale", o.Name)
		}
		if o.Node != "" && !nodes[o.Node] {
			return invalid("output %q: unknown node %q", o.Name, o.Node)
		}
		for _, ws := range o.Workspaces {
			if workspaces[ws] {
				return invalid("output %q: duplicate workspace %q", o.Name, ws)
			}
			workspaces[ws] = true
		}
	}

	for i, ev := range c.Script {
		if err := ev.validate(outputs, workspaces); err != nil {
			return invalid("script event %d (%s): %v", i, ev.Op, err)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}
