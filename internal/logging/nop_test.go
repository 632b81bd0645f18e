// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNopDisabled(t *testing.T) {
	l := Nop()
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), lvl) {
			t.Errorf("Nop() enabled at %v", lvl)
		}
	}
	// Derived loggers stay silent.
	if l.With("k", "v").WithGroup("g").Enabled(context.Background(), slog.LevelError) {
		t.Error("derived nop logger is enabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := slog.Default()
	if OrNop(l) != l {
		t.Error("OrNop() replaced a non-nil logger")
	}
}
