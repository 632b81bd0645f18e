// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

// Command commitreplay replays a scripted sequence of client events through
// the commit path and prints what the compositor did: configures sent,
// windows mapped, captures delivered or failed.
//
// Usage:
//
//	commitreplay --config session.yaml [--backend kms|headless] [--log-level debug] [--snapshot DIR]
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/Elias-Graf/cosmic-comp/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath  string
		backendName string
		logLevel    string
		snapshotDir string
	)

	flagSet := pflag.NewFlagSet("commitreplay", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to the session YAML file (required)")
	flagSet.StringVar(&backendName, "backend", "", "backend to use, overriding the config (kms, headless)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level, overriding the config (debug, info, warn, error)")
	flagSet.StringVar(&snapshotDir, "snapshot", "", "write every delivered capture as PNG into this directory")
	flagSet.Usage = func() { printHelp(os.Stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if configPath == "" {
		printHelp(os.Stderr, flagSet)
		return errors.New("--config is required")
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if backendName != "" {
		cfg.Backend = backendName
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	r, err := newReplayer(cfg, logger, os.Stdout)
	if err != nil {
		return err
	}
	r.snapshotDir = snapshotDir
	return r.run()
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `commitreplay replays a scripted session through the commit path.

Usage:
  commitreplay --config FILE [flags]

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
