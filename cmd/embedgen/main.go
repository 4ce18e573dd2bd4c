// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// embedgen is the pre-build data-embedding pipeline: it merges JSONC
// fragment files into combined dataset artifacts and emits them as
// compilable source fragments so the native build links its data
// instead of locating files at runtime.
//
// One invocation runs the whole pipeline described by the config
// file. Every generated file is individually gated — by timestamps,
// by the recorded source set, and finally by a content digest — so a
// no-change invocation writes nothing and leaves downstream compiler
// caches intact.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/embedgen/lib/pipeline"
	"github.com/bureau-foundation/embedgen/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var verbose bool
	var showVersion bool

	flagSet := pflag.NewFlagSet("embedgen", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "embedgen.yaml", "path to the pipeline definition")
	flagSet.BoolVar(&verbose, "verbose", false, "log staleness decisions for every job")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if showVersion {
		fmt.Printf("embedgen %s\n", version.Info())
		return nil
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	config, err := pipeline.LoadConfig(configPath)
	if err != nil {
		return err
	}
	return pipeline.Run(context.Background(), config, logger)
}
