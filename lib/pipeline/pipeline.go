// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/embedgen/lib/aggregate"
	"github.com/bureau-foundation/embedgen/lib/buildversion"
	"github.com/bureau-foundation/embedgen/lib/embed"
	"github.com/bureau-foundation/embedgen/lib/gitrev"
	"github.com/bureau-foundation/embedgen/lib/hashstore"
)

// Run executes the full pipeline described by config: version header,
// revision header, every aggregation job, every embed job, then one
// hash store flush. The first failing job aborts the rest; because
// the failed job never updated its manifest or hash entry, the next
// run re-detects its staleness rather than trusting partial output.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store := hashstore.Load(config.HashStorePath(), logger)

	if config.Version != nil {
		if err := runVersion(config, store, logger); err != nil {
			return err
		}
	}
	if config.Revision != nil {
		if err := runRevision(ctx, config, store, logger); err != nil {
			return err
		}
	}

	// Aggregations all run before any embed job: every embed source
	// produced by an aggregation (declared via its producer) is
	// guaranteed current by the time it is read.
	for _, declared := range config.Aggregations {
		result, err := aggregate.Run(config.aggregationJob(declared), logger)
		if err != nil {
			return err
		}
		if !result.Built {
			logger.Info("aggregation up to date", "job", declared.Name)
		}
	}

	for _, declared := range config.Embeds {
		outcome, err := embed.Run(config.embedJob(declared), store, logger)
		if err != nil {
			return fmt.Errorf("embed job %s: %w", declared.Symbol, err)
		}
		if !outcome.Written {
			logger.Info("embed skipped", "symbol", declared.Symbol, "reason", outcome.Reason)
		}
	}

	if err := store.Flush(config.HashStorePath()); err != nil {
		return err
	}
	return nil
}

func runVersion(config *Config, store *hashstore.Store, logger *slog.Logger) error {
	version, err := buildversion.Parse(config.resolve(config.Version.BuildConfig))
	if err != nil {
		return err
	}

	headerPath := config.resolve(config.Version.Header)
	if err := os.MkdirAll(filepath.Dir(headerPath), 0755); err != nil {
		return fmt.Errorf("creating version header directory: %w", err)
	}
	written, err := buildversion.WriteHeader(version, headerPath, store)
	if err != nil {
		return err
	}
	if written {
		logger.Info("version header written", "version", version)
	} else {
		logger.Info("version header up to date", "version", version)
	}

	return buildversion.WriteVersionFile(version, config.resolve(config.Version.File))
}

func runRevision(ctx context.Context, config *Config, store *hashstore.Store, logger *slog.Logger) error {
	revision := gitrev.Resolve(ctx, config.Root, config.resolve(config.Revision.Fallback), logger)

	headerPath := config.resolve(config.Revision.Header)
	if err := os.MkdirAll(filepath.Dir(headerPath), 0755); err != nil {
		return fmt.Errorf("creating revision header directory: %w", err)
	}
	written, err := gitrev.WriteHeader(revision, headerPath, store)
	if err != nil {
		return err
	}
	if written {
		logger.Info("revision header written", "revision", revision)
	} else {
		logger.Info("revision header up to date", "revision", revision)
	}
	return nil
}
