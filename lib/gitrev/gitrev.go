// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gitrev resolves the revision identifier embedded into
// builds. Resolution degrades, never fails: the git CLI first, then a
// fallback file maintained for source archives built outside a
// repository, then the sentinel "unknown". A build must not break
// because it was made from a tarball on a machine without git.
package gitrev

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/bureau-foundation/embedgen/lib/hashstore"
)

// Unknown is the sentinel revision used when neither git nor the
// fallback file can supply one.
const Unknown = "unknown"

// Resolve returns the revision identifier for the repository at dir.
// It asks "git rev-parse HEAD" (targeted via -C, no reliance on the
// process working directory); on any failure it falls back to reading
// fallbackPath, and finally to Unknown. Output containing whitespace
// is rejected — it means git printed a message, not a revision.
func Resolve(ctx context.Context, dir, fallbackPath string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	revision, err := revParse(ctx, dir)
	if err == nil {
		return revision
	}
	logger.Warn("git revision unavailable", "error", err)

	if fallbackPath != "" {
		data, err := os.ReadFile(fallbackPath)
		if err == nil {
			if fallback := strings.TrimSpace(string(data)); fallback != "" {
				logger.Info("using fallback revision file", "path", fallbackPath)
				return fallback
			}
		} else {
			logger.Warn("fallback revision file unavailable", "path", fallbackPath, "error", err)
		}
	}
	return Unknown
}

func revParse(ctx context.Context, dir string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "HEAD")
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git rev-parse HEAD in %s: %w (stderr: %s)",
			dir, err, strings.TrimSpace(stderr.String()))
	}

	revision := strings.TrimSpace(stdout.String())
	if revision == "" || strings.ContainsAny(revision, " \t\n") {
		return "", fmt.Errorf("git rev-parse HEAD in %s: output %q is not a revision", dir, revision)
	}
	return revision, nil
}

const headerTemplate = `/* Generated by embedgen. DO NOT EDIT. */

std::string revision = "%s";
`

// WriteHeader renders the revision-declaration header, gated by the
// hash store under the "revision" key. A missing header is rewritten
// even when the digest matches. Returns whether the header was
// written.
func WriteHeader(revision, path string, store *hashstore.Store) (bool, error) {
	digest := hashstore.Digest([]byte(revision))
	if previous, ok := store.Get("revision"); ok && previous == digest {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	rendered := fmt.Sprintf(headerTemplate, revision)
	if err := os.WriteFile(path, []byte(rendered), 0644); err != nil {
		return false, fmt.Errorf("writing revision header %s: %w", path, err)
	}
	store.Set("revision", digest)
	return true, nil
}
