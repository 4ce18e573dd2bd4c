// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hashstore

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Digest computes the BLAKE3 digest of payload and returns it as a
// 64-character lowercase hex string. Deterministic and side-effect
// free. Text payloads must be passed as their UTF-8 byte encoding.
func Digest(payload []byte) string {
	sum := blake3.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Store is the persisted mapping from embed symbol name to the digest
// of the content last written for that symbol. One store file serves
// the whole pipeline: every embed job plus the version and revision
// headers share it. Entries are only ever added or overwritten during
// a run — a missing entry means "write the artifact", never "delete
// it".
type Store struct {
	entries map[string]string
	logger  *slog.Logger
}

// Load reads the store file at path. Missing file returns an empty
// store. A file that exists but does not parse also returns an empty
// store, with a warning — a corrupt cache forces a full rewrite of the
// generated artifacts, which is always safe, whereas aborting the
// build is not.
func Load(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := &Store{
		entries: make(map[string]string),
		logger:  logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("hash store unreadable, starting empty", "path", path, "error", err)
		}
		return store
	}

	if err := json.Unmarshal(data, &store.entries); err != nil {
		logger.Warn("hash store corrupt, starting empty", "path", path, "error", err)
		store.entries = make(map[string]string)
	}
	return store
}

// Get returns the digest recorded for symbol and whether an entry
// exists.
func (s *Store) Get(symbol string) (string, bool) {
	digest, ok := s.entries[symbol]
	return digest, ok
}

// Set records digest under symbol. In-memory only; nothing reaches
// disk until Flush.
func (s *Store) Set(symbol, digest string) {
	s.entries[symbol] = digest
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Flush serializes the full mapping to path, creating parent
// directories as needed. The write goes through a temporary file and
// rename so an interrupted flush leaves the previous store intact.
// Called exactly once, after all jobs in a run have completed; if the
// process dies before Flush, the next run redoes the work and the
// content-identity check re-skips everything that is truly unchanged.
func (s *Store) Flush(path string) error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encoding hash store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating hash store directory: %w", err)
	}

	temporary := path + ".tmp"
	if err := os.WriteFile(temporary, data, 0644); err != nil {
		return fmt.Errorf("writing hash store: %w", err)
	}
	if err := os.Rename(temporary, path); err != nil {
		return fmt.Errorf("replacing hash store %s: %w", path, err)
	}
	return nil
}
