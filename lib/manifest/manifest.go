// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/fxamacker/cbor/v2"
)

// record is the on-disk manifest shape. CBOR with Core Deterministic
// Encoding: the same source set always produces identical bytes, so a
// manifest rewrite with an unchanged set is a no-op at the byte level.
type record struct {
	SortedSources []string `cbor:"sorted_sources"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}
}

// Write persists sources as the manifest at path, creating parent
// directories as needed. The set is sorted before writing so the
// on-disk form is independent of enumeration order. The write goes
// through a temporary file and rename — a manifest is either the
// complete previous set or the complete new one, never a partial
// update.
func Write(sources []string, path string) error {
	sorted := slices.Clone(sources)
	slices.Sort(sorted)

	data, err := encMode.Marshal(record{SortedSources: sorted})
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	temporary := path + ".tmp"
	if err := os.WriteFile(temporary, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(temporary, path); err != nil {
		return fmt.Errorf("replacing manifest %s: %w", path, err)
	}
	return nil
}

// Read returns the sorted source set recorded at path. The second
// return is false when the manifest is missing or does not decode —
// callers treat both the same way, as "no manifest", which forces a
// rebuild. Cache corruption is never fatal.
func Read(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var decoded record
	if err := cbor.Unmarshal(data, &decoded); err != nil {
		return nil, false
	}
	return decoded.SortedSources, true
}
