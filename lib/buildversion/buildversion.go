// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildversion extracts the project version from the native
// build configuration and emits it as a generated header plus a
// plain-text version file.
//
// The build configuration declares the version as integer components,
// one per line, e.g.:
//
//	set (PROJECT_VERSION_MAJOR 5)
//	set (PROJECT_VERSION_MINOR 0)
//	set (PROJECT_VERSION_PATCH 0)
//	set (PROJECT_VERSION_REVISION 2)   # optional
//
// Extraction is a text search, not a parse of the build language: the
// components are found by name anywhere in the file. The composed
// string is "major.minor.patch" with the optional revision appended.
package buildversion

import (
	"fmt"
	"os"
	"regexp"

	"github.com/bureau-foundation/embedgen/lib/hashstore"
)

var (
	majorPattern    = regexp.MustCompile(`VERSION_MAJOR\s+(\d+)\s*\)`)
	minorPattern    = regexp.MustCompile(`VERSION_MINOR\s+(\d+)\s*\)`)
	patchPattern    = regexp.MustCompile(`VERSION_PATCH\s+(\d+)\s*\)`)
	revisionPattern = regexp.MustCompile(`VERSION_REVISION\s+(\d+)\s*\)`)
)

// Parse reads the build-configuration file at path and composes the
// version string from its MAJOR/MINOR/PATCH components and, when
// declared, the REVISION component. Missing required components are
// an error naming the file.
func Parse(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading build configuration %s: %w", path, err)
	}

	version := ""
	for _, component := range []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"VERSION_MAJOR", majorPattern},
		{"VERSION_MINOR", minorPattern},
		{"VERSION_PATCH", patchPattern},
	} {
		match := component.pattern.FindSubmatch(data)
		if match == nil {
			return "", fmt.Errorf("build configuration %s: %s not found", path, component.name)
		}
		if version != "" {
			version += "."
		}
		version += string(match[1])
	}

	if match := revisionPattern.FindSubmatch(data); match != nil {
		version += string(match[1])
	}
	return version, nil
}

const headerTemplate = `/* Generated by embedgen. DO NOT EDIT. */

static char version[] = "%s";
`

// WriteHeader renders the version-declaration header, gated by the
// hash store under the "version" key. The digest covers the version
// string itself, so the header is rewritten only when the version
// actually changes — or when the header itself has gone missing, in
// which case the matching digest must not prevent recreation. Returns
// whether the header was written.
func WriteHeader(version, path string, store *hashstore.Store) (bool, error) {
	digest := hashstore.Digest([]byte(version))
	if previous, ok := store.Get("version"); ok && previous == digest {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	rendered := fmt.Sprintf(headerTemplate, version)
	if err := os.WriteFile(path, []byte(rendered), 0644); err != nil {
		return false, fmt.Errorf("writing version header %s: %w", path, err)
	}
	store.Set("version", digest)
	return true, nil
}

// WriteVersionFile writes the bare version string to path. Always
// rewritten — it exists for consumers that have neither the build
// configuration nor the repository, and it is too small for gating to
// matter.
func WriteVersionFile(version, path string) error {
	if err := os.WriteFile(path, []byte(version), 0644); err != nil {
		return fmt.Errorf("writing version file %s: %w", path, err)
	}
	return nil
}
