// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func loadFromString(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embedgen.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return LoadConfig(path)
}

const validConfig = `
root: .
state_dir: state
aggregations:
  - name: records
    sources: data/*.json
    compact: out/all.json
    verbose: out/all_verbose.json
embeds:
  - symbol: all_JSON
    source: out/all.json
    destination: include/all_JSON.h
    class: text
    producer: records
`

func TestLoadConfigValid(t *testing.T) {
	config, err := loadFromString(t, validConfig)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !filepath.IsAbs(config.Root) {
		t.Errorf("Root not resolved to absolute: %q", config.Root)
	}
	if !strings.HasSuffix(config.HashStorePath(), filepath.Join("state", "hashes.json")) {
		t.Errorf("HashStorePath = %q", config.HashStorePath())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig should fail for a missing file")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	if _, err := loadFromString(t, ":\n  - ["); err == nil {
		t.Fatal("LoadConfig should fail for malformed YAML")
	}
}

func TestLoadConfigUnknownProducer(t *testing.T) {
	_, err := loadFromString(t, `
aggregations:
  - name: records
    sources: data/*.json
    compact: out/all.json
    verbose: out/all_verbose.json
embeds:
  - symbol: all_JSON
    source: out/all.json
    destination: include/all_JSON.h
    class: text
    producer: nonexistent
`)
	if err == nil {
		t.Fatal("undeclared producer should fail validation")
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("error does not name the producer: %v", err)
	}
}

func TestLoadConfigDuplicateSymbol(t *testing.T) {
	_, err := loadFromString(t, `
embeds:
  - symbol: all_JSON
    source: a
    destination: b
    class: text
  - symbol: all_JSON
    source: c
    destination: d
    class: binary
`)
	if err == nil {
		t.Fatal("duplicate embed symbol should fail validation")
	}
}

func TestLoadConfigBadPayloadClass(t *testing.T) {
	_, err := loadFromString(t, `
embeds:
  - symbol: all_JSON
    source: a
    destination: b
    class: gzip
`)
	if err == nil {
		t.Fatal("unknown payload class should fail validation")
	}
}

func TestLoadConfigIncompleteVersion(t *testing.T) {
	_, err := loadFromString(t, `
version:
  build_config: CMakeLists.txt
`)
	if err == nil {
		t.Fatal("version section without header/file should fail validation")
	}
}

func TestResolveLeavesAbsolutePaths(t *testing.T) {
	config, err := loadFromString(t, validConfig)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := config.resolve("/absolute/path"); got != "/absolute/path" {
		t.Errorf("resolve(/absolute/path) = %q", got)
	}
	relative := config.resolve("out/all.json")
	if !strings.HasPrefix(relative, config.Root) {
		t.Errorf("resolve did not anchor at root: %q", relative)
	}
}
