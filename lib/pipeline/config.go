// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/embedgen/lib/aggregate"
	"github.com/bureau-foundation/embedgen/lib/embed"
)

// Config is the pipeline definition, loaded from a single YAML file.
// All relative paths are resolved against Root, and a relative Root is
// resolved against the config file's own directory — the pipeline
// behaves identically no matter where it is invoked from.
type Config struct {
	// Root is the repository root all other paths resolve against.
	Root string `yaml:"root"`

	// StateDir holds the pipeline's private state: the hash store
	// and the per-job dependency manifests. Not intended for other
	// consumers.
	StateDir string `yaml:"state_dir"`

	// Version configures the version collaborator. Optional.
	Version *VersionConfig `yaml:"version,omitempty"`

	// Revision configures the revision collaborator. Optional.
	Revision *RevisionConfig `yaml:"revision,omitempty"`

	// Aggregations are the fragment-merging jobs, run before any
	// embed job.
	Aggregations []AggregationConfig `yaml:"aggregations"`

	// Embeds are the source-generation jobs.
	Embeds []EmbedConfig `yaml:"embeds"`
}

// VersionConfig locates the version string and its outputs.
type VersionConfig struct {
	// BuildConfig is the build-configuration file the version
	// components are extracted from.
	BuildConfig string `yaml:"build_config"`

	// Header is the generated version-declaration source file.
	Header string `yaml:"header"`

	// File is the plain-text version file for consumers without
	// access to the build configuration.
	File string `yaml:"file"`
}

// RevisionConfig locates the revision identifier and its output.
type RevisionConfig struct {
	// Fallback is a file holding a cached revision string, used when
	// the version-control tool is unavailable (e.g. archive builds).
	// Optional.
	Fallback string `yaml:"fallback,omitempty"`

	// Header is the generated revision-declaration source file.
	Header string `yaml:"header"`
}

// AggregationConfig declares one fragment-merging job.
type AggregationConfig struct {
	// Name identifies the job; embed jobs reference it as their
	// producer, and it names the job's dependency manifest.
	Name string `yaml:"name"`

	// Sources is the glob matching the job's fragment files.
	Sources string `yaml:"sources"`

	// Compact, Verbose, and Compressed are the three output forms.
	// Compressed is optional.
	Compact    string `yaml:"compact"`
	Verbose    string `yaml:"verbose"`
	Compressed string `yaml:"compressed,omitempty"`
}

// EmbedConfig declares one source-generation job.
type EmbedConfig struct {
	// Symbol names the generated declarations and keys the hash
	// store entry.
	Symbol string `yaml:"symbol"`

	// Source is the artifact to embed.
	Source string `yaml:"source"`

	// Destination is the generated source file.
	Destination string `yaml:"destination"`

	// Class is the payload class: "text" or "binary".
	Class string `yaml:"class"`

	// Producer names the aggregation job that writes Source. Empty
	// for standalone sources. Declaring it makes the ordering
	// dependency explicit instead of relying on job order.
	Producer string `yaml:"producer,omitempty"`
}

// LoadConfig reads, resolves, and validates the pipeline definition
// at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing pipeline config %s: %w", path, err)
	}

	if !filepath.IsAbs(config.Root) {
		base, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("resolving config directory: %w", err)
		}
		config.Root = filepath.Join(base, config.Root)
	}
	if config.StateDir == "" {
		config.StateDir = "state"
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("pipeline config %s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) validate() error {
	aggregations := make(map[string]bool, len(c.Aggregations))
	for _, job := range c.Aggregations {
		if job.Name == "" {
			return fmt.Errorf("aggregation job with empty name")
		}
		if aggregations[job.Name] {
			return fmt.Errorf("duplicate aggregation job %q", job.Name)
		}
		aggregations[job.Name] = true
		if job.Sources == "" {
			return fmt.Errorf("aggregation job %q: sources glob is required", job.Name)
		}
		if job.Compact == "" || job.Verbose == "" {
			return fmt.Errorf("aggregation job %q: compact and verbose outputs are required", job.Name)
		}
	}

	symbols := make(map[string]bool, len(c.Embeds))
	for _, job := range c.Embeds {
		if job.Symbol == "" {
			return fmt.Errorf("embed job with empty symbol")
		}
		if symbols[job.Symbol] {
			return fmt.Errorf("duplicate embed symbol %q", job.Symbol)
		}
		symbols[job.Symbol] = true
		if job.Source == "" || job.Destination == "" {
			return fmt.Errorf("embed job %q: source and destination are required", job.Symbol)
		}
		if _, err := embed.ParsePayloadClass(job.Class); err != nil {
			return fmt.Errorf("embed job %q: %w", job.Symbol, err)
		}
		if job.Producer != "" && !aggregations[job.Producer] {
			return fmt.Errorf("embed job %q: producer %q is not a declared aggregation job", job.Symbol, job.Producer)
		}
	}

	if c.Version != nil {
		if c.Version.BuildConfig == "" || c.Version.Header == "" || c.Version.File == "" {
			return fmt.Errorf("version: build_config, header, and file are required")
		}
	}
	if c.Revision != nil && c.Revision.Header == "" {
		return fmt.Errorf("revision: header is required")
	}
	return nil
}

// resolve turns a config-relative path into an absolute one.
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}

// HashStorePath is where the symbol → digest mapping persists.
func (c *Config) HashStorePath() string {
	return filepath.Join(c.resolve(c.StateDir), "hashes.json")
}

func (c *Config) manifestPath(job string) string {
	return filepath.Join(c.resolve(c.StateDir), job+".depcache")
}

// aggregationJob converts the declaration into the runnable job with
// all paths resolved.
func (c *Config) aggregationJob(declared AggregationConfig) aggregate.Job {
	return aggregate.Job{
		Name:           declared.Name,
		SourceGlob:     c.resolve(declared.Sources),
		CompactPath:    c.resolve(declared.Compact),
		VerbosePath:    c.resolve(declared.Verbose),
		CompressedPath: c.resolve(declared.Compressed),
		ManifestPath:   c.manifestPath(declared.Name),
	}
}

// embedJob converts the declaration into the runnable job with all
// paths resolved. The class was validated at load time.
func (c *Config) embedJob(declared EmbedConfig) embed.Job {
	class, _ := embed.ParsePayloadClass(declared.Class)
	return embed.Job{
		Source:      c.resolve(declared.Source),
		Destination: c.resolve(declared.Destination),
		Symbol:      declared.Symbol,
		Class:       class,
		Producer:    declared.Producer,
	}
}
