// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package aggregate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zlib"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/embedgen/lib/manifest"
)

// Job is the immutable configuration of one aggregation: which
// fragments feed it and where the combined artifacts land. One Job per
// logical dataset.
type Job struct {
	// Name identifies the job in logs and errors.
	Name string

	// SourceGlob matches the fragment files, e.g. "data/records/*.json".
	SourceGlob string

	// CompactPath receives the combined compact document. This is the
	// artifact embed jobs consume, and the destination the staleness
	// check compares source timestamps against.
	CompactPath string

	// VerbosePath receives the pretty-printed, key-sorted document.
	// Not consumed by any embed job; written for developer inspection.
	VerbosePath string

	// CompressedPath receives the deflate-compressed compact bytes.
	// Empty means the job emits no compressed form.
	CompressedPath string

	// ManifestPath is where the job records which sources contributed
	// to its last successful build.
	ManifestPath string
}

// Result reports what one aggregation run did.
type Result struct {
	// Built is false when the staleness check found everything
	// current and the job did not run.
	Built bool

	// Reason is the staleness reason when Built is true.
	Reason string

	// Fragments is the number of fragment files merged (zero when
	// Built is false).
	Fragments int
}

// Run evaluates the job's staleness and, when stale, parses every
// fragment and writes the three combined artifacts, then persists the
// new manifest. The glob is expanded fresh on every call — cached
// expansions would blind the manifest diff to added or removed files.
//
// A fragment that fails to parse aborts the job: a malformed record
// silently dropped from the combined dataset is worse than a failed
// build. The error names the fragment and the line/column of the
// failure.
func Run(job Job, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sources, err := filepath.Glob(job.SourceGlob)
	if err != nil {
		return Result{}, fmt.Errorf("job %s: bad source glob %q: %w", job.Name, job.SourceGlob, err)
	}
	sort.Strings(sources)

	stale, reason, err := needsBuild(job, sources)
	if err != nil {
		return Result{}, fmt.Errorf("job %s: %w", job.Name, err)
	}
	if !stale {
		return Result{}, nil
	}
	logger.Info("aggregating", "job", job.Name, "reason", reason, "fragments", len(sources))

	combined := make([]any, 0, len(sources))
	for _, source := range sources {
		document, err := parseFragment(source)
		if err != nil {
			return Result{}, fmt.Errorf("job %s: %w", job.Name, err)
		}
		combined = append(combined, document)
	}

	compact, err := json.Marshal(combined)
	if err != nil {
		return Result{}, fmt.Errorf("job %s: encoding combined document: %w", job.Name, err)
	}
	verbose, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("job %s: encoding verbose document: %w", job.Name, err)
	}

	if err := writeFile(job.VerbosePath, verbose); err != nil {
		return Result{}, fmt.Errorf("job %s: %w", job.Name, err)
	}
	if err := writeFile(job.CompactPath, compact); err != nil {
		return Result{}, fmt.Errorf("job %s: %w", job.Name, err)
	}
	if job.CompressedPath != "" {
		compressed, err := deflate(compact)
		if err != nil {
			return Result{}, fmt.Errorf("job %s: compressing combined document: %w", job.Name, err)
		}
		if err := writeFile(job.CompressedPath, compressed); err != nil {
			return Result{}, fmt.Errorf("job %s: %w", job.Name, err)
		}
	}

	// Manifest last: a failure anywhere above leaves the previous
	// manifest in place and the next run re-detects staleness instead
	// of trusting partial output.
	if err := manifest.Write(sources, job.ManifestPath); err != nil {
		return Result{}, fmt.Errorf("job %s: %w", job.Name, err)
	}

	return Result{Built: true, Reason: reason, Fragments: len(sources)}, nil
}

// needsBuild wraps the two-signal staleness check, additionally
// treating any missing secondary output as stale. The manifest-backed
// check compares against the compact document only; the verbose and
// compressed forms are always written together with it, so existence
// is the only extra thing to verify for them.
func needsBuild(job Job, sources []string) (bool, string, error) {
	for _, output := range []string{job.VerbosePath, job.CompressedPath} {
		if output == "" {
			continue
		}
		if _, err := os.Stat(output); os.IsNotExist(err) {
			return true, fmt.Sprintf("output %s does not exist", output), nil
		}
	}
	return manifest.NeedsBuild(sources, job.CompactPath, job.ManifestPath)
}

// parseFragment reads one JSONC fragment and returns the decoded
// document. Comments and trailing commas are stripped in a
// position-preserving way, so decoder offsets in the stripped bytes
// still point at the right place in the authored file.
func parseFragment(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fragment %s: %w", path, err)
	}

	stripped := jsonc.ToJSON(data)
	var document any
	if err := json.Unmarshal(stripped, &document); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			line, column := position(stripped, syntax.Offset)
			return nil, fmt.Errorf("fragment %s: line %d column %d: %w", path, line, column, err)
		}
		return nil, fmt.Errorf("fragment %s: %w", path, err)
	}
	return document, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte("\n")) + 1
	column := int(offset) - bytes.LastIndexByte(prefix, '\n')
	return line, column
}

// deflate returns the zlib encoding of data at the default level.
func deflate(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := zlib.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
