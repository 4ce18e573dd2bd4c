// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/embedgen/lib/hashstore"
)

// PayloadClass selects the generated wrapper layout.
type PayloadClass string

const (
	// Text embeds the payload as a byte array plus a
	// length-constructed std::string, for payloads consumed as text.
	Text PayloadClass = "text"

	// Binary embeds the payload with incbin-style Data/End/Size
	// symbols, for payloads consumed as opaque bytes with no implied
	// encoding.
	Binary PayloadClass = "binary"
)

// ParsePayloadClass parses a payload class from its configuration
// string.
func ParsePayloadClass(name string) (PayloadClass, error) {
	switch name {
	case "text":
		return Text, nil
	case "binary":
		return Binary, nil
	default:
		return "", fmt.Errorf("unknown payload class: %q", name)
	}
}

// Job is the immutable configuration of one embedding: one input
// artifact, one generated source file, one symbol.
type Job struct {
	// Source is the artifact to embed.
	Source string

	// Destination is the generated source file.
	Destination string

	// Symbol names the generated declarations and keys the hash
	// store entry.
	Symbol string

	// Class selects the wrapper layout.
	Class PayloadClass

	// Producer names the aggregation job whose output this job
	// embeds, or is empty for standalone sources. The orchestrator
	// uses it to validate that the producing job is declared; it
	// replaces the implicit "compressed blobs first" run ordering.
	Producer string
}

// Outcome reports what one embed run did.
type Outcome struct {
	// Written is true when the destination was (re)written.
	Written bool

	// Reason explains the decision: the staleness reason when
	// Written, or why the write was skipped.
	Reason string
}

// Run evaluates the job and writes the generated source if — and only
// if — the encoded content differs from what the hash store records
// for the symbol. The timestamp pre-check exists to skip the encode
// work entirely on the common up-to-date path; it is never the reason
// to write. When the store entry matches the freshly encoded content,
// the destination is left untouched even if the timestamps said stale.
func Run(job Job, store *hashstore.Store, logger *slog.Logger) (Outcome, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stale, destinationExists, reason, err := timestampStale(job)
	if err != nil {
		return Outcome{}, err
	}
	if !stale {
		logger.Debug("embed up to date", "symbol", job.Symbol)
		return Outcome{Reason: "up to date"}, nil
	}

	payload, err := os.ReadFile(job.Source)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading embed source %s: %w", job.Source, err)
	}

	encoded := Encode(payload)
	digest := hashstore.Digest([]byte(encoded))
	// The content skip applies only when there is a destination to
	// keep: a matching hash entry for a deleted file must not stop
	// the file from being recreated.
	if previous, ok := store.Get(job.Symbol); ok && previous == digest && destinationExists {
		logger.Debug("embed content unchanged", "symbol", job.Symbol)
		return Outcome{Reason: "content unchanged"}, nil
	}

	rendered, err := render(job.Class, job.Symbol, encoded)
	if err != nil {
		return Outcome{}, err
	}
	if err := os.MkdirAll(filepath.Dir(job.Destination), 0755); err != nil {
		return Outcome{}, fmt.Errorf("creating output directory for %s: %w", job.Destination, err)
	}
	if err := os.WriteFile(job.Destination, []byte(rendered), 0644); err != nil {
		return Outcome{}, fmt.Errorf("writing %s: %w", job.Destination, err)
	}
	store.Set(job.Symbol, digest)

	logger.Info("embedded", "symbol", job.Symbol, "destination", job.Destination, "reason", reason)
	return Outcome{Written: true, Reason: reason}, nil
}

// timestampStale applies the embed job's one-input staleness rule:
// missing destination, or source modified at or after the destination.
// The second return reports whether the destination exists — the
// content-identity gate only applies when it does. A missing source
// is fatal — an embed job declares exactly one input and it must
// exist.
func timestampStale(job Job) (bool, bool, string, error) {
	destinationInfo, err := os.Stat(job.Destination)
	if err != nil {
		if os.IsNotExist(err) {
			return true, false, "destination does not exist", nil
		}
		return false, false, "", fmt.Errorf("stat destination %s: %w", job.Destination, err)
	}

	sourceInfo, err := os.Stat(job.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return false, true, "", fmt.Errorf("embed source %s cannot be found", job.Source)
		}
		return false, true, "", fmt.Errorf("stat source %s: %w", job.Source, err)
	}

	if !sourceInfo.ModTime().Before(destinationInfo.ModTime()) {
		return true, true, "source is newer than destination", nil
	}
	return false, true, "", nil
}

// textTemplate wraps a payload consumed as text: the byte array plus
// a std::string constructed over its full length. The layout of the
// generated text is load-bearing for diff stability; do not reflow.
const textTemplate = `/* Generated by embedgen. DO NOT EDIT. */

/* %SYMBOL% encoded in binary form */
const unsigned char %SYMBOL%_binary[] = {
%DATA%
};

/* Combined into a single std::string */
std::string %SYMBOL%(%SYMBOL%_binary, %SYMBOL%_binary + sizeof(%SYMBOL%_binary)/sizeof(%SYMBOL%_binary[0]));
`

// binaryTemplate wraps a payload consumed as opaque bytes, following
// the incbin symbol convention: Data, End pointer, Size.
const binaryTemplate = `/* Generated by embedgen for use with incbin. DO NOT EDIT. */

#ifdef __cplusplus
extern "C" {
#endif

INCBIN_CONST INCBIN_ALIGN unsigned char g%SYMBOL%Data[] = {
%DATA%
};
INCBIN_CONST INCBIN_ALIGN unsigned char *const g%SYMBOL%End = g%SYMBOL%Data + sizeof(g%SYMBOL%Data);
INCBIN_CONST unsigned int g%SYMBOL%Size = sizeof(g%SYMBOL%Data);

#ifdef __cplusplus
}
#endif
`

func render(class PayloadClass, symbol, encoded string) (string, error) {
	var template string
	switch class {
	case Text:
		template = textTemplate
	case Binary:
		template = binaryTemplate
	default:
		return "", fmt.Errorf("unknown payload class: %q", class)
	}
	rendered := strings.ReplaceAll(template, "%SYMBOL%", symbol)
	return strings.ReplaceAll(rendered, "%DATA%", encoded), nil
}
