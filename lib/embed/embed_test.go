// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/embedgen/lib/hashstore"
)

func testJob(t *testing.T, class PayloadClass) Job {
	t.Helper()
	directory := t.TempDir()
	source := filepath.Join(directory, "payload.json")
	if err := os.WriteFile(source, []byte(`[{"name":"a"}]`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return Job{
		Source:      source,
		Destination: filepath.Join(directory, "include", "payload.h"),
		Symbol:      "payload_JSON",
		Class:       class,
	}
}

func emptyStore(t *testing.T) *hashstore.Store {
	t.Helper()
	return hashstore.Load(filepath.Join(t.TempDir(), "hashes.json"), nil)
}

func TestRunWritesTextWrapper(t *testing.T) {
	job := testJob(t, Text)
	store := emptyStore(t)

	outcome, err := Run(job, store, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Written {
		t.Fatalf("outcome = %+v, want written", outcome)
	}

	generated, err := os.ReadFile(job.Destination)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(generated)
	for _, want := range []string{
		"const unsigned char payload_JSON_binary[] = {",
		"std::string payload_JSON(payload_JSON_binary,",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("generated header missing %q", want)
		}
	}

	if _, ok := store.Get(job.Symbol); !ok {
		t.Error("hash store entry not recorded after write")
	}
}

func TestRunWritesBinaryWrapper(t *testing.T) {
	job := testJob(t, Binary)
	store := emptyStore(t)

	if _, err := Run(job, store, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	generated, err := os.ReadFile(job.Destination)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(generated)
	for _, want := range []string{
		"INCBIN_CONST INCBIN_ALIGN unsigned char gpayload_JSONData[] = {",
		"gpayload_JSONEnd = gpayload_JSONData + sizeof(gpayload_JSONData);",
		"INCBIN_CONST unsigned int gpayload_JSONSize = sizeof(gpayload_JSONData);",
		`extern "C" {`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("generated header missing %q", want)
		}
	}
}

func TestRunGeneratedPayloadRoundTrips(t *testing.T) {
	job := testJob(t, Text)
	if _, err := Run(job, emptyStore(t), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	generated, err := os.ReadFile(job.Destination)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(generated)
	start := strings.Index(text, "{\n") + 2
	end := strings.Index(text, "\n};")
	if start < 2 || end < 0 {
		t.Fatal("cannot locate byte array in generated header")
	}

	payload := decode(t, text[start:end])
	if string(payload) != `[{"name":"a"}]` {
		t.Errorf("decoded payload = %q", payload)
	}
}

func TestRunSecondInvocationSkipsByTimestamp(t *testing.T) {
	job := testJob(t, Text)
	store := emptyStore(t)
	if _, err := Run(job, store, nil); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	outcome, err := Run(job, store, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if outcome.Written || outcome.Reason != "up to date" {
		t.Errorf("outcome = %+v, want timestamp skip", outcome)
	}
}

func TestRunTouchedSourceSkipsByContent(t *testing.T) {
	job := testJob(t, Text)
	store := emptyStore(t)
	if _, err := Run(job, store, nil); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// Touch the source without changing content: timestamps now say
	// stale, the content digest says otherwise. The digest wins and
	// the destination mtime must not move.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(job.Source, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	before, err := os.Stat(job.Destination)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	outcome, err := Run(job, store, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if outcome.Written || outcome.Reason != "content unchanged" {
		t.Errorf("outcome = %+v, want content skip", outcome)
	}

	after, err := os.Stat(job.Destination)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("content-unchanged run touched the destination")
	}
}

func TestRunChangedContentRewrites(t *testing.T) {
	job := testJob(t, Text)
	store := emptyStore(t)
	if _, err := Run(job, store, nil); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first, _ := store.Get(job.Symbol)

	if err := os.WriteFile(job.Source, []byte(`[{"name":"b"}]`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(job.Source, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	outcome, err := Run(job, store, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !outcome.Written {
		t.Fatalf("outcome = %+v, want rewrite", outcome)
	}
	second, _ := store.Get(job.Symbol)
	if first == second {
		t.Error("digest unchanged after content change")
	}
}

func TestRunDeletedDestinationIsRecreated(t *testing.T) {
	job := testJob(t, Text)
	store := emptyStore(t)
	if _, err := Run(job, store, nil); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// Delete the generated file but keep its hash entry. The digest
	// still matches, but a matching digest for a file that is not
	// there must not count as "content unchanged" — that would leave
	// the output permanently missing.
	if err := os.Remove(job.Destination); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	outcome, err := Run(job, store, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !outcome.Written {
		t.Fatalf("outcome = %+v, want recreated destination", outcome)
	}
	if _, err := os.Stat(job.Destination); err != nil {
		t.Errorf("destination still missing after run: %v", err)
	}
}

func TestRunEmptyStoreForcesWrite(t *testing.T) {
	job := testJob(t, Text)
	if _, err := Run(job, emptyStore(t), nil); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// A lost hash store combined with stale timestamps must rewrite:
	// a missing entry is treated like a changed one.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(job.Source, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	outcome, err := Run(job, emptyStore(t), nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !outcome.Written {
		t.Errorf("outcome = %+v, want write with empty store", outcome)
	}
}

func TestRunMissingSourceIsFatal(t *testing.T) {
	job := testJob(t, Text)
	if err := os.Remove(job.Source); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := Run(job, emptyStore(t), nil); err == nil {
		t.Fatal("Run should fail when the embed source is missing")
	}
}

func TestParsePayloadClass(t *testing.T) {
	if _, err := ParsePayloadClass("text"); err != nil {
		t.Errorf("text: %v", err)
	}
	if _, err := ParsePayloadClass("binary"); err != nil {
		t.Errorf("binary: %v", err)
	}
	if _, err := ParsePayloadClass("compressed"); err == nil {
		t.Error("unknown class should fail to parse")
	}
}
