// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hashstore provides content digests and the persisted
// symbol → digest mapping that gates generated-file writes.
//
// Every generated artifact is identified by its embed symbol name. The
// store records the digest of the content last written under each
// symbol; a writer consults the store before touching disk and skips
// the write when the digest is unchanged. This is what keeps repeated
// pipeline runs from invalidating downstream compiler caches: the
// final arbiter for "write or skip" is content identity, never a
// filesystem timestamp.
//
// The store is loaded once at process start, mutated in memory during
// the run, and flushed once at the end of a successful run. A missing
// or unparsable store file degrades to an empty store — the cost is a
// rewrite of every artifact, not a failed build.
package hashstore
