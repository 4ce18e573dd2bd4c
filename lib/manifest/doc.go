// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest decides whether an aggregation destination must be
// rebuilt from its source fragments.
//
// Two signals feed the decision. Filesystem timestamps catch modified
// sources: any source at least as new as the destination forces a
// rebuild (at-least-as-new rather than strictly-newer, because coarse
// filesystem timestamps cannot order same-second writes). The
// persisted manifest — the sorted set of source paths that contributed
// to the last successful build — catches what timestamps cannot: a
// source file removed or renamed after the destination was written
// leaves every remaining mtime untouched, but changes the set.
//
// Neither signal subsumes the other. The manifest is authoritative
// only for added/removed sources; the timestamp comparison is
// authoritative only for modified ones. Substituting per-source
// content hashes for timestamps would give stronger guarantees at the
// cost of reading every fragment on every run; this package keeps the
// cheap two-signal heuristic on purpose.
//
// Manifests are written all-or-nothing (temporary file plus rename)
// and only after a successful build, so a job that fails mid-write
// leaves the old manifest in place and the next run re-detects
// staleness rather than trusting a half-built destination.
package manifest
