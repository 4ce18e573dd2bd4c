// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package aggregate merges per-record fragment files into combined
// dataset artifacts.
//
// Each aggregation job owns a glob of fragment files, every fragment
// one JSONC document (JSON extended with comments and trailing
// commas). The job emits three forms of the same combined collection:
// a compact document (the embed source), a pretty-printed key-sorted
// document (for human inspection and diffing), and a deflate-compressed
// encoding of the compact bytes (the small embed source for
// size-sensitive targets).
//
// The whole job is gated by the staleness check in lib/manifest: when
// the destination is current, no fragment is opened at all — datasets
// run to hundreds of fragments and parsing them on every invocation is
// exactly the cost this tool exists to avoid.
package aggregate
