// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline wires the embedding stages into one run: version
// header, revision header, aggregation jobs, embed jobs, hash store
// flush — in that order, failing fast on the first error.
//
// The run is single-threaded and strictly sequential. Idempotence,
// not locking, is the concurrency story: every destination write is
// individually gated by its own freshness test, so re-running the
// pipeline any number of times — including after an interruption at
// any point — converges on the same artifacts. An interrupted run
// never updates the manifest or hash entries for work it did not
// finish, which is exactly what makes the next run redo it.
package pipeline
