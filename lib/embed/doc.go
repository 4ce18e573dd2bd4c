// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package embed turns an arbitrary byte payload into a compilable
// source fragment declaring that payload as a named constant.
//
// Two wrapper layouts exist. Text payloads (the combined JSON
// documents, parsed at runtime) get a byte array plus a
// length-constructed std::string named after the symbol. Binary
// payloads (the compressed blobs, consumed as opaque bytes) get the
// conventional incbin Data/End/Size symbol triple. Both share the hex
// encoding and the write gate.
//
// The write gate is the content digest, not the timestamp: even when
// the timestamp pre-check says the destination is stale, an encoded
// payload whose digest matches the hash store entry is never written.
// Destination writes are what invalidate downstream compiler caches,
// so they happen only when the bytes actually changed. The digest
// covers the encoded text rather than the raw payload — a change to
// the encoding convention must re-trigger writes even for identical
// input bytes.
package embed
