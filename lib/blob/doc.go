// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package blob provides the core blob model for chunked transfer:
// domain-keyed BLAKE3 hashing of whole blobs, sender-side splitting
// of a blob into fixed-size chunks, and receiver-side reassembly
// with per-chunk bookkeeping.
//
// A blob is an opaque byte payload of known size, divided into
// chunks of a fixed size agreed at transfer start. Every chunk
// except possibly the last has exactly that size; the last chunk
// holds the remainder. Chunks may arrive in any order and may be
// duplicated — the Assembler distinguishes a benign duplicate
// (identical contents, a normal event on datagram transports) from
// a conflicting one (different contents for an already-stored
// chunk, which indicates corruption or a confused sender).
package blob
