// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the module's standard CBOR encoding and
// decoding configuration. Encoding uses Core Deterministic Encoding
// so the same manifest always produces identical bytes; decoding
// ignores unknown fields for forward compatibility. All CBOR in the
// module goes through this package so the configuration lives in
// exactly one place.
package codec
