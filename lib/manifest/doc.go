// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest defines the transfer manifest: the CBOR metadata
// carried in every StartTransfer datagram. The manifest names the
// blob, carries its integrity hash, and records the payload
// encoding (compression tag, sealed flag, original size) the
// receiver needs to reverse after reassembly.
package manifest
