// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package seal provides optional payload sealing for transfers:
// XChaCha20-Poly1305 authenticated encryption under a key derived
// per transfer from a 32-byte pre-shared key. Sealing happens after
// compression (ciphertext does not compress) and before splitting,
// so chunks on the wire reveal nothing about the blob.
package seal
