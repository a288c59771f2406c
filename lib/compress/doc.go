// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress provides whole-blob compression for transfer.
// The sender compresses the blob once before splitting it into
// chunks (per-chunk compression would waste the dictionary on every
// chunk boundary); the manifest carries the tag and original size
// so the receiver can reverse it after reassembly.
package compress
