// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package xfer drives complete transfers over a datagram transport.
// Send runs the full sender pipeline: compress, seal when a key is
// configured, describe the result in a manifest, then pump chunks
// through a send.Front until the receiver acknowledges everything.
// Receive runs the mirror image and returns the verified original
// bytes.
package xfer
