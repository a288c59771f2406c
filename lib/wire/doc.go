// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the transfer protocol's datagram encoding.
//
// Every datagram is one command: a single command byte followed by
// big-endian fixed-width fields and, for SetChunk and StartTransfer,
// a length-prefixed variable payload. The two directions have
// disjoint command sets — SetChunk and StartTransfer flow sender to
// receiver, AckChunk and AckStart flow receiver to sender — and each
// direction has its own decode entry point that rejects commands
// from the wrong direction.
//
// Layouts:
//
//	SetChunk:      0x01 | transferID u16 | chunkIndex u32 | payloadLen u16 | payload
//	AckChunk:      0x02 | transferID u16 | waitingForChunkIndex u32 | receiveMaskAfterLast u64
//	StartTransfer: 0x03 | transferID u16 | totalOctetSize u32 | chunkSize u16 | manifestLen u16 | manifest (CBOR)
//	AckStart:      0x04 | transferID u16
//
// The AckChunk fields carry the receiver's cumulative progress:
// waitingForChunkIndex is the first chunk index the receiver has not
// received (the first gap from the start), and bit i of
// receiveMaskAfterLast reports receipt of chunk
// waitingForChunkIndex+1+i.
package wire
