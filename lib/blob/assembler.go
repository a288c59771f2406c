// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"errors"
	"fmt"
)

// Chunk application errors. Callers branch on these with errors.Is:
// ErrChunkAlreadyReceived is the benign duplicate every datagram
// transport produces under retransmission and is normally re-acked
// and dropped; the others indicate a broken or malicious sender.
var (
	// ErrChunkIndexOutOfRange reports a chunk index at or beyond the
	// transfer's chunk count.
	ErrChunkIndexOutOfRange = errors.New("chunk index out of range")

	// ErrUnexpectedChunkSize reports a payload whose length does not
	// match the expected size for its index.
	ErrUnexpectedChunkSize = errors.New("unexpected chunk size")

	// ErrChunkAlreadyReceived reports a duplicate chunk whose payload
	// matches the stored contents byte for byte.
	ErrChunkAlreadyReceived = errors.New("chunk already received")

	// ErrChunkContentConflict reports a duplicate chunk whose payload
	// differs from the stored contents. The previously stored bytes
	// are kept.
	ErrChunkContentConflict = errors.New("chunk contents conflict with previously received chunk")
)

// Assembler reassembles a blob from fixed-size chunks arriving in
// any order. Create one with NewAssembler and feed chunks through
// SetChunk; Bytes returns the blob once every chunk has arrived.
//
// Assembler is not safe for concurrent use.
type Assembler struct {
	received   *chunkSet
	chunkSize  int
	octetCount int
	buffer     []byte
}

// NewAssembler creates an assembler for a blob of octetCount bytes
// divided into chunks of chunkSize bytes. A zero octetCount is a
// valid, immediately complete blob. Panics if chunkSize is not
// positive — the chunk size is a protocol field validated at the
// wire layer before it reaches this constructor.
func NewAssembler(octetCount, chunkSize int) *Assembler {
	if chunkSize <= 0 {
		panic("blob: chunk size must be positive")
	}
	chunkCount := (octetCount + chunkSize - 1) / chunkSize
	return &Assembler{
		received:   newChunkSet(chunkCount),
		chunkSize:  chunkSize,
		octetCount: octetCount,
		buffer:     make([]byte, octetCount),
	}
}

// ChunkCount returns the total number of chunks in the blob.
func (a *Assembler) ChunkCount() int { return a.received.Size() }

// OctetCount returns the blob's total size in bytes.
func (a *Assembler) OctetCount() int { return a.octetCount }

// ChunkSize returns the fixed chunk size.
func (a *Assembler) ChunkSize() int { return a.chunkSize }

// ReceivedCount returns the number of distinct chunks received.
func (a *Assembler) ReceivedCount() int { return a.received.Count() }

// Received reports whether the chunk at index has been received.
// Out-of-range indexes report false.
func (a *Assembler) Received(index int) bool {
	if index < 0 || index >= a.received.Size() {
		return false
	}
	return a.received.Get(index)
}

// FirstMissing returns the lowest chunk index not yet received, or
// ChunkCount when the blob is complete.
func (a *Assembler) FirstMissing() int { return a.received.FirstUnset() }

// IsComplete reports whether every chunk has been received.
func (a *Assembler) IsComplete() bool { return a.received.AllSet() }

// Bytes returns the assembled blob, or nil while chunks are still
// missing. The returned slice is the assembler's backing buffer —
// the caller must not feed further chunks after mutating it.
func (a *Assembler) Bytes() []byte {
	if !a.received.AllSet() {
		return nil
	}
	return a.buffer
}

// ExpectedChunkSize returns the payload size required for the chunk
// at index: the fixed chunk size for every chunk but the last, and
// the remainder for the last. A blob whose size is an exact multiple
// of the chunk size has a full-sized final chunk.
func (a *Assembler) ExpectedChunkSize(index int) int {
	remaining := a.octetCount - index*a.chunkSize
	if remaining > a.chunkSize {
		return a.chunkSize
	}
	return remaining
}

// SetChunk stores the payload for the chunk at index. The chunk is
// marked received only after the payload is stored, and duplicate
// delivery never disturbs previously stored bytes.
func (a *Assembler) SetChunk(index int, payload []byte) error {
	chunkCount := a.received.Size()
	if index < 0 || index >= chunkCount {
		return fmt.Errorf("%w: index %d, chunk count %d", ErrChunkIndexOutOfRange, index, chunkCount)
	}

	expected := a.ExpectedChunkSize(index)
	if len(payload) != expected {
		return fmt.Errorf("%w: chunk %d has %d bytes, want %d",
			ErrUnexpectedChunkSize, index, len(payload), expected)
	}

	offset := index * a.chunkSize
	if a.received.Get(index) {
		if bytes.Equal(a.buffer[offset:offset+expected], payload) {
			return fmt.Errorf("%w: chunk %d", ErrChunkAlreadyReceived, index)
		}
		return fmt.Errorf("%w: chunk %d", ErrChunkContentConflict, index)
	}

	copy(a.buffer[offset:], payload)
	a.received.Set(index)
	return nil
}
