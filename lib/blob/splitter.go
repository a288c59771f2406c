// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package blob

// Chunk is a single fixed-grid chunk of a blob: its index and its
// payload. Integrity is covered by the whole-blob manifest hash, so
// chunks carry no per-chunk digest.
type Chunk struct {
	// Index is the chunk's position in the fixed chunk grid.
	Index int

	// Payload is a slice into the original blob — valid only while
	// the blob's backing bytes are unmodified.
	Payload []byte
}

// Splitter slices a blob into fixed-size chunks for transmission.
// Create one with NewSplitter and iterate with Next, or address
// chunks directly with ChunkAt — the sender retransmits chunks out
// of order, so random access is the common path.
type Splitter struct {
	data      []byte
	chunkSize int
	position  int
}

// NewSplitter creates a splitter over data with the given chunk
// size. The data slice is not copied. Panics if chunkSize is not
// positive.
func NewSplitter(data []byte, chunkSize int) *Splitter {
	if chunkSize <= 0 {
		panic("blob: chunk size must be positive")
	}
	return &Splitter{data: data, chunkSize: chunkSize}
}

// ChunkCount returns the total number of chunks.
func (s *Splitter) ChunkCount() int {
	return (len(s.data) + s.chunkSize - 1) / s.chunkSize
}

// ChunkAt returns the chunk at index. Panics if index is out of
// range — the sender's bookkeeping never produces an out-of-range
// index for its own blob.
func (s *Splitter) ChunkAt(index int) Chunk {
	start := index * s.chunkSize
	end := start + s.chunkSize
	if end > len(s.data) {
		end = len(s.data)
	}
	return Chunk{Index: index, Payload: s.data[start:end]}
}

// Next returns the next chunk in index order, or nil when all
// chunks have been produced.
func (s *Splitter) Next() *Chunk {
	if s.position >= s.ChunkCount() {
		return nil
	}
	chunk := s.ChunkAt(s.position)
	s.position++
	return &chunk
}
