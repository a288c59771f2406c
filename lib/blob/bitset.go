// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import "math/bits"

// chunkSet tracks which chunk indexes have been received. It is a
// fixed-capacity bit set sized at construction to the transfer's
// chunk count.
type chunkSet struct {
	words []uint64
	size  int
	count int
}

// newChunkSet creates a set with capacity for size chunk indexes.
func newChunkSet(size int) *chunkSet {
	return &chunkSet{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Set marks index as received. Setting an already-set index is a
// no-op. Index must be in [0, size).
func (s *chunkSet) Set(index int) {
	word, bit := index/64, uint(index%64)
	if s.words[word]&(1<<bit) == 0 {
		s.words[word] |= 1 << bit
		s.count++
	}
}

// Get reports whether index is set. Index must be in [0, size).
func (s *chunkSet) Get(index int) bool {
	return s.words[index/64]&(1<<uint(index%64)) != 0
}

// Count returns the number of set indexes.
func (s *chunkSet) Count() int { return s.count }

// Size returns the set's capacity.
func (s *chunkSet) Size() int { return s.size }

// AllSet reports whether every index in [0, size) is set. An empty
// set (size 0) is trivially complete.
func (s *chunkSet) AllSet() bool { return s.count == s.size }

// FirstUnset returns the lowest index that is not set, or size when
// all indexes are set.
func (s *chunkSet) FirstUnset() int {
	for wordIndex, word := range s.words {
		if word == ^uint64(0) {
			continue
		}
		index := wordIndex*64 + bits.TrailingZeros64(^word)
		if index >= s.size {
			break
		}
		return index
	}
	return s.size
}
