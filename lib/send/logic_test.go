// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package send

import (
	"bytes"
	"testing"
	"time"

	"github.com/blobwire/blobwire/lib/blob"
)

func chunkIndexes(chunks []blob.Chunk) []int {
	indexes := make([]int, len(chunks))
	for i, chunk := range chunks {
		indexes[i] = chunk.Index
	}
	return indexes
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNextChunksFillsWindowLowestFirst(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 10)
	logic := NewLogic(payload, 2, 3, time.Second)
	now := time.Unix(100, 0)

	chunks := logic.NextChunks(now)
	if got := chunkIndexes(chunks); !equalInts(got, []int{0, 1, 2}) {
		t.Fatalf("first batch = %v, want [0 1 2]", got)
	}

	// Window is full: nothing more before acks or timeouts.
	if chunks := logic.NextChunks(now); len(chunks) != 0 {
		t.Errorf("second batch = %v, want empty (window full)", chunkIndexes(chunks))
	}
}

func TestAckOpensWindow(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 10)
	logic := NewLogic(payload, 2, 3, time.Second)
	now := time.Unix(100, 0)

	logic.NextChunks(now)
	// Receiver got chunks 0 and 1.
	logic.ApplyAck(2, 0)

	chunks := logic.NextChunks(now)
	if got := chunkIndexes(chunks); !equalInts(got, []int{3, 4}) {
		t.Errorf("batch after ack = %v, want [3 4]", got)
	}
	if logic.AckedCount() != 2 {
		t.Errorf("acked count = %d, want 2", logic.AckedCount())
	}
}

func TestOverdueChunkIsResent(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 4)
	logic := NewLogic(payload, 2, 4, time.Second)
	start := time.Unix(100, 0)

	logic.NextChunks(start)

	// Not yet overdue.
	if chunks := logic.NextChunks(start.Add(500 * time.Millisecond)); len(chunks) != 0 {
		t.Errorf("early batch = %v, want empty", chunkIndexes(chunks))
	}

	// Past the resend deadline both chunks go out again.
	chunks := logic.NextChunks(start.Add(time.Second))
	if got := chunkIndexes(chunks); !equalInts(got, []int{0, 1}) {
		t.Errorf("resend batch = %v, want [0 1]", got)
	}
}

func TestMaskAcksOutOfOrderChunks(t *testing.T) {
	payload := bytes.Repeat([]byte{0xcd}, 10)
	logic := NewLogic(payload, 2, 5, time.Second)
	now := time.Unix(100, 0)

	logic.NextChunks(now)
	// Receiver has chunks 1 and 3 but still waits for 0: bit 0 of
	// the mask is chunk 1, bit 2 is chunk 3.
	logic.ApplyAck(0, 0b101)

	if logic.AckedCount() != 2 {
		t.Fatalf("acked count = %d, want 2", logic.AckedCount())
	}

	// Chunks 0, 2 and 4 resend after the deadline; 1 and 3 are done.
	chunks := logic.NextChunks(now.Add(2 * time.Second))
	if got := chunkIndexes(chunks); !equalInts(got, []int{0, 2, 4}) {
		t.Errorf("resend batch = %v, want [0 2 4]", got)
	}
}

func TestStaleAckNeverRegresses(t *testing.T) {
	payload := bytes.Repeat([]byte{0xef}, 6)
	logic := NewLogic(payload, 2, 3, time.Second)

	logic.ApplyAck(3, 0)
	if !logic.IsComplete() {
		t.Fatal("not complete after full ack")
	}

	// A reordered earlier ack arrives late.
	logic.ApplyAck(1, 0)
	if !logic.IsComplete() {
		t.Error("stale ack regressed completion")
	}
}

func TestAckBeyondChunkCountIsClamped(t *testing.T) {
	payload := bytes.Repeat([]byte{0x11}, 4)
	logic := NewLogic(payload, 2, 2, time.Second)

	// Hostile or buggy peer acks past the end.
	logic.ApplyAck(1000, ^uint64(0))
	if !logic.IsComplete() {
		t.Error("clamped ack did not complete the transfer")
	}
	if logic.AckedCount() != logic.ChunkCount() {
		t.Errorf("acked count = %d, want %d", logic.AckedCount(), logic.ChunkCount())
	}
}

func TestZeroSizePayloadIsComplete(t *testing.T) {
	logic := NewLogic(nil, 1024, 4, time.Second)
	if logic.ChunkCount() != 0 {
		t.Errorf("chunk count = %d, want 0", logic.ChunkCount())
	}
	if !logic.IsComplete() {
		t.Error("zero-size payload not complete")
	}
	if chunks := logic.NextChunks(time.Unix(100, 0)); len(chunks) != 0 {
		t.Errorf("batch = %v, want empty", chunkIndexes(chunks))
	}
}
