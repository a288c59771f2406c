// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package send

import (
	"time"

	"github.com/blobwire/blobwire/lib/blob"
)

// Logic schedules chunk transmissions for one transfer. It tracks
// which chunks the receiver has acknowledged and which are in
// flight, and produces the next batch to transmit: unsent chunks in
// lowest-index-first order while the in-flight window has room,
// plus any sent chunk whose ack is overdue.
//
// Logic is not safe for concurrent use.
type Logic struct {
	splitter   *blob.Splitter
	chunkCount int

	acked      []bool
	ackedCount int

	sent     []bool
	lastSent []time.Time

	window      int
	resendAfter time.Duration
}

// NewLogic creates send logic over the transfer payload. window is
// the maximum number of unacked chunks in flight; resendAfter is
// how long a chunk may wait for its ack before retransmission.
func NewLogic(payload []byte, chunkSize, window int, resendAfter time.Duration) *Logic {
	splitter := blob.NewSplitter(payload, chunkSize)
	chunkCount := splitter.ChunkCount()
	return &Logic{
		splitter:    splitter,
		chunkCount:  chunkCount,
		acked:       make([]bool, chunkCount),
		sent:        make([]bool, chunkCount),
		lastSent:    make([]time.Time, chunkCount),
		window:      window,
		resendAfter: resendAfter,
	}
}

// ChunkCount returns the transfer's total chunk count.
func (l *Logic) ChunkCount() int { return l.chunkCount }

// AckedCount returns the number of chunks the receiver has
// acknowledged.
func (l *Logic) AckedCount() int { return l.ackedCount }

// IsComplete reports whether every chunk has been acknowledged.
func (l *Logic) IsComplete() bool { return l.ackedCount == l.chunkCount }

// NextChunks returns the chunks to transmit at time now and marks
// them sent. A chunk qualifies when it is unacked and either never
// sent or sent at least resendAfter ago; the combined number of
// waiting and newly transmitted chunks never exceeds the window.
func (l *Logic) NextChunks(now time.Time) []blob.Chunk {
	var out []blob.Chunk
	inFlight := 0
	for index := 0; index < l.chunkCount && inFlight < l.window; index++ {
		if l.acked[index] {
			continue
		}
		if l.sent[index] && now.Sub(l.lastSent[index]) < l.resendAfter {
			// Still waiting on this one's ack.
			inFlight++
			continue
		}
		out = append(out, l.splitter.ChunkAt(index))
		l.sent[index] = true
		l.lastSent[index] = now
		inFlight++
	}
	return out
}

// ApplyAck records the receiver's progress: every index below the
// waiting index is acked, and bit i of the mask acks index
// waiting+1+i. Acks only ever add to the acked set — a stale or
// reordered ack can never regress progress.
func (l *Logic) ApplyAck(waitingForChunkIndex uint32, receiveMaskAfterLast uint64) {
	waiting := int(waitingForChunkIndex)
	if waiting > l.chunkCount {
		waiting = l.chunkCount
	}
	for index := 0; index < waiting; index++ {
		l.ackChunk(index)
	}
	for bit := 0; bit < 64; bit++ {
		if receiveMaskAfterLast&(1<<bit) == 0 {
			continue
		}
		index := waiting + 1 + bit
		if index >= l.chunkCount {
			break
		}
		l.ackChunk(index)
	}
}

func (l *Logic) ackChunk(index int) {
	if !l.acked[index] {
		l.acked[index] = true
		l.ackedCount++
	}
}
