// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package receive

import (
	"errors"

	"github.com/blobwire/blobwire/lib/blob"
	"github.com/blobwire/blobwire/lib/wire"
)

// Logic assembles one blob from incoming chunks and reports
// progress as AckChunk fields. It has no notion of transfer IDs —
// Front owns session identity.
//
// Logic is not safe for concurrent use.
type Logic struct {
	assembler *blob.Assembler
}

// NewLogic creates receive logic for a blob of octetCount bytes in
// chunkSize-byte chunks.
func NewLogic(octetCount, chunkSize int) *Logic {
	return &Logic{assembler: blob.NewAssembler(octetCount, chunkSize)}
}

// Apply stores one chunk. A duplicate with identical contents is
// swallowed — on a datagram transport that is a retransmission, and
// the right response is simply another ack. Every other assembly
// error is surfaced.
func (l *Logic) Apply(chunkIndex uint32, payload []byte) error {
	err := l.assembler.SetChunk(int(chunkIndex), payload)
	if errors.Is(err, blob.ErrChunkAlreadyReceived) {
		return nil
	}
	return err
}

// Ack returns the current progress as AckChunk fields: the first
// unreceived chunk index (the chunk count once complete) and the
// receive mask for the 64 indexes after it, bit i reporting index
// waiting+1+i.
func (l *Logic) Ack() (waitingForChunkIndex uint32, receiveMaskAfterLast uint64) {
	waiting := l.assembler.FirstMissing()

	var mask uint64
	for bit := 0; bit < 64; bit++ {
		index := waiting + 1 + bit
		if index >= l.assembler.ChunkCount() {
			break
		}
		if l.assembler.Received(index) {
			mask |= 1 << bit
		}
	}
	return uint32(waiting), mask
}

// IsComplete reports whether every chunk has arrived.
func (l *Logic) IsComplete() bool { return l.assembler.IsComplete() }

// Bytes returns the assembled blob, or nil while incomplete.
func (l *Logic) Bytes() []byte { return l.assembler.Bytes() }

// ChunkCount returns the blob's total chunk count.
func (l *Logic) ChunkCount() int { return l.assembler.ChunkCount() }

// AckCommand packages Ack into a wire command for the given
// transfer.
func (l *Logic) AckCommand(transfer wire.TransferID) *wire.AckChunk {
	waiting, mask := l.Ack()
	return &wire.AckChunk{
		Transfer:             transfer,
		WaitingForChunkIndex: waiting,
		ReceiveMaskAfterLast: mask,
	}
}
