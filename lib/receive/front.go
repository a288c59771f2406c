// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package receive

import (
	"errors"
	"fmt"

	"github.com/blobwire/blobwire/lib/manifest"
	"github.com/blobwire/blobwire/lib/wire"
)

// ErrUnknownTransfer reports a SetChunk whose transfer ID does not
// match the active session — either no StartTransfer arrived yet or
// the chunk belongs to a superseded transfer.
var ErrUnknownTransfer = errors.New("unknown transfer")

// session is the state for one active transfer.
type session struct {
	transfer wire.TransferID
	logic    *Logic
	manifest *manifest.Manifest
}

// Front owns the receiver's transfer session. One transfer is
// active at a time: a StartTransfer with a new ID discards whatever
// was being assembled and starts fresh, a repeated StartTransfer
// for the active ID just re-acks (the sender repeats it until the
// ack gets through).
//
// Front is not safe for concurrent use.
type Front struct {
	state *session
}

// NewFront creates a Front with no active transfer.
func NewFront() *Front {
	return &Front{}
}

// Update processes one sender command and returns the response to
// send back.
func (f *Front) Update(command wire.SenderCommand) (wire.ReceiverCommand, error) {
	switch cmd := command.(type) {
	case *wire.StartTransfer:
		return f.handleStart(cmd)
	case *wire.SetChunk:
		return f.handleChunk(cmd)
	default:
		return nil, fmt.Errorf("unhandled sender command %T", command)
	}
}

func (f *Front) handleStart(cmd *wire.StartTransfer) (wire.ReceiverCommand, error) {
	if f.state == nil || f.state.transfer != cmd.Transfer {
		decoded, err := manifest.Decode(cmd.Manifest)
		if err != nil {
			return nil, fmt.Errorf("start of transfer %d: %w", cmd.Transfer, err)
		}
		if decoded.TransferSize != uint64(cmd.TotalOctetSize) {
			return nil, fmt.Errorf(
				"start of transfer %d: manifest transfer size %d disagrees with header %d",
				cmd.Transfer, decoded.TransferSize, cmd.TotalOctetSize)
		}
		f.state = &session{
			transfer: cmd.Transfer,
			logic:    NewLogic(int(cmd.TotalOctetSize), int(cmd.ChunkSize)),
			manifest: decoded,
		}
	}
	return &wire.AckStart{Transfer: cmd.Transfer}, nil
}

func (f *Front) handleChunk(cmd *wire.SetChunk) (wire.ReceiverCommand, error) {
	if f.state == nil || f.state.transfer != cmd.Transfer {
		return nil, fmt.Errorf("%w: set chunk for transfer %d", ErrUnknownTransfer, cmd.Transfer)
	}
	if err := f.state.logic.Apply(cmd.ChunkIndex, cmd.Payload); err != nil {
		return nil, fmt.Errorf("transfer %d chunk %d: %w", cmd.Transfer, cmd.ChunkIndex, err)
	}
	return f.state.logic.AckCommand(cmd.Transfer), nil
}

// Transfer returns the active transfer ID. Valid only when Active.
func (f *Front) Transfer() wire.TransferID {
	if f.state == nil {
		return 0
	}
	return f.state.transfer
}

// Active reports whether a transfer session exists.
func (f *Front) Active() bool { return f.state != nil }

// Manifest returns the active transfer's manifest, or nil.
func (f *Front) Manifest() *manifest.Manifest {
	if f.state == nil {
		return nil
	}
	return f.state.manifest
}

// IsComplete reports whether the active transfer has every chunk.
// False when no transfer is active.
func (f *Front) IsComplete() bool {
	return f.state != nil && f.state.logic.IsComplete()
}

// Bytes returns the assembled transfer payload (still compressed
// and sealed as the manifest describes), or nil while incomplete.
func (f *Front) Bytes() []byte {
	if f.state == nil {
		return nil
	}
	return f.state.logic.Bytes()
}
