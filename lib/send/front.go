// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package send

import (
	"fmt"
	"time"

	"github.com/blobwire/blobwire/lib/wire"
)

// State is the front's position in the transfer lifecycle.
type State int

const (
	// StateStarting means the front is repeating StartTransfer and
	// waiting for the receiver's AckStart.
	StateStarting State = iota

	// StateTransferring means the handshake completed and chunks are
	// flowing.
	StateTransferring

	// StateDone means every chunk has been acknowledged.
	StateDone
)

// String returns the state's name for logs.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateTransferring:
		return "transferring"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Front drives one outbound transfer. The driver calls Commands on
// every tick and transmits what it returns, and feeds every
// incoming receiver command to Handle.
//
// Front is not safe for concurrent use.
type Front struct {
	transfer    wire.TransferID
	start       *wire.StartTransfer
	logic       *Logic
	state       State
	resendAfter time.Duration
	lastStart   time.Time
}

// Config carries the parameters for one outbound transfer.
type Config struct {
	// Transfer is the transfer ID. The sender picks a fresh one per
	// transfer so the receiver can tell a restart from a
	// retransmission.
	Transfer wire.TransferID

	// Payload is the bytes to deliver — already compressed and
	// sealed as the manifest describes.
	Payload []byte

	// ChunkSize is the fixed chunk size. Must be in
	// (0, wire.MaxChunkPayload].
	ChunkSize int

	// Manifest is the encoded CBOR manifest announced in
	// StartTransfer.
	Manifest []byte

	// Window is the maximum number of unacked chunks in flight.
	Window int

	// ResendAfter is how long a transmitted chunk (or the
	// StartTransfer itself) may wait for acknowledgement before
	// retransmission.
	ResendAfter time.Duration
}

// NewFront creates a front for one transfer.
func NewFront(config Config) (*Front, error) {
	if config.ChunkSize <= 0 || config.ChunkSize > wire.MaxChunkPayload {
		return nil, fmt.Errorf("chunk size %d out of range (0, %d]", config.ChunkSize, wire.MaxChunkPayload)
	}
	if config.Window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", config.Window)
	}
	if config.ResendAfter <= 0 {
		return nil, fmt.Errorf("resend interval must be positive, got %v", config.ResendAfter)
	}

	return &Front{
		transfer: config.Transfer,
		start: &wire.StartTransfer{
			Transfer:       config.Transfer,
			TotalOctetSize: uint32(len(config.Payload)),
			ChunkSize:      uint16(config.ChunkSize),
			Manifest:       config.Manifest,
		},
		logic:       NewLogic(config.Payload, config.ChunkSize, config.Window, config.ResendAfter),
		state:       StateStarting,
		resendAfter: config.ResendAfter,
	}, nil
}

// State returns the front's lifecycle state.
func (f *Front) State() State { return f.state }

// Transfer returns the transfer ID.
func (f *Front) Transfer() wire.TransferID { return f.transfer }

// Progress returns acked and total chunk counts.
func (f *Front) Progress() (acked, total int) {
	return f.logic.AckedCount(), f.logic.ChunkCount()
}

// Commands returns the datagrams to transmit at time now. While
// starting, that is the StartTransfer announcement, retransmitted at
// the ResendAfter cadence; while transferring, the chunk batch Logic
// schedules. Done transfers produce nothing.
func (f *Front) Commands(now time.Time) []wire.SenderCommand {
	switch f.state {
	case StateStarting:
		if !f.lastStart.IsZero() && now.Sub(f.lastStart) < f.resendAfter {
			return nil
		}
		f.lastStart = now
		return []wire.SenderCommand{f.start}
	case StateTransferring:
		chunks := f.logic.NextChunks(now)
		commands := make([]wire.SenderCommand, 0, len(chunks))
		for _, chunk := range chunks {
			commands = append(commands, &wire.SetChunk{
				Transfer:   f.transfer,
				ChunkIndex: uint32(chunk.Index),
				Payload:    chunk.Payload,
			})
		}
		return commands
	default:
		return nil
	}
}

// Handle processes one receiver command. Commands for other
// transfer IDs are stale traffic from a superseded transfer and are
// ignored.
func (f *Front) Handle(command wire.ReceiverCommand) error {
	switch cmd := command.(type) {
	case *wire.AckStart:
		if cmd.Transfer != f.transfer {
			return nil
		}
		if f.state == StateStarting {
			f.state = StateTransferring
			// A zero-size payload has no chunks to deliver: the
			// handshake completes the transfer.
			if f.logic.IsComplete() {
				f.state = StateDone
			}
		}
		return nil
	case *wire.AckChunk:
		if cmd.Transfer != f.transfer {
			return nil
		}
		// An AckChunk implies the receiver accepted the start even
		// if the AckStart itself was lost.
		if f.state == StateStarting {
			f.state = StateTransferring
		}
		f.logic.ApplyAck(cmd.WaitingForChunkIndex, cmd.ReceiveMaskAfterLast)
		if f.logic.IsComplete() {
			f.state = StateDone
		}
		return nil
	default:
		return fmt.Errorf("unhandled receiver command %T", command)
	}
}
