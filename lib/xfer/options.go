// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package xfer

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/blobwire/blobwire/lib/clock"
	"github.com/blobwire/blobwire/lib/wire"
)

const (
	// DefaultChunkSize keeps a full SetChunk comfortably inside one
	// UDP datagram on any sane path MTU budget while amortizing
	// per-command overhead.
	DefaultChunkSize = 16 * 1024

	// DefaultWindow is the default number of unacked chunks in
	// flight.
	DefaultWindow = 16

	// DefaultResendInterval is the default time a chunk waits for
	// its ack before retransmission.
	DefaultResendInterval = 250 * time.Millisecond
)

// SendOptions configures one outbound transfer. The zero value plus
// a payload is a working configuration.
type SendOptions struct {
	// Transfer is the transfer ID; zero picks a random one.
	Transfer wire.TransferID

	// Name and ContentType describe the blob in the manifest.
	// ContentType also steers compression selection.
	Name        string
	ContentType string

	// Compression forces a compression tag ("none", "lz4", "zstd").
	// Empty selects automatically by content type and a probe.
	Compression string

	// PresharedKey, when set, seals the payload with a key derived
	// from it for this transfer. Must be seal.KeySize bytes.
	PresharedKey []byte

	// ChunkSize, Window and ResendInterval override the transfer
	// defaults. Zero means default.
	ChunkSize      int
	Window         int
	ResendInterval time.Duration

	// Clock supplies time; nil means the real clock.
	Clock clock.Clock

	// Logger receives transfer progress; nil means slog.Default.
	Logger *slog.Logger
}

// withDefaults fills in unset options. Called once at the top of
// Send so the rest of the driver never branches on zero values.
func (o SendOptions) withDefaults() (SendOptions, error) {
	if o.Transfer == 0 {
		transfer, err := randomTransferID()
		if err != nil {
			return o, err
		}
		o.Transfer = transfer
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Window == 0 {
		o.Window = DefaultWindow
	}
	if o.ResendInterval == 0 {
		o.ResendInterval = DefaultResendInterval
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o, nil
}

// ReceiveOptions configures the receiving side.
type ReceiveOptions struct {
	// PresharedKey opens sealed transfers. A sealed transfer
	// arriving without a key is an error.
	PresharedKey []byte

	// Logger receives transfer progress; nil means slog.Default.
	Logger *slog.Logger
}

func (o ReceiveOptions) withDefaults() ReceiveOptions {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// randomTransferID draws a nonzero random transfer ID. Zero is
// reserved to mean "pick one" in SendOptions.
func randomTransferID() (wire.TransferID, error) {
	var buffer [2]byte
	for {
		if _, err := rand.Read(buffer[:]); err != nil {
			return 0, fmt.Errorf("drawing transfer id: %w", err)
		}
		id := wire.TransferID(binary.BigEndian.Uint16(buffer[:]))
		if id != 0 {
			return id, nil
		}
	}
}
