// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package xfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/blobwire/blobwire/lib/blob"
	"github.com/blobwire/blobwire/lib/compress"
	"github.com/blobwire/blobwire/lib/manifest"
	"github.com/blobwire/blobwire/lib/receive"
	"github.com/blobwire/blobwire/lib/seal"
	"github.com/blobwire/blobwire/lib/wire"
	"github.com/blobwire/blobwire/transport"
)

// Result is a completed inbound transfer: the manifest the sender
// announced and the verified original payload.
type Result struct {
	Manifest *manifest.Manifest
	Payload  []byte
}

// ErrHashMismatch reports that the assembled blob does not hash to
// the manifest's blob hash.
var ErrHashMismatch = errors.New("blob hash mismatch")

// ErrSealedWithoutKey reports a sealed transfer arriving at a
// receiver with no pre-shared key.
var ErrSealedWithoutKey = errors.New("transfer is sealed but no key is configured")

// Receive accepts one transfer over conn, blocks until every chunk
// arrived, and returns the unsealed, decompressed, hash-verified
// payload.
func Receive(ctx context.Context, conn transport.Datagram, options ReceiveOptions) (*Result, error) {
	options = options.withDefaults()
	logger := options.Logger

	front := receive.NewFront()
	for !front.IsComplete() {
		payload, err := conn.ReadDatagram(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading command: %w", err)
		}
		command, err := wire.DecodeSenderCommand(payload)
		if err != nil {
			logger.Warn("discarding malformed datagram", "error", err)
			continue
		}
		response, err := front.Update(command)
		if err != nil {
			if errors.Is(err, receive.ErrUnknownTransfer) {
				// Stale traffic from a superseded transfer.
				logger.Debug("discarding stale command", "error", err)
				continue
			}
			return nil, err
		}
		encoded, err := response.Encode()
		if err != nil {
			return nil, err
		}
		if err := conn.WriteDatagram(ctx, encoded); err != nil {
			return nil, fmt.Errorf("writing ack: %w", err)
		}
	}

	m := front.Manifest()
	logger.Info("transfer assembled",
		"transfer", uint16(front.Transfer()),
		"name", m.Name,
		"transfer_size", m.TransferSize,
		"compression", m.Compression,
		"sealed", m.Sealed,
	)
	payload, err := unpack(front, m, options)
	if err != nil {
		return nil, err
	}
	return &Result{Manifest: m, Payload: payload}, nil
}

// unpack reverses the sender's pipeline on the assembled bytes and
// verifies the blob hash.
func unpack(front *receive.Front, m *manifest.Manifest, options ReceiveOptions) ([]byte, error) {
	payload := front.Bytes()

	if m.Sealed {
		if options.PresharedKey == nil {
			return nil, ErrSealedWithoutKey
		}
		key, err := seal.DeriveTransferKey(options.PresharedKey, uint16(front.Transfer()))
		if err != nil {
			return nil, err
		}
		payload, err = seal.Open(key, payload)
		if err != nil {
			return nil, err
		}
	}

	tag, err := m.CompressionTag()
	if err != nil {
		return nil, err
	}
	payload, err = compress.Decompress(payload, tag, int(m.OriginalSize))
	if err != nil {
		return nil, err
	}

	wantHash, err := m.Hash()
	if err != nil {
		return nil, err
	}
	if blob.HashBlob(payload) != wantHash {
		return nil, fmt.Errorf("%w: payload does not match manifest hash %s", ErrHashMismatch, m.BlobHash)
	}
	return payload, nil
}
