// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package xfer

import (
	"context"
	"fmt"

	"github.com/blobwire/blobwire/lib/blob"
	"github.com/blobwire/blobwire/lib/compress"
	"github.com/blobwire/blobwire/lib/manifest"
	"github.com/blobwire/blobwire/lib/seal"
	"github.com/blobwire/blobwire/lib/send"
	"github.com/blobwire/blobwire/lib/wire"
	"github.com/blobwire/blobwire/transport"
)

// Send delivers payload over conn and blocks until the receiver has
// acknowledged every chunk. It returns the manifest that described
// the transfer.
func Send(ctx context.Context, conn transport.Datagram, payload []byte, options SendOptions) (*manifest.Manifest, error) {
	options, err := options.withDefaults()
	if err != nil {
		return nil, err
	}
	logger := options.Logger.With("transfer", uint16(options.Transfer))

	transferPayload, m, err := prepare(payload, options)
	if err != nil {
		return nil, err
	}
	encodedManifest, err := m.Encode()
	if err != nil {
		return nil, err
	}

	front, err := send.NewFront(send.Config{
		Transfer:    options.Transfer,
		Payload:     transferPayload,
		ChunkSize:   options.ChunkSize,
		Manifest:    encodedManifest,
		Window:      options.Window,
		ResendAfter: options.ResendInterval,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("sending blob",
		"name", m.Name,
		"original_size", m.OriginalSize,
		"transfer_size", m.TransferSize,
		"compression", m.Compression,
		"sealed", m.Sealed,
		"chunk_size", options.ChunkSize,
	)

	if err := run(ctx, conn, front, options); err != nil {
		return nil, err
	}
	logger.Info("transfer complete")
	return m, nil
}

// prepare runs the payload pipeline and builds the manifest that
// describes the result.
func prepare(payload []byte, options SendOptions) ([]byte, *manifest.Manifest, error) {
	var (
		transferPayload []byte
		tag             compress.Tag
		err             error
	)
	if options.Compression == "" {
		transferPayload, tag, err = compress.Auto(payload, options.ContentType)
	} else {
		tag, err = compress.ParseTag(options.Compression)
		if err == nil {
			transferPayload, err = compress.Compress(payload, tag)
			if compress.IsIncompressible(err) {
				transferPayload, tag, err = payload, compress.None, nil
			}
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("compressing payload: %w", err)
	}

	sealed := false
	if options.PresharedKey != nil {
		key, err := seal.DeriveTransferKey(options.PresharedKey, uint16(options.Transfer))
		if err != nil {
			return nil, nil, err
		}
		transferPayload, err = seal.Seal(key, transferPayload)
		if err != nil {
			return nil, nil, err
		}
		sealed = true
	}

	m := &manifest.Manifest{
		Name:         options.Name,
		ContentType:  options.ContentType,
		BlobHash:     blob.FormatHash(blob.HashBlob(payload)),
		Compression:  tag.String(),
		Sealed:       sealed,
		OriginalSize: uint64(len(payload)),
		TransferSize: uint64(len(transferPayload)),
	}
	return transferPayload, m, nil
}

// run pumps the front until every chunk is acknowledged. A reader
// goroutine feeds incoming acks; the clock drives retransmission.
func run(ctx context.Context, conn transport.Datagram, front *send.Front, options SendOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	incoming := make(chan []byte, 64)
	readFailed := make(chan error, 1)
	go func() {
		for {
			payload, err := conn.ReadDatagram(ctx)
			if err != nil {
				readFailed <- err
				return
			}
			select {
			case incoming <- payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	flush := func() error {
		for _, command := range front.Commands(options.Clock.Now()) {
			encoded, err := command.Encode()
			if err != nil {
				return err
			}
			if err := conn.WriteDatagram(ctx, encoded); err != nil {
				return fmt.Errorf("writing command: %w", err)
			}
		}
		return nil
	}

	// Ticks at a fraction of the resend interval keep retransmission
	// latency well under one interval.
	ticker := options.Clock.NewTicker(options.ResendInterval / 4)
	defer ticker.Stop()

	if err := flush(); err != nil {
		return err
	}
	for front.State() != send.StateDone {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readFailed:
			return fmt.Errorf("reading acks: %w", err)
		case payload := <-incoming:
			command, err := wire.DecodeReceiverCommand(payload)
			if err != nil {
				options.Logger.Warn("discarding malformed datagram", "error", err)
				continue
			}
			if err := front.Handle(command); err != nil {
				return err
			}
			// Acks open window room; refill it immediately.
			if err := flush(); err != nil {
				return err
			}
		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return nil
}
