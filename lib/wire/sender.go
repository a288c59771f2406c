// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"
)

// StartTransfer announces a new transfer. The receiver resets its
// assembly state when the transfer ID differs from the current one
// and replies with AckStart either way. The manifest is opaque CBOR
// at this layer; lib/manifest defines its contents.
type StartTransfer struct {
	Transfer       TransferID
	TotalOctetSize uint32
	ChunkSize      uint16
	Manifest       []byte
}

func (*StartTransfer) senderCommand() {}

// Encode returns the StartTransfer wire bytes. The chunk size must
// be positive: a zero chunk size has no meaningful chunk grid and
// is rejected here rather than at every consumer.
func (c *StartTransfer) Encode() ([]byte, error) {
	if c.ChunkSize == 0 {
		return nil, fmt.Errorf("start transfer %d: zero chunk size", c.Transfer)
	}
	if len(c.Manifest) > MaxManifestSize {
		return nil, fmt.Errorf("start transfer %d: manifest is %d bytes, max %d",
			c.Transfer, len(c.Manifest), MaxManifestSize)
	}

	buffer := make([]byte, 0, 1+2+4+2+2+len(c.Manifest))
	buffer = append(buffer, cmdStartTransfer)
	buffer = binary.BigEndian.AppendUint16(buffer, uint16(c.Transfer))
	buffer = binary.BigEndian.AppendUint32(buffer, c.TotalOctetSize)
	buffer = binary.BigEndian.AppendUint16(buffer, c.ChunkSize)
	buffer = binary.BigEndian.AppendUint16(buffer, uint16(len(c.Manifest)))
	buffer = append(buffer, c.Manifest...)
	return buffer, nil
}

func decodeStartTransfer(cursor *decodeCursor) (*StartTransfer, error) {
	transfer, err := cursor.uint16Field("transfer id")
	if err != nil {
		return nil, err
	}
	totalOctetSize, err := cursor.uint32Field("total octet size")
	if err != nil {
		return nil, err
	}
	chunkSize, err := cursor.uint16Field("chunk size")
	if err != nil {
		return nil, err
	}
	if chunkSize == 0 {
		return nil, fmt.Errorf("start transfer %d: zero chunk size", transfer)
	}
	manifest, err := cursor.bytesField("manifest")
	if err != nil {
		return nil, err
	}
	return &StartTransfer{
		Transfer:       TransferID(transfer),
		TotalOctetSize: totalOctetSize,
		ChunkSize:      chunkSize,
		Manifest:       manifest,
	}, nil
}

// SetChunk carries one chunk's payload.
type SetChunk struct {
	Transfer   TransferID
	ChunkIndex uint32
	Payload    []byte
}

func (*SetChunk) senderCommand() {}

// Encode returns the SetChunk wire bytes.
func (c *SetChunk) Encode() ([]byte, error) {
	if len(c.Payload) > MaxChunkPayload {
		return nil, fmt.Errorf("set chunk %d: payload is %d bytes, max %d",
			c.ChunkIndex, len(c.Payload), MaxChunkPayload)
	}

	buffer := make([]byte, 0, 1+2+4+2+len(c.Payload))
	buffer = append(buffer, cmdSetChunk)
	buffer = binary.BigEndian.AppendUint16(buffer, uint16(c.Transfer))
	buffer = binary.BigEndian.AppendUint32(buffer, c.ChunkIndex)
	buffer = binary.BigEndian.AppendUint16(buffer, uint16(len(c.Payload)))
	buffer = append(buffer, c.Payload...)
	return buffer, nil
}

func decodeSetChunk(cursor *decodeCursor) (*SetChunk, error) {
	transfer, err := cursor.uint16Field("transfer id")
	if err != nil {
		return nil, err
	}
	chunkIndex, err := cursor.uint32Field("chunk index")
	if err != nil {
		return nil, err
	}
	payload, err := cursor.bytesField("chunk payload")
	if err != nil {
		return nil, err
	}
	return &SetChunk{
		Transfer:   TransferID(transfer),
		ChunkIndex: chunkIndex,
		Payload:    payload,
	}, nil
}
