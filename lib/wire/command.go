// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TransferID identifies one transfer on an association. A sender
// picks a fresh ID per transfer; a StartTransfer with a new ID
// preempts whatever the receiver was assembling.
type TransferID uint16

// Command bytes. SetChunk and AckChunk are fixed by the original
// protocol; StartTransfer and AckStart extend the same namespace.
// These are protocol constants — changing them breaks wire
// compatibility.
const (
	cmdSetChunk      byte = 0x01
	cmdAckChunk      byte = 0x02
	cmdStartTransfer byte = 0x03
	cmdAckStart      byte = 0x04
)

// Size limits. Both variable-length fields carry a u16 length
// prefix, so 65535 is the hard ceiling; chunk payloads are further
// capped so a SetChunk always fits a single UDP datagram.
const (
	// MaxChunkPayload is the largest chunk payload a SetChunk may
	// carry.
	MaxChunkPayload = 60000

	// MaxManifestSize is the largest CBOR manifest a StartTransfer
	// may carry.
	MaxManifestSize = 0xFFFF
)

// ErrUnknownCommand reports a datagram whose command byte is not
// defined for the direction it was decoded as.
var ErrUnknownCommand = errors.New("unknown command")

// ErrTruncated reports a datagram that ended before a field was
// complete.
var ErrTruncated = errors.New("truncated datagram")

// SenderCommand is a command flowing sender to receiver:
// *StartTransfer or *SetChunk.
type SenderCommand interface {
	// Encode returns the command's wire bytes.
	Encode() ([]byte, error)

	senderCommand()
}

// ReceiverCommand is a command flowing receiver to sender:
// *AckStart or *AckChunk.
type ReceiverCommand interface {
	// Encode returns the command's wire bytes.
	Encode() ([]byte, error)

	receiverCommand()
}

// DecodeSenderCommand decodes a sender-to-receiver datagram.
func DecodeSenderCommand(data []byte) (SenderCommand, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty datagram", ErrTruncated)
	}
	cursor := &decodeCursor{data: data[1:]}
	switch data[0] {
	case cmdStartTransfer:
		return decodeStartTransfer(cursor)
	case cmdSetChunk:
		return decodeSetChunk(cursor)
	default:
		return nil, fmt.Errorf("%w: byte 0x%02x in sender direction", ErrUnknownCommand, data[0])
	}
}

// DecodeReceiverCommand decodes a receiver-to-sender datagram.
func DecodeReceiverCommand(data []byte) (ReceiverCommand, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty datagram", ErrTruncated)
	}
	cursor := &decodeCursor{data: data[1:]}
	switch data[0] {
	case cmdAckStart:
		return decodeAckStart(cursor)
	case cmdAckChunk:
		return decodeAckChunk(cursor)
	default:
		return nil, fmt.Errorf("%w: byte 0x%02x in receiver direction", ErrUnknownCommand, data[0])
	}
}

// decodeCursor reads big-endian fields from a datagram body with
// bounds checking. Each read method returns a wrapped ErrTruncated
// naming the field when the datagram is too short.
type decodeCursor struct {
	data     []byte
	position int
}

func (c *decodeCursor) uint16Field(name string) (uint16, error) {
	if c.position+2 > len(c.data) {
		return 0, fmt.Errorf("%w: reading %s", ErrTruncated, name)
	}
	value := binary.BigEndian.Uint16(c.data[c.position:])
	c.position += 2
	return value, nil
}

func (c *decodeCursor) uint32Field(name string) (uint32, error) {
	if c.position+4 > len(c.data) {
		return 0, fmt.Errorf("%w: reading %s", ErrTruncated, name)
	}
	value := binary.BigEndian.Uint32(c.data[c.position:])
	c.position += 4
	return value, nil
}

func (c *decodeCursor) uint64Field(name string) (uint64, error) {
	if c.position+8 > len(c.data) {
		return 0, fmt.Errorf("%w: reading %s", ErrTruncated, name)
	}
	value := binary.BigEndian.Uint64(c.data[c.position:])
	c.position += 8
	return value, nil
}

// bytesField reads a u16 length prefix followed by that many bytes.
// The returned slice is copied out of the datagram so commands
// outlive the transport's read buffer.
func (c *decodeCursor) bytesField(name string) ([]byte, error) {
	length, err := c.uint16Field(name + " length")
	if err != nil {
		return nil, err
	}
	if c.position+int(length) > len(c.data) {
		return nil, fmt.Errorf("%w: reading %s (%d bytes)", ErrTruncated, name, length)
	}
	value := make([]byte, length)
	copy(value, c.data[c.position:])
	c.position += int(length)
	return value, nil
}
