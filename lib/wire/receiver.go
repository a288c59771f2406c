// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "encoding/binary"

// AckStart acknowledges a StartTransfer. The sender repeats
// StartTransfer until it sees an AckStart with the matching
// transfer ID.
type AckStart struct {
	Transfer TransferID
}

func (*AckStart) receiverCommand() {}

// Encode returns the AckStart wire bytes.
func (c *AckStart) Encode() ([]byte, error) {
	buffer := make([]byte, 0, 1+2)
	buffer = append(buffer, cmdAckStart)
	buffer = binary.BigEndian.AppendUint16(buffer, uint16(c.Transfer))
	return buffer, nil
}

func decodeAckStart(cursor *decodeCursor) (*AckStart, error) {
	transfer, err := cursor.uint16Field("transfer id")
	if err != nil {
		return nil, err
	}
	return &AckStart{Transfer: TransferID(transfer)}, nil
}

// AckChunk reports the receiver's assembly progress.
// WaitingForChunkIndex is the first chunk index not yet received —
// the first gap from the start, or the chunk count once the blob is
// complete. Bit i of ReceiveMaskAfterLast reports receipt of chunk
// WaitingForChunkIndex+1+i; indexes beyond the mask's 64-chunk
// horizon are reported as unreceived and simply get retransmitted.
type AckChunk struct {
	Transfer             TransferID
	WaitingForChunkIndex uint32
	ReceiveMaskAfterLast uint64
}

func (*AckChunk) receiverCommand() {}

// Encode returns the AckChunk wire bytes.
func (c *AckChunk) Encode() ([]byte, error) {
	buffer := make([]byte, 0, 1+2+4+8)
	buffer = append(buffer, cmdAckChunk)
	buffer = binary.BigEndian.AppendUint16(buffer, uint16(c.Transfer))
	buffer = binary.BigEndian.AppendUint32(buffer, c.WaitingForChunkIndex)
	buffer = binary.BigEndian.AppendUint64(buffer, c.ReceiveMaskAfterLast)
	return buffer, nil
}

func decodeAckChunk(cursor *decodeCursor) (*AckChunk, error) {
	transfer, err := cursor.uint16Field("transfer id")
	if err != nil {
		return nil, err
	}
	waiting, err := cursor.uint32Field("waiting chunk index")
	if err != nil {
		return nil, err
	}
	mask, err := cursor.uint64Field("receive mask")
	if err != nil {
		return nil, err
	}
	return &AckChunk{
		Transfer:             TransferID(transfer),
		WaitingForChunkIndex: waiting,
		ReceiveMaskAfterLast: mask,
	}, nil
}
