// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
)

// frameHeaderLength is the fixed size of a frame header: 4 bytes
// payload length, big-endian.
const frameHeaderLength = 4

// Compile-time interface check.
var _ Datagram = (*StreamConn)(nil)

// StreamConn carries commands over a byte stream, each command
// framed as [4 bytes payload length, big-endian uint32] [payload].
// A stream delivers reliably and in order, which the protocol also
// tolerates; the framing only restores message boundaries.
type StreamConn struct {
	conn net.Conn

	// The stream interleaves if two frames write concurrently; the
	// driver writes acks and chunks from separate goroutines.
	writeMu sync.Mutex
	readMu  sync.Mutex
}

// NewStreamConn frames commands over an established stream
// connection.
func NewStreamConn(conn net.Conn) *StreamConn {
	return &StreamConn{conn: conn}
}

// DialTCP opens a TCP connection to address (host:port) and frames
// commands over it.
func DialTCP(ctx context.Context, address string) (*StreamConn, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", address, err)
	}
	return NewStreamConn(conn), nil
}

// ListenTCP accepts a single TCP connection on address and frames
// commands over it. The transfer protocol is point to point; the
// listener closes once the first connection is accepted.
func ListenTCP(ctx context.Context, address string) (*StreamConn, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", address, err)
	}
	defer listener.Close()

	cancelWatch := context.AfterFunc(ctx, func() { listener.Close() })
	defer cancelWatch()

	conn, err := listener.Accept()
	if err != nil {
		return nil, contextError(ctx, fmt.Errorf("accepting on %s: %w", address, err))
	}
	return NewStreamConn(conn), nil
}

// WriteDatagram writes one framed command.
func (c *StreamConn) WriteDatagram(ctx context.Context, payload []byte) error {
	if len(payload) > MaxDatagramSize {
		return fmt.Errorf("datagram is %d bytes, max %d", len(payload), MaxDatagramSize)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	stop := watchContext(ctx, c.conn.SetWriteDeadline)
	defer stop()

	frame := make([]byte, frameHeaderLength+len(payload))
	binary.BigEndian.PutUint32(frame[:frameHeaderLength], uint32(len(payload)))
	copy(frame[frameHeaderLength:], payload)
	if _, err := c.conn.Write(frame); err != nil {
		return contextError(ctx, fmt.Errorf("write frame: %w", err))
	}
	return nil
}

// ReadDatagram reads one framed command.
func (c *StreamConn) ReadDatagram(ctx context.Context) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	stop := watchContext(ctx, c.conn.SetReadDeadline)
	defer stop()

	var header [frameHeaderLength]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return nil, contextError(ctx, fmt.Errorf("read frame header: %w", err))
	}
	payloadLength := binary.BigEndian.Uint32(header[:])
	if payloadLength > MaxDatagramSize {
		return nil, fmt.Errorf("frame length %d exceeds maximum %d", payloadLength, MaxDatagramSize)
	}
	payload := make([]byte, payloadLength)
	if payloadLength > 0 {
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return nil, contextError(ctx, fmt.Errorf("read frame payload: %w", err))
		}
	}
	return payload, nil
}

// Close closes the underlying stream.
func (c *StreamConn) Close() error {
	return c.conn.Close()
}
