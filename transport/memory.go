// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
)

// Compile-time interface check.
var _ Datagram = (*MemoryConn)(nil)

// MemoryConn is one end of an in-process datagram pair. Tests use it
// to run both protocol ends without sockets, and the Drop hook
// injects loss: datagrams it reports true for vanish in transit.
type MemoryConn struct {
	// Drop, when non-nil, is consulted for every outbound datagram.
	// Returning true discards it. Set before any traffic flows.
	Drop func(payload []byte) bool

	// Duplicate, when non-nil, is consulted for every delivered
	// datagram. Returning true delivers it twice, back to back.
	Duplicate func(payload []byte) bool

	send chan []byte
	recv chan []byte

	// Both ends share the closed channel and the once guarding it.
	closed    chan struct{}
	closeOnce *sync.Once
}

// NewMemoryPair creates two connected in-process ends. Datagrams
// written on one end arrive on the other, in order, unless dropped.
func NewMemoryPair() (*MemoryConn, *MemoryConn) {
	aToB := make(chan []byte, 256)
	bToA := make(chan []byte, 256)
	closed := make(chan struct{})
	once := &sync.Once{}
	a := &MemoryConn{send: aToB, recv: bToA, closed: closed, closeOnce: once}
	b := &MemoryConn{send: bToA, recv: aToB, closed: closed, closeOnce: once}
	return a, b
}

// WriteDatagram delivers one datagram to the other end, or discards
// it when the Drop hook claims it.
func (c *MemoryConn) WriteDatagram(ctx context.Context, payload []byte) error {
	if len(payload) > MaxDatagramSize {
		return fmt.Errorf("datagram is %d bytes, max %d", len(payload), MaxDatagramSize)
	}
	if c.Drop != nil && c.Drop(payload) {
		return nil
	}
	copies := 1
	if c.Duplicate != nil && c.Duplicate(payload) {
		copies = 2
	}
	for i := 0; i < copies; i++ {
		buffer := make([]byte, len(payload))
		copy(buffer, payload)
		select {
		case c.send <- buffer:
		case <-c.closed:
			return net.ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// ReadDatagram returns the next datagram from the other end.
func (c *MemoryConn) ReadDatagram(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-c.recv:
		return payload, nil
	case <-c.closed:
		return nil, net.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close shuts down both ends of the pair.
func (c *MemoryConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}
