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
var _ Datagram = (*UDPConn)(nil)

// UDPConn carries commands as plain UDP packets, one command per
// packet. The dialing side is a connected socket. The listening side
// latches onto the first peer it hears from and replies there, which
// is enough for the point-to-point transfer protocol.
type UDPConn struct {
	conn *net.UDPConn

	// peer is nil on a listening conn until the first packet
	// arrives. Connected conns leave it nil and use the socket's
	// own peer.
	mu        sync.Mutex
	peer      *net.UDPAddr
	listening bool
}

// DialUDP opens a connected UDP socket to address (host:port).
func DialUDP(address string) (*UDPConn, error) {
	remote, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", address, err)
	}
	conn, err := net.DialUDP("udp", nil, remote)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", address, err)
	}
	return &UDPConn{conn: conn}, nil
}

// ListenUDP binds a UDP socket on address (e.g. ":7401", or ":0" for
// a random port).
func ListenUDP(address string) (*UDPConn, error) {
	local, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", address, err)
	}
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", address, err)
	}
	return &UDPConn{conn: conn, listening: true}, nil
}

// LocalAddr returns the socket's bound address.
func (c *UDPConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// WriteDatagram sends one packet. A listening conn that has not yet
// heard from a peer has nowhere to send and returns an error.
func (c *UDPConn) WriteDatagram(ctx context.Context, payload []byte) error {
	if len(payload) > MaxDatagramSize {
		return fmt.Errorf("datagram is %d bytes, max %d", len(payload), MaxDatagramSize)
	}
	stop := watchContext(ctx, c.conn.SetWriteDeadline)
	defer stop()

	if !c.listening {
		if _, err := c.conn.Write(payload); err != nil {
			return contextError(ctx, fmt.Errorf("udp write: %w", err))
		}
		return nil
	}

	c.mu.Lock()
	peer := c.peer
	c.mu.Unlock()
	if peer == nil {
		return fmt.Errorf("udp write: no peer yet")
	}
	if _, err := c.conn.WriteToUDP(payload, peer); err != nil {
		return contextError(ctx, fmt.Errorf("udp write to %s: %w", peer, err))
	}
	return nil
}

// ReadDatagram receives one packet. On a listening conn the sender's
// address becomes the peer for subsequent writes.
func (c *UDPConn) ReadDatagram(ctx context.Context) ([]byte, error) {
	stop := watchContext(ctx, c.conn.SetReadDeadline)
	defer stop()

	buffer := make([]byte, MaxDatagramSize)
	if !c.listening {
		length, err := c.conn.Read(buffer)
		if err != nil {
			return nil, contextError(ctx, fmt.Errorf("udp read: %w", err))
		}
		return buffer[:length], nil
	}

	length, sender, err := c.conn.ReadFromUDP(buffer)
	if err != nil {
		return nil, contextError(ctx, fmt.Errorf("udp read: %w", err))
	}
	c.mu.Lock()
	c.peer = sender
	c.mu.Unlock()
	return buffer[:length], nil
}

// Close closes the socket.
func (c *UDPConn) Close() error {
	return c.conn.Close()
}
