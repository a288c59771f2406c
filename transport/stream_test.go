// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"
)

func TestStreamConnRoundTrip(t *testing.T) {
	clientPipe, serverPipe := net.Pipe()
	client := NewStreamConn(clientPipe)
	server := NewStreamConn(serverPipe)
	defer client.Close()
	defer server.Close()

	ctx := context.Background()
	sent := [][]byte{
		{0x01, 0x02, 0x03},
		{},
		bytes.Repeat([]byte{0xab}, 5000),
	}

	go func() {
		for _, payload := range sent {
			client.WriteDatagram(ctx, payload)
		}
	}()

	for i, want := range sent {
		got, err := server.ReadDatagram(ctx)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("read %d = %x, want %x", i, got, want)
		}
	}
}

func TestStreamConnRejectsOversizedFrame(t *testing.T) {
	clientPipe, serverPipe := net.Pipe()
	defer clientPipe.Close()
	server := NewStreamConn(serverPipe)
	defer server.Close()

	// A hostile header claiming a payload beyond the maximum.
	go clientPipe.Write([]byte{0xff, 0xff, 0xff, 0xff})

	if _, err := server.ReadDatagram(context.Background()); err == nil {
		t.Error("ReadDatagram accepted an oversized frame header")
	}
}

func TestStreamConnWriteRejectsOversizedDatagram(t *testing.T) {
	clientPipe, serverPipe := net.Pipe()
	defer serverPipe.Close()
	client := NewStreamConn(clientPipe)
	defer client.Close()

	payload := make([]byte, MaxDatagramSize+1)
	if err := client.WriteDatagram(context.Background(), payload); err == nil {
		t.Error("WriteDatagram accepted an oversized payload")
	}
}

func TestStreamConnReadHonorsContext(t *testing.T) {
	clientPipe, serverPipe := net.Pipe()
	defer clientPipe.Close()
	server := NewStreamConn(serverPipe)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := server.ReadDatagram(ctx)
	if err == nil {
		t.Fatal("ReadDatagram returned without data or cancellation")
	}
}

func TestTCPDialAndListen(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	address := listener.Addr().String()
	listener.Close()

	type result struct {
		conn *StreamConn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		conn, err := ListenTCP(ctx, address)
		accepted <- result{conn, err}
	}()

	var client *StreamConn
	for {
		client, err = DialTCP(ctx, address)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			t.Fatalf("dial never succeeded: %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
	defer client.Close()

	server := <-accepted
	if server.err != nil {
		t.Fatal(server.err)
	}
	defer server.conn.Close()

	want := []byte("over tcp")
	if err := client.WriteDatagram(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := server.conn.ReadDatagram(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("read = %q, want %q", got, want)
	}
}
