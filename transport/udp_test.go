// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestUDPRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	receiver, err := ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer receiver.Close()

	sender, err := DialUDP(receiver.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Close()

	// The listening side cannot reply before it hears from a peer.
	if err := receiver.WriteDatagram(ctx, []byte{1}); err == nil {
		t.Error("listening conn wrote before learning its peer")
	}

	want := []byte("hello over udp")
	if err := sender.WriteDatagram(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := receiver.ReadDatagram(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("read = %q, want %q", got, want)
	}

	// Now the peer is latched and replies flow back.
	if err := receiver.WriteDatagram(ctx, []byte("ack")); err != nil {
		t.Fatal(err)
	}
	reply, err := sender.ReadDatagram(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(reply, []byte("ack")) {
		t.Errorf("reply = %q, want %q", reply, "ack")
	}
}

func TestUDPReadHonorsContext(t *testing.T) {
	conn, err := ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := conn.ReadDatagram(ctx); err == nil {
		t.Error("ReadDatagram returned without data or cancellation")
	}
}
