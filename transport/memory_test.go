// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryPairDelivers(t *testing.T) {
	a, b := NewMemoryPair()
	defer a.Close()
	ctx := context.Background()

	want := []byte{1, 2, 3}
	if err := a.WriteDatagram(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := b.ReadDatagram(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("read = %x, want %x", got, want)
	}

	// And the other direction.
	if err := b.WriteDatagram(ctx, []byte{9}); err != nil {
		t.Fatal(err)
	}
	if got, err := a.ReadDatagram(ctx); err != nil || !bytes.Equal(got, []byte{9}) {
		t.Errorf("reverse read = %x, %v", got, err)
	}
}

func TestMemoryPairWriteCopiesPayload(t *testing.T) {
	a, b := NewMemoryPair()
	defer a.Close()
	ctx := context.Background()

	payload := []byte{1, 2, 3}
	if err := a.WriteDatagram(ctx, payload); err != nil {
		t.Fatal(err)
	}
	payload[0] = 0xff

	got, err := b.ReadDatagram(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 1 {
		t.Error("delivered datagram aliases the caller's buffer")
	}
}

func TestMemoryPairDropHook(t *testing.T) {
	a, b := NewMemoryPair()
	defer a.Close()
	ctx := context.Background()

	dropped := 0
	a.Drop = func(payload []byte) bool {
		// Drop every other datagram.
		dropped++
		return dropped%2 == 1
	}

	for i := byte(0); i < 4; i++ {
		if err := a.WriteDatagram(ctx, []byte{i}); err != nil {
			t.Fatal(err)
		}
	}

	// Only datagrams 1 and 3 survive.
	for _, want := range []byte{1, 3} {
		got, err := b.ReadDatagram(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != want {
			t.Errorf("read = %d, want %d", got[0], want)
		}
	}
}

func TestMemoryPairDuplicateHook(t *testing.T) {
	a, b := NewMemoryPair()
	defer a.Close()
	ctx := context.Background()

	a.Duplicate = func([]byte) bool { return true }
	if err := a.WriteDatagram(ctx, []byte{7}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		got, err := b.ReadDatagram(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != 7 {
			t.Errorf("copy %d = %d, want 7", i, got[0])
		}
	}
}

func TestMemoryPairCloseUnblocksReader(t *testing.T) {
	a, b := NewMemoryPair()

	done := make(chan error, 1)
	go func() {
		_, err := b.ReadDatagram(context.Background())
		done <- err
	}()

	a.Close()
	select {
	case err := <-done:
		if err == nil {
			t.Error("read on closed pair returned nil error")
		}
	case <-time.After(time.Second):
		t.Fatal("reader still blocked after close")
	}

	// Double close on either end must not panic.
	a.Close()
	b.Close()
}
