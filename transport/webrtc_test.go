// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pion/datachannel"
)

// Loopback candidates are enabled on every peer, so two peers in one
// process connect without any ICE server.
func TestWebRTCPeerLoopbackRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	offerer, err := NewWebRTCPeer(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer offerer.Close()
	answerer, err := NewWebRTCPeer(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer answerer.Close()

	offerSDP, err := offerer.Offer(ctx)
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	answerSDP, err := answerer.Accept(ctx, offerSDP)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := offerer.HandleAnswer(answerSDP); err != nil {
		t.Fatalf("handle answer: %v", err)
	}

	type opened struct {
		conn Datagram
		err  error
	}
	answerSide := make(chan opened, 1)
	go func() {
		conn, err := answerer.Datagram(ctx)
		answerSide <- opened{conn, err}
	}()
	offerConn, err := offerer.Datagram(ctx)
	if err != nil {
		t.Fatalf("offerer channel: %v", err)
	}
	defer offerConn.Close()
	answered := <-answerSide
	if answered.err != nil {
		t.Fatalf("answerer channel: %v", answered.err)
	}
	answerConn := answered.conn
	defer answerConn.Close()

	want := []byte("datagram over the data channel")
	if err := offerConn.WriteDatagram(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := answerConn.ReadDatagram(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("read = %q, want %q", got, want)
	}

	// And the other direction.
	reply := []byte{0xde, 0xad}
	if err := answerConn.WriteDatagram(ctx, reply); err != nil {
		t.Fatal(err)
	}
	if got, err := offerConn.ReadDatagram(ctx); err != nil || !bytes.Equal(got, reply) {
		t.Errorf("reverse read = %x, %v", got, err)
	}
}

// Compile-time interface check.
var _ datachannel.ReadWriteCloser = (*fakeDataChannel)(nil)

// fakeDataChannel stands in for a detached SCTP channel in
// channelConn tests. Inbound messages are queued on a channel; the
// queue's close error is what Read returns once drained.
type fakeDataChannel struct {
	inbound chan []byte
	readErr error

	mu      sync.Mutex
	written [][]byte

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeDataChannel() *fakeDataChannel {
	return &fakeDataChannel{
		inbound: make(chan []byte, 16),
		readErr: io.EOF,
		closed:  make(chan struct{}),
	}
}

func (f *fakeDataChannel) Read(p []byte) (int, error) {
	select {
	case message, ok := <-f.inbound:
		if !ok {
			return 0, f.readErr
		}
		return copy(p, message), nil
	case <-f.closed:
		return 0, io.EOF
	}
}

func (f *fakeDataChannel) ReadDataChannel(p []byte) (int, bool, error) {
	length, err := f.Read(p)
	return length, false, err
}

func (f *fakeDataChannel) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buffer := make([]byte, len(p))
	copy(buffer, p)
	f.written = append(f.written, buffer)
	return len(p), nil
}

func (f *fakeDataChannel) WriteDataChannel(p []byte, isString bool) (int, error) {
	return f.Write(p)
}

func (f *fakeDataChannel) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeDataChannel) writtenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

func TestChannelConnDeliversMessages(t *testing.T) {
	fake := newFakeDataChannel()
	fake.inbound <- []byte{1, 2, 3}
	fake.inbound <- []byte{4}

	conn := newChannelConn(fake)
	defer conn.Close()
	ctx := context.Background()

	for _, want := range [][]byte{{1, 2, 3}, {4}} {
		got, err := conn.ReadDatagram(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("read = %x, want %x", got, want)
		}
	}

	if err := conn.WriteDatagram(ctx, []byte{9, 9}); err != nil {
		t.Fatal(err)
	}
	if fake.writtenCount() != 1 {
		t.Errorf("wrote %d messages, want 1", fake.writtenCount())
	}
}

func TestChannelConnRejectsOversizeDatagram(t *testing.T) {
	fake := newFakeDataChannel()
	conn := newChannelConn(fake)
	defer conn.Close()

	payload := make([]byte, MaxDatagramSize+1)
	if err := conn.WriteDatagram(context.Background(), payload); err == nil {
		t.Error("oversize datagram accepted")
	}
	if fake.writtenCount() != 0 {
		t.Errorf("oversize datagram reached the channel, %d writes", fake.writtenCount())
	}
}

func TestChannelConnSurfacesReadFailure(t *testing.T) {
	fake := newFakeDataChannel()
	streamReset := errors.New("stream reset by peer")
	fake.readErr = streamReset
	close(fake.inbound)

	conn := newChannelConn(fake)
	defer conn.Close()

	_, err := conn.ReadDatagram(context.Background())
	if !errors.Is(err, streamReset) {
		t.Errorf("read error = %v, want wrapped stream reset", err)
	}
}

func TestChannelConnCloseUnblocksReader(t *testing.T) {
	fake := newFakeDataChannel()
	conn := newChannelConn(fake)

	done := make(chan error, 1)
	go func() {
		_, err := conn.ReadDatagram(context.Background())
		done <- err
	}()

	conn.Close()
	select {
	case err := <-done:
		if err == nil {
			t.Error("read on closed channel returned nil error")
		}
	case <-time.After(time.Second):
		t.Fatal("reader still blocked after close")
	}

	// Double close must not panic, and writes must fail afterwards.
	conn.Close()
	if err := conn.WriteDatagram(context.Background(), []byte{1}); err == nil {
		t.Error("write on closed channel returned nil error")
	}
}
