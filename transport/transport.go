// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"time"
)

// MaxDatagramSize bounds a single encoded command. The largest
// command is a full SetChunk: header plus the maximum chunk payload,
// comfortably under 64 KiB.
const MaxDatagramSize = 64 * 1024

// Datagram is a message-oriented connection carrying whole encoded
// commands. Each WriteDatagram transmits one command and each
// ReadDatagram returns one. Implementations may drop, duplicate, or
// reorder datagrams.
type Datagram interface {
	// WriteDatagram transmits one command. The payload must not
	// exceed MaxDatagramSize.
	WriteDatagram(ctx context.Context, payload []byte) error

	// ReadDatagram blocks until one command arrives, the context is
	// done, or the connection is closed.
	ReadDatagram(ctx context.Context) ([]byte, error)

	// Close releases the connection. Pending reads and writes
	// return errors.
	Close() error
}

// watchContext applies the context's deadline to a pending read and
// forces an immediate deadline if the context is cancelled mid-read.
// The returned stop function must be called once the read finishes.
func watchContext(ctx context.Context, setDeadline func(time.Time) error) func() {
	if deadline, ok := ctx.Deadline(); ok {
		setDeadline(deadline)
	} else {
		setDeadline(time.Time{})
	}
	cancelWatch := context.AfterFunc(ctx, func() {
		// A deadline in the past unblocks the pending operation.
		setDeadline(time.Unix(0, 1))
	})
	return func() {
		cancelWatch()
		setDeadline(time.Time{})
	}
}

// contextError substitutes the context's error for a
// deadline-exceeded error that watchContext provoked.
func contextError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
