// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package send implements the sending side of the transfer
// protocol. Logic decides which chunks to transmit — filling a
// bounded in-flight window lowest-index-first and retransmitting
// chunks whose ack is overdue — and applies incoming acks. Front
// wraps it with the session handshake: StartTransfer is repeated
// until the receiver acknowledges it, then chunks flow until every
// one is acked.
package send
