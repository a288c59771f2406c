// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport carries encoded protocol commands between the
// sender and the receiver. The Datagram interface is
// message-oriented: one WriteDatagram per command, one command per
// ReadDatagram. The protocol layer tolerates loss, duplication and
// reordering, so datagram implementations make no delivery promises.
//
//   - udp.go: plain UDP, one command per packet
//   - stream.go: length-framed commands over a byte stream (TCP)
//   - webrtc.go: pion data channels with manual SDP exchange
//   - memory.go: in-process pair for tests, with loss injection
package transport
