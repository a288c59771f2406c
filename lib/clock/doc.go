// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for the send scheduler. Production
// code injects Real(); tests inject Fake() and advance it manually,
// which makes retransmission timing deterministic without sleeping.
package clock
