// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package receive implements the receiving side of the transfer
// protocol. Logic assembles one blob and computes acknowledgements;
// Front manages the transfer session around it — start and restart
// handling, transfer ID matching, and manifest exposure.
package receive
