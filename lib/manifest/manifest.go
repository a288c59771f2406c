// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"

	"github.com/blobwire/blobwire/lib/blob"
	"github.com/blobwire/blobwire/lib/codec"
	"github.com/blobwire/blobwire/lib/compress"
)

// Manifest describes the blob a transfer delivers. It is encoded as
// deterministic CBOR, so retransmitted StartTransfer datagrams for
// the same transfer are byte-identical.
//
// The json tags are the CBOR library's fallback and feed debugging
// output.
type Manifest struct {
	// Name is the blob's name at the sender, usually a file name.
	Name string `cbor:"name,omitempty" json:"name,omitempty"`

	// ContentType is the blob's MIME type, when known. It steers
	// compression selection on the sender and is informational on
	// the receiver.
	ContentType string `cbor:"content_type,omitempty" json:"content_type,omitempty"`

	// BlobHash is the hex-encoded blob-domain BLAKE3 hash of the
	// original bytes — before compression and sealing. The receiver
	// verifies it after reversing both.
	BlobHash string `cbor:"blob_hash" json:"blob_hash"`

	// Compression is the tag applied to the blob before transfer
	// ("none", "lz4", "zstd").
	Compression string `cbor:"compression" json:"compression"`

	// Sealed reports whether the (compressed) payload was sealed
	// with the pre-shared key.
	Sealed bool `cbor:"sealed,omitempty" json:"sealed,omitempty"`

	// OriginalSize is the blob's size before compression and
	// sealing.
	OriginalSize uint64 `cbor:"original_size" json:"original_size"`

	// TransferSize is the payload size actually on the wire — after
	// compression and sealing. It matches the StartTransfer
	// totalOctetSize field; the duplication lets the receiver
	// cross-check the two paths the value travels.
	TransferSize uint64 `cbor:"transfer_size" json:"transfer_size"`
}

// Hash returns the decoded blob hash.
func (m *Manifest) Hash() (blob.Hash, error) {
	return blob.ParseHash(m.BlobHash)
}

// CompressionTag returns the decoded compression tag.
func (m *Manifest) CompressionTag() (compress.Tag, error) {
	return compress.ParseTag(m.Compression)
}

// Encode returns the manifest's deterministic CBOR bytes.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := codec.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// Decode parses and validates a manifest from CBOR bytes.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if _, err := m.Hash(); err != nil {
		return nil, fmt.Errorf("manifest blob hash: %w", err)
	}
	if _, err := m.CompressionTag(); err != nil {
		return nil, fmt.Errorf("manifest compression: %w", err)
	}
	return &m, nil
}
