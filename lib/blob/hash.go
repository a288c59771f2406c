// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Keying ties
// a hash to the blobwire blob domain, so the same bytes hashed by
// another protocol can never collide with a transfer manifest hash.
type domainKey [32]byte

// blobDomainKey is a protocol constant — changing it invalidates
// every previously computed manifest hash. The byte value is the
// ASCII domain name zero-padded to 32 bytes, which keeps the key
// readable in hex dumps without weakening the keyed mode (the key
// is an opaque 32-byte value to BLAKE3).
var blobDomainKey = domainKey{
	'b', 'l', 'o', 'b', 'w', 'i', 'r', 'e', '.', 'b', 'l', 'o', 'b',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashBlob computes the blob-domain BLAKE3 keyed hash of the entire
// blob. This is the integrity hash carried in the transfer manifest
// and verified by the receiver after reassembly. It is always
// computed over the original, uncompressed and unsealed bytes.
func HashBlob(data []byte) Hash {
	return keyedHash(blobDomainKey, data)
}

// FormatHash returns the hex-encoded string form of a hash. This is
// the canonical format used in manifests, logs, and CLI output.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing blob hash: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("blob hash is %d bytes, want 32", len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// keyedHash computes the BLAKE3 keyed hash with the given domain key.
func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed only fails for a wrong key length, which the
	// fixed-size domainKey type rules out.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("blob: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
