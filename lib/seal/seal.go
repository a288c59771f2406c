// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size in bytes of the pre-shared key and of every
// derived transfer key.
const KeySize = 32

// envelopeVersion is the version byte prepended to every sealed
// payload. It is included as additional authenticated data, so
// tampering with it fails authentication rather than selecting a
// different parse.
const envelopeVersion byte = 0x01

// Overhead is the byte overhead per sealed payload:
// 1 (version) + 24 (XChaCha20-Poly1305 nonce) + 16 (Poly1305 tag).
const Overhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// hkdfInfoTransfer is the HKDF info prefix for per-transfer key
// derivation. Changing it invalidates every previously sealed
// payload.
var hkdfInfoTransfer = []byte("blobwire.seal.transfer.v1")

// DeriveTransferKey derives the sealing key for one transfer from
// the pre-shared key and the transfer ID. Binding the key to the
// transfer ID keeps nonce reuse harmless across transfers even with
// a repeated pre-shared key.
func DeriveTransferKey(presharedKey []byte, transferID uint16) ([]byte, error) {
	if len(presharedKey) != KeySize {
		return nil, fmt.Errorf("pre-shared key is %d bytes, want %d", len(presharedKey), KeySize)
	}

	info := make([]byte, len(hkdfInfoTransfer)+2)
	copy(info, hkdfInfoTransfer)
	binary.BigEndian.PutUint16(info[len(hkdfInfoTransfer):], transferID)

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, presharedKey, nil, info), key); err != nil {
		return nil, fmt.Errorf("deriving transfer key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under key and returns the envelope:
//
//	[version: 1 byte] [nonce: 24 bytes, random] [ciphertext+tag]
//
// The version byte is authenticated as AAD.
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("initializing seal cipher: %w", err)
	}

	envelope := make([]byte, 1+chacha20poly1305.NonceSizeX, len(plaintext)+Overhead)
	envelope[0] = envelopeVersion
	nonce := envelope[1:]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating seal nonce: %w", err)
	}

	return aead.Seal(envelope, nonce, plaintext, envelope[:1]), nil
}

// Open authenticates and decrypts a sealed envelope produced by
// Seal. Any modification to the envelope — version byte, nonce, or
// ciphertext — fails authentication.
func Open(key, envelope []byte) ([]byte, error) {
	if len(envelope) < Overhead {
		return nil, fmt.Errorf("sealed payload is %d bytes, minimum %d", len(envelope), Overhead)
	}
	if envelope[0] != envelopeVersion {
		return nil, fmt.Errorf("unsupported seal envelope version 0x%02x", envelope[0])
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("initializing seal cipher: %w", err)
	}

	nonce := envelope[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := envelope[1+chacha20poly1305.NonceSizeX:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, envelope[:1])
	if err != nil {
		return nil, fmt.Errorf("opening sealed payload: %w", err)
	}
	return plaintext, nil
}
