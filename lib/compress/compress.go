// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the compression algorithm applied to a blob. Tags
// travel in the transfer manifest — changing these values breaks
// wire compatibility with older peers.
type Tag uint8

const (
	// None indicates uncompressed data. Used for already-compressed
	// content where compression adds CPU cost without reducing size.
	None Tag = 0

	// LZ4 indicates LZ4 block compression. Fast default for binary
	// data when content type is unknown or mixed.
	LZ4 Tag = 1

	// Zstd indicates zstd at the default level. Better ratios for
	// text-like content.
	Zstd Tag = 2
)

// String returns the tag's human-readable name.
func (tag Tag) String() string {
	switch tag {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseTag parses a tag from its string form.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// errIncompressible is returned when compressed output would not be
// smaller than the input.
var errIncompressible = errors.New("data is incompressible")

// IsIncompressible reports whether err indicates the data could not
// be compressed below its original size.
func IsIncompressible(err error) bool {
	return errors.Is(err, errIncompressible)
}

// zstdEncoder and zstdDecoder are shared across calls — both are
// safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses data with the given algorithm. For None the
// input is returned unchanged without a copy. LZ4 and Zstd return
// an incompressible error (see IsIncompressible) when the output
// would not shrink — callers fall back to None.
func Compress(data []byte, tag Tag) ([]byte, error) {
	switch tag {
	case None:
		return data, nil
	case LZ4:
		return compressLZ4(data)
	case Zstd:
		return compressZstd(data)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// Decompress reverses Compress. The originalSize must match the
// pre-compression length exactly; a mismatch is an error rather
// than a silent short blob.
func Decompress(compressed []byte, tag Tag, originalSize int) ([]byte, error) {
	switch tag {
	case None:
		if len(compressed) != originalSize {
			return nil, fmt.Errorf("uncompressed blob: size %d does not match expected %d",
				len(compressed), originalSize)
		}
		return compressed, nil
	case LZ4:
		return decompressLZ4(compressed, originalSize)
	case Zstd:
		return decompressZstd(compressed, originalSize)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// Auto compresses data with the algorithm Select picks for the
// content type, falling back to None when the data is
// incompressible. Returns the output and the tag actually used.
func Auto(data []byte, contentType string) ([]byte, Tag, error) {
	tag := Select(data, contentType)
	compressed, err := Compress(data, tag)
	if err != nil {
		if IsIncompressible(err) {
			return data, None, nil
		}
		return nil, 0, err
	}
	return compressed, tag, nil
}

// Select probes data to choose a compression algorithm: zstd above
// a 1.5x probe ratio, LZ4 between 1.1x and 1.5x, None below.
// Known-compressible content types short-circuit the probe.
func Select(data []byte, contentType string) Tag {
	switch contentType {
	case "text/plain", "text/html", "text/css", "text/csv",
		"text/xml", "text/markdown",
		"application/json", "application/x-ndjson",
		"application/xml":
		return Zstd
	}

	if len(data) == 0 {
		return None
	}

	compressed := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(compressed))
	switch {
	case ratio >= 1.5:
		return Zstd
	case ratio >= 1.1:
		return LZ4
	default:
		return None
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for data it deems incompressible.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, originalSize int) ([]byte, error) {
	destination := make([]byte, originalSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != originalSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, originalSize)
	}
	return destination, nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, originalSize int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, originalSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != originalSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), originalSize)
	}
	return result, nil
}
