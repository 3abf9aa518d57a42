// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress wraps converted documents in a zstd or LZ4 frame.
// Frames are self-describing: [Decompress] recognizes either by its
// magic number, so compressed files need no side channel to record the
// algorithm.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies a compression frame format.
type Algorithm uint8

const (
	// None leaves data unchanged.
	None Algorithm = iota

	// LZ4 is the LZ4 frame format. Fast, with a modest ratio.
	LZ4

	// Zstd is a zstd frame at the default level. Better ratios on the
	// repetitive text formats (JSON, YAML) this tool emits.
	Zstd
)

// Auto is not an algorithm: it asks [CompressAuto] to probe the data and
// pick one.
const Auto = "auto"

// MaxDecompressedSize bounds the output of Decompress, so a small
// malicious frame cannot exhaust memory.
const MaxDecompressedSize = 1 << 30

// Frame magic numbers, as they appear on the wire.
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// ErrTooLarge is returned when a frame decompresses to more than
// MaxDecompressedSize bytes.
var ErrTooLarge = errors.New("decompressed data exceeds size limit")

// String returns the name used in flags and config.
func (algorithm Algorithm) String() string {
	switch algorithm {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", algorithm)
	}
}

// Extension returns the file suffix conventionally added for the
// algorithm, or "" for None.
func (algorithm Algorithm) Extension() string {
	switch algorithm {
	case LZ4:
		return ".lz4"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// Parse parses an algorithm name. The empty string means None.
func Parse(name string) (Algorithm, error) {
	switch name {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression algorithm %q (want none, lz4, zstd or auto)", name)
	}
}

// zstdEncoder and zstdDecoder are shared; both are safe for concurrent
// use through EncodeAll and DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(MaxDecompressedSize),
	)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress wraps data in a frame of the given algorithm. None returns
// data unchanged, without copying.
func Compress(data []byte, algorithm Algorithm) ([]byte, error) {
	switch algorithm {
	case None:
		return data, nil
	case LZ4:
		return compressLZ4(data)
	case Zstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm %d", algorithm)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buffer.Bytes(), nil
}

// Detect returns the algorithm whose frame magic opens data, or None.
func Detect(data []byte) Algorithm {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4
	default:
		return None
	}
}

// Decompress unwraps a zstd or LZ4 frame and reports which it was.
// Data without a recognized frame magic is returned unchanged with
// None.
func Decompress(data []byte) ([]byte, Algorithm, error) {
	algorithm := Detect(data)
	switch algorithm {
	case Zstd:
		result, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
				return nil, algorithm, fmt.Errorf("zstd decompress: %w", ErrTooLarge)
			}
			return nil, algorithm, fmt.Errorf("zstd decompress: %w", err)
		}
		return result, algorithm, nil
	case LZ4:
		result, err := decompressLZ4(data)
		return result, algorithm, err
	default:
		return data, None, nil
	}
}

func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	result, err := io.ReadAll(io.LimitReader(reader, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if len(result) > MaxDecompressedSize {
		return nil, fmt.Errorf("lz4 decompress: %w", ErrTooLarge)
	}
	return result, nil
}

// Select probes data to pick an algorithm: zstd when it shrinks the
// data by at least a third, LZ4 when zstd manages only 10%, None below
// that.
func Select(data []byte) Algorithm {
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

// CompressAuto compresses with the algorithm Select picks, falling back
// to None if the framed output would not be smaller than the input.
func CompressAuto(data []byte) ([]byte, Algorithm, error) {
	algorithm := Select(data)
	compressed, err := Compress(data, algorithm)
	if err != nil {
		return nil, 0, err
	}
	if algorithm != None && len(compressed) >= len(data) {
		return data, None, nil
	}
	return compressed, algorithm, nil
}
