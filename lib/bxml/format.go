// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import (
	"encoding/binary"
	"fmt"
)

// Wire constants. Changing any of these breaks every existing document.
const (
	// Magic opens every document.
	Magic = "BXML"

	// FooterMagic closes every document.
	FooterMagic = "EOFB"

	// Version is the only layout version this codec writes and reads.
	Version uint8 = 1

	// FlagCompressedArrays is set when the writer was allowed to emit
	// compressed arrays.
	FlagCompressedArrays uint8 = 1 << 0

	// FlagBigEndian is set when every multi-byte field is big-endian.
	FlagBigEndian uint8 = 1 << 1

	knownFlags = FlagCompressedArrays | FlagBigEndian

	// headerSize is magic, version, flags and the reserved u16.
	headerSize = 8

	// nodeTag opens every serialized node.
	nodeTag uint8 = 1

	// compressedArrayBit marks a child count as a compressed array.
	compressedArrayBit uint16 = 0x8000

	// maxChildCount is what remains of the child count field once the
	// compressed-array bit is taken.
	maxChildCount = 0x7FFF

	// maxElementTypeIndex is the largest string index the one-byte
	// element type field of a compressed array can carry.
	maxElementTypeIndex = 0xFF

	// typeAttribute is the key of the synthetic attribute every node
	// carries.
	typeAttribute = "type"

	// itemName names array elements and reconstructed compressed-array
	// children.
	itemName = "item"

	// DefaultRootName names the root node when the caller gives none.
	DefaultRootName = "root"
)

// ByteOrder selects the endianness of every multi-byte field.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// String returns "little" or "big".
func (order ByteOrder) String() string {
	switch order {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("unknown(%d)", order)
	}
}

// ParseByteOrder parses "little" or "big".
func ParseByteOrder(name string) (ByteOrder, error) {
	switch name {
	case "little", "little-endian", "le":
		return LittleEndian, nil
	case "big", "big-endian", "be":
		return BigEndian, nil
	default:
		return 0, fmt.Errorf("unknown byte order %q (want little or big)", name)
	}
}

// byteOrder is what the codec needs from encoding/binary: reads and
// appends. binary.LittleEndian and binary.BigEndian both satisfy it.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (order ByteOrder) binary() byteOrder {
	if order == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Header is the fixed eight-byte document preamble.
type Header struct {
	Version          uint8
	Flags            uint8
	Reserved         uint16
	CompressedArrays bool
	ByteOrder        ByteOrder
}

func headerFlags(compressArrays bool, order ByteOrder) uint8 {
	var flags uint8
	if compressArrays {
		flags |= FlagCompressedArrays
	}
	if order == BigEndian {
		flags |= FlagBigEndian
	}
	return flags
}

// Type names carried in every node's "type" attribute.
const (
	typeObject = "object"
	typeArray  = "array"
	typeString = "string"
	typeInt    = "int"
	typeLong   = "long"
	typeFloat  = "float"
	typeBool   = "bool"
	typeDate   = "date"
	typeNull   = "null"
	typeBytes  = "bytes"
)

func isScalarTypeName(name string) bool {
	switch name {
	case typeString, typeInt, typeLong, typeFloat, typeBool, typeDate, typeNull, typeBytes:
		return true
	default:
		return false
	}
}

func isKnownTypeName(name string) bool {
	return name == typeObject || name == typeArray || isScalarTypeName(name)
}
