// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import (
	"fmt"
	"math"
	"time"

	"github.com/bureau-foundation/bxml/lib/token"
)

// ValueTag identifies the payload layout of a scalar value. Tags are
// wire constants: renumbering them breaks every existing document.
type ValueTag uint8

const (
	// TagNull has no payload. Containers carry it as their value.
	TagNull ValueTag = 0

	// TagString is a u16 string-table index.
	TagString ValueTag = 1

	// TagUint8 is one unsigned byte.
	TagUint8 ValueTag = 2

	// TagInt16 is a signed 16-bit integer.
	TagInt16 ValueTag = 3

	// TagInt32 is a signed 32-bit integer.
	TagInt32 ValueTag = 4

	// TagInt64 is a signed 64-bit integer.
	TagInt64 ValueTag = 5

	// TagFloat32 is an IEEE 754 single, written only when it holds the
	// original double exactly.
	TagFloat32 ValueTag = 6

	// TagFloat64 is an IEEE 754 double.
	TagFloat64 ValueTag = 7

	// TagBool is one byte, 0 or 1.
	TagBool ValueTag = 8

	// TagDate is signed 64-bit Unix seconds followed by unsigned 32-bit
	// nanoseconds, always UTC.
	TagDate ValueTag = 9

	// TagBytes is an unsigned 32-bit length followed by that many raw
	// bytes.
	TagBytes ValueTag = 10

	maxValueTag = TagBytes
)

// String returns the tag's short name.
func (tag ValueTag) String() string {
	switch tag {
	case TagNull:
		return "null"
	case TagString:
		return "string"
	case TagUint8:
		return "u8"
	case TagInt16:
		return "i16"
	case TagInt32:
		return "i32"
	case TagInt64:
		return "i64"
	case TagFloat32:
		return "f32"
	case TagFloat64:
		return "f64"
	case TagBool:
		return "bool"
	case TagDate:
		return "date"
	case TagBytes:
		return "bytes"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// scalar is one encoded value: the tag plus whichever payload field the
// tag selects.
type scalar struct {
	tag     ValueTag
	integer int64
	float   float64
	index   uint16
	boolean bool
	date    time.Time
	raw     []byte
}

// integerTag returns the narrowest tag that holds value losslessly:
// unsigned byte first, then signed 16, 32 and 64 bits.
func integerTag(value int64) ValueTag {
	switch {
	case value >= 0 && value <= math.MaxUint8:
		return TagUint8
	case value >= math.MinInt16 && value <= math.MaxInt16:
		return TagInt16
	case value >= math.MinInt32 && value <= math.MaxInt32:
		return TagInt32
	default:
		return TagInt64
	}
}

// floatTag returns TagFloat32 when narrowing to 32 bits and widening back
// reproduces the exact bit pattern, TagFloat64 otherwise.
func floatTag(value float64) ValueTag {
	narrowed := float32(value)
	if math.Float64bits(float64(narrowed)) == math.Float64bits(value) {
		return TagFloat32
	}
	return TagFloat64
}

// integerTypeName is "int" for values that fit 32 bits and "long" for the
// rest.
func integerTypeName(value int64) string {
	if value >= math.MinInt32 && value <= math.MaxInt32 {
		return typeInt
	}
	return typeLong
}

// appendScalar writes the tag byte and the payload.
func appendScalar(buffer []byte, value scalar, order byteOrder) []byte {
	buffer = append(buffer, byte(value.tag))
	switch value.tag {
	case TagNull:
	case TagString:
		buffer = order.AppendUint16(buffer, value.index)
	case TagUint8:
		buffer = append(buffer, uint8(value.integer))
	case TagInt16:
		buffer = order.AppendUint16(buffer, uint16(int16(value.integer)))
	case TagInt32:
		buffer = order.AppendUint32(buffer, uint32(int32(value.integer)))
	case TagInt64:
		buffer = order.AppendUint64(buffer, uint64(value.integer))
	case TagFloat32:
		buffer = order.AppendUint32(buffer, math.Float32bits(float32(value.float)))
	case TagFloat64:
		buffer = order.AppendUint64(buffer, math.Float64bits(value.float))
	case TagBool:
		if value.boolean {
			buffer = append(buffer, 1)
		} else {
			buffer = append(buffer, 0)
		}
	case TagDate:
		buffer = order.AppendUint64(buffer, uint64(value.date.Unix()))
		buffer = order.AppendUint32(buffer, uint32(value.date.Nanosecond()))
	case TagBytes:
		buffer = order.AppendUint32(buffer, uint32(len(value.raw)))
		buffer = append(buffer, value.raw...)
	}
	return buffer
}

// readScalar decodes one tag and payload. String indices are checked
// against table; raw byte lengths against limits.
func readScalar(c *cursor, table *StringTable, limits Limits, mode Mode) (scalar, error) {
	tagOffset := c.offset
	rawTag, err := c.uint8("value tag")
	if err != nil {
		return scalar{}, err
	}
	tag := ValueTag(rawTag)
	value := scalar{tag: tag}

	switch tag {
	case TagNull:

	case TagString:
		indexOffset := c.offset
		index, err := c.uint16("string value index")
		if err != nil {
			return scalar{}, err
		}
		if int(index) >= table.Len() {
			return scalar{}, formatError(ErrIndexOutOfRange, indexOffset,
				"string value index %d, table holds %d", index, table.Len())
		}
		value.index = index

	case TagUint8:
		raw, err := c.uint8("u8 value")
		if err != nil {
			return scalar{}, err
		}
		value.integer = int64(raw)

	case TagInt16:
		raw, err := c.uint16("i16 value")
		if err != nil {
			return scalar{}, err
		}
		value.integer = int64(int16(raw))

	case TagInt32:
		raw, err := c.uint32("i32 value")
		if err != nil {
			return scalar{}, err
		}
		value.integer = int64(int32(raw))

	case TagInt64:
		raw, err := c.uint64("i64 value")
		if err != nil {
			return scalar{}, err
		}
		value.integer = int64(raw)

	case TagFloat32:
		raw, err := c.uint32("f32 value")
		if err != nil {
			return scalar{}, err
		}
		value.float = float64(math.Float32frombits(raw))

	case TagFloat64:
		raw, err := c.uint64("f64 value")
		if err != nil {
			return scalar{}, err
		}
		value.float = math.Float64frombits(raw)

	case TagBool:
		payloadOffset := c.offset
		raw, err := c.uint8("bool value")
		if err != nil {
			return scalar{}, err
		}
		if raw > 1 && mode == Strict {
			return scalar{}, formatError(ErrMalformed, payloadOffset, "bool payload %d is neither 0 nor 1", raw)
		}
		value.boolean = raw != 0

	case TagDate:
		seconds, err := c.uint64("date seconds")
		if err != nil {
			return scalar{}, err
		}
		nanosOffset := c.offset
		nanos, err := c.uint32("date nanoseconds")
		if err != nil {
			return scalar{}, err
		}
		if nanos >= uint32(time.Second) {
			return scalar{}, formatError(ErrMalformed, nanosOffset, "date nanoseconds %d out of range", nanos)
		}
		value.date = time.Unix(int64(seconds), int64(nanos)).UTC()

	case TagBytes:
		lengthOffset := c.offset
		length, err := c.uint32("bytes length")
		if err != nil {
			return scalar{}, err
		}
		if uint64(length) > uint64(limits.MaxBytesLength) {
			return scalar{}, formatError(ErrBytesTooLong, lengthOffset,
				"byte value declares %d bytes, limit is %d", length, limits.MaxBytesLength)
		}
		raw, err := c.bytes(int(length), "bytes payload")
		if err != nil {
			return scalar{}, err
		}
		value.raw = append([]byte(nil), raw...)

	default:
		return scalar{}, formatError(ErrUnknownValueTag, tagOffset, "value tag %d", rawTag)
	}
	return value, nil
}

// naturalToken converts a scalar to the token its tag implies, ignoring
// any type attribute.
func naturalToken(value scalar, table *StringTable) token.Value {
	switch value.tag {
	case TagString:
		text, _ := table.Lookup(value.index)
		return token.String(text)
	case TagUint8, TagInt16, TagInt32, TagInt64:
		return token.Integer(value.integer)
	case TagFloat32, TagFloat64:
		return token.Float(value.float)
	case TagBool:
		return token.Bool(value.boolean)
	case TagDate:
		return token.Date(value.date)
	case TagBytes:
		return token.Bytes(value.raw)
	default:
		return token.Null()
	}
}

// tagMatchesType reports whether a value tag is the one the writer
// produces for a node of typeName.
func tagMatchesType(tag ValueTag, typeName string) bool {
	switch typeName {
	case typeString:
		return tag == TagString
	case typeInt, typeLong:
		return tag >= TagUint8 && tag <= TagInt64
	case typeFloat:
		return tag == TagFloat32 || tag == TagFloat64
	case typeBool:
		return tag == TagBool
	case typeDate:
		return tag == TagDate
	case typeBytes:
		return tag == TagBytes
	case typeNull, typeObject, typeArray:
		return tag == TagNull
	default:
		return false
	}
}

// typedToken converts a scalar under the node's declared type. Integer
// payloads under a "float" type widen to floats; every other mismatch
// falls back to the tag's natural token and is reported to the caller,
// which decides whether that is acceptable for its mode.
func typedToken(value scalar, typeName string, table *StringTable) (token.Value, bool) {
	if tagMatchesType(value.tag, typeName) {
		return naturalToken(value, table), true
	}
	if typeName == typeFloat && value.tag >= TagUint8 && value.tag <= TagInt64 {
		return token.Float(float64(value.integer)), false
	}
	return naturalToken(value, table), false
}
