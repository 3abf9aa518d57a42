// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindBytes
	KindDate
	KindObject
	KindArray
)

// String returns the lower-case name of the kind.
func (kind Kind) String() string {
	switch kind {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDate:
		return "date"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("unknown(%d)", kind)
	}
}

// IsScalar reports whether values of this kind have no children.
func (kind Kind) IsScalar() bool {
	return kind != KindObject && kind != KindArray
}

// Value is one position in a document tree. The zero Value is null.
type Value struct {
	kind Kind

	boolean  bool
	integer  int64
	float    float64
	text     string
	raw      []byte
	date     time.Time
	members  []Member
	elements []Value
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Field is shorthand for constructing a [Member].
func Field(key string, value Value) Member {
	return Member{Key: key, Value: value}
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(value bool) Value { return Value{kind: KindBool, boolean: value} }

// Integer returns a signed 64-bit integer value.
func Integer(value int64) Value { return Value{kind: KindInteger, integer: value} }

// Float returns a 64-bit floating-point value.
func Float(value float64) Value { return Value{kind: KindFloat, float: value} }

// String returns a string value.
func String(value string) Value { return Value{kind: KindString, text: value} }

// Bytes returns a raw byte-string value. The slice is not copied.
func Bytes(value []byte) Value { return Value{kind: KindBytes, raw: value} }

// Date returns a date value.
func Date(value time.Time) Value { return Value{kind: KindDate, date: value} }

// Object returns an object holding members in the given order. Duplicate
// keys are kept as given; [Value.Get] returns the first match.
func Object(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{kind: KindObject, members: members}
}

// Array returns an array holding elements in the given order.
func Array(elements ...Value) Value {
	if elements == nil {
		elements = []Value{}
	}
	return Value{kind: KindArray, elements: elements}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolValue returns the boolean held by v, or false for other kinds.
func (v Value) BoolValue() bool { return v.boolean }

// IntegerValue returns the integer held by v, or 0 for other kinds.
func (v Value) IntegerValue() int64 { return v.integer }

// FloatValue returns the float held by v, or 0 for other kinds.
func (v Value) FloatValue() float64 { return v.float }

// StringValue returns the string held by v, or "" for other kinds.
func (v Value) StringValue() string { return v.text }

// BytesValue returns the byte string held by v, or nil for other kinds.
func (v Value) BytesValue() []byte { return v.raw }

// DateValue returns the date held by v, or the zero time for other kinds.
func (v Value) DateValue() time.Time { return v.date }

// Members returns the members of an object in order. The returned slice
// must not be modified.
func (v Value) Members() []Member { return v.members }

// Elements returns the elements of an array in order. The returned slice
// must not be modified.
func (v Value) Elements() []Value { return v.elements }

// Len returns the number of members or elements, and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.members)
	case KindArray:
		return len(v.elements)
	default:
		return 0
	}
}

// Get returns the first member of an object named key.
func (v Value) Get(key string) (Value, bool) {
	for _, member := range v.members {
		if member.Key == key {
			return member.Value, true
		}
	}
	return Value{}, false
}

// Index returns the array element at index.
func (v Value) Index(index int) (Value, bool) {
	if v.kind != KindArray || index < 0 || index >= len(v.elements) {
		return Value{}, false
	}
	return v.elements[index], true
}

// Depth returns the number of nested values on the longest path from v
// to a leaf, counting v itself. A scalar has depth 1.
func (v Value) Depth() int {
	deepest := 0
	switch v.kind {
	case KindObject:
		for _, member := range v.members {
			deepest = max(deepest, member.Value.Depth())
		}
	case KindArray:
		for _, element := range v.elements {
			deepest = max(deepest, element.Depth())
		}
	}
	return deepest + 1
}

// String renders v in a compact JSON-like notation for logs and test
// failure messages. It is not a serialization format.
func (v Value) String() string {
	var builder strings.Builder
	v.writeTo(&builder)
	return builder.String()
}

func (v Value) writeTo(builder *strings.Builder) {
	switch v.kind {
	case KindNull:
		builder.WriteString("null")
	case KindBool:
		builder.WriteString(strconv.FormatBool(v.boolean))
	case KindInteger:
		builder.WriteString(strconv.FormatInt(v.integer, 10))
	case KindFloat:
		builder.WriteString(strconv.FormatFloat(v.float, 'g', -1, 64))
	case KindString:
		builder.WriteString(strconv.Quote(v.text))
	case KindBytes:
		fmt.Fprintf(builder, "h'%x'", v.raw)
	case KindDate:
		builder.WriteString(v.date.Format(time.RFC3339Nano))
	case KindObject:
		builder.WriteByte('{')
		for index, member := range v.members {
			if index > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(strconv.Quote(member.Key))
			builder.WriteString(": ")
			member.Value.writeTo(builder)
		}
		builder.WriteByte('}')
	case KindArray:
		builder.WriteByte('[')
		for index, element := range v.elements {
			if index > 0 {
				builder.WriteString(", ")
			}
			element.writeTo(builder)
		}
		builder.WriteByte(']')
	}
}

// Equal reports whether a and b hold the same tree: same kinds, same
// scalar values, same member keys in the same order, same elements in the
// same order. Dates compare by instant, floats by bit pattern so that NaN
// equals itself.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindInteger:
		return a.integer == b.integer
	case KindFloat:
		return math.Float64bits(a.float) == math.Float64bits(b.float)
	case KindString:
		return a.text == b.text
	case KindBytes:
		return bytes.Equal(a.raw, b.raw)
	case KindDate:
		return a.date.Equal(b.date)
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for index := range a.members {
			if a.members[index].Key != b.members[index].Key {
				return false
			}
			if !Equal(a.members[index].Value, b.members[index].Value) {
				return false
			}
		}
		return true
	case KindArray:
		if len(a.elements) != len(b.elements) {
			return false
		}
		for index := range a.elements {
			if !Equal(a.elements[index], b.elements[index]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
