// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf8"
)

// StringTable deduplicates every string a document references: node
// names, attribute keys and values, and string scalars. Indices are
// assigned in insertion order starting at 0 and never change.
type StringTable struct {
	index   map[string]uint16
	strings []string
}

// NewStringTable returns an empty table.
func NewStringTable() *StringTable {
	return &StringTable{index: make(map[string]uint16)}
}

// Add returns the index of s, appending it if this is the first time
// the table has seen it. Matching is byte-for-byte.
func (t *StringTable) Add(s string) (uint16, error) {
	if existing, ok := t.index[s]; ok {
		return existing, nil
	}
	if len(s) > math.MaxUint16 {
		return 0, &EncodeError{Kind: ErrStringTooLong, Detail: describeLength(len(s))}
	}
	if len(t.strings) >= math.MaxUint16 {
		return 0, &EncodeError{Kind: ErrTooManyStrings, Detail: "string table holds 65535 entries"}
	}
	index := uint16(len(t.strings))
	t.index[s] = index
	t.strings = append(t.strings, s)
	return index, nil
}

// Lookup returns the string at index.
func (t *StringTable) Lookup(index uint16) (string, bool) {
	if int(index) >= len(t.strings) {
		return "", false
	}
	return t.strings[index], true
}

// IndexOf returns the index of s if the table holds it.
func (t *StringTable) IndexOf(s string) (uint16, bool) {
	index, ok := t.index[s]
	return index, ok
}

// Len returns the number of entries.
func (t *StringTable) Len() int { return len(t.strings) }

// Strings returns a copy of the entries in index order.
func (t *StringTable) Strings() []string { return slices.Clone(t.strings) }

// EncodedSize returns the number of bytes the serialized table occupies.
func (t *StringTable) EncodedSize() int {
	size := 2
	for _, s := range t.strings {
		size += 2 + len(s)
	}
	return size
}

// appendTo serializes the table: a u16 count, then per entry a u16 byte
// length followed by the UTF-8 bytes.
func (t *StringTable) appendTo(buffer []byte, order byteOrder) []byte {
	buffer = order.AppendUint16(buffer, uint16(len(t.strings)))
	for _, s := range t.strings {
		buffer = order.AppendUint16(buffer, uint16(len(s)))
		buffer = append(buffer, s...)
	}
	return buffer
}

// readStringTable is the exact inverse of appendTo. Limits are checked
// as soon as the field that could violate them has been read, so an
// oversized table is rejected before its entries are consumed.
func readStringTable(c *cursor, limits Limits, mode Mode) (*StringTable, error) {
	countOffset := c.offset
	count, err := c.uint16("string table count")
	if err != nil {
		return nil, err
	}
	if int(count) > limits.MaxStrings {
		return nil, formatError(ErrTooManyStrings, countOffset,
			"table declares %d strings, limit is %d", count, limits.MaxStrings)
	}

	table := &StringTable{
		index:   make(map[string]uint16, count),
		strings: make([]string, 0, count),
	}
	for entry := range int(count) {
		lengthOffset := c.offset
		length, err := c.uint16("string length")
		if err != nil {
			return nil, err
		}
		if int(length) > limits.MaxStringLength {
			return nil, formatError(ErrStringTooLong, lengthOffset,
				"string %d declares %d bytes, limit is %d", entry, length, limits.MaxStringLength)
		}
		raw, err := c.bytes(int(length), "string bytes")
		if err != nil {
			return nil, err
		}
		if mode == Strict && !utf8.Valid(raw) {
			return nil, formatError(ErrMalformed, lengthOffset+2, "string %d is not valid UTF-8", entry)
		}
		s := string(raw)
		if _, duplicate := table.index[s]; duplicate {
			if mode == Strict {
				return nil, formatError(ErrMalformed, lengthOffset, "string %d duplicates an earlier entry", entry)
			}
		} else {
			table.index[s] = uint16(entry)
		}
		table.strings = append(table.strings, s)
	}
	return table, nil
}

func describeLength(length int) string {
	return fmt.Sprintf("string of %d bytes exceeds the 65535-byte length field", length)
}
