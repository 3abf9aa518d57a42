// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bxml implements BXML, a compact length-prefixed binary
// encoding of [token.Value] trees.
//
// A document is a fixed header, a deduplicated string table, one root
// node, and a footer:
//
//	Header:      "BXML" | version:u8 | flags:u8 | reserved:u16
//	StringTable: count:u16 | { length:u16, utf8-bytes }*count
//	Node:        tag:u8(=1) | name:u16 | attr_count:u16 | { key:u16, value:u16 }*attr_count
//	             | value_tag:u8 | payload
//	             | child_count:u16 (bit 15 = compressed array)
//	             | children, or elem_type:u8 followed by child_count bare values
//	Footer:      "EOFB"
//
// Flags bit 0 records that the writer was allowed to compress arrays;
// bit 1 selects big-endian for every multi-byte field in the document,
// including table lengths and counts. Every string (node names, the
// "type" attribute key and its values, string scalars) is stored once in
// the table and referenced by a 16-bit index.
//
// Every node carries a single "type" attribute naming how to read it:
// object, array, string, int, long, float, bool, date, null or bytes.
// Objects hold one child per member, named by the member key. Arrays
// hold one child per element, named "item", except that a non-empty
// array whose elements are all scalars of the same kind is written as a
// compressed array: the element type is given once and each element is
// only its value tag and payload.
//
// Integers are written in the narrowest of u8, i16, i32 and i64 that
// holds them. Floats are written as f32 only when that reproduces the
// original bit pattern.
//
// # Reading
//
// [Decode] handles a complete buffer. [DecodeFrom] reads from an
// io.Reader. [Reader] exposes the two decode phases separately:
// [Reader.Initialize] validates the header and loads the string table,
// [Reader.ReadDocument] decodes the tree and checks the footer.
//
// The reader never reads past the end of its buffer: each field's length
// is checked first, and a short buffer fails with [ErrTruncatedInput].
// That error means "send more bytes", never "this is not BXML"; callers
// that receive input in pieces [Reader.Feed] more and call again.
//
// Untrusted input is bounded by [Limits] on nesting depth, string table
// size, string length, attribute count, child count and raw byte length.
// [Lenient] mode uses generous limits and tolerates structural oddities
// (missing or unknown type attributes, extra attributes, trailing bytes);
// [Strict] mode uses tight limits and rejects them with [ErrMalformed].
//
// All failures are returned as errors matching one of the package
// sentinels under errors.Is. Decode failures are [*FormatError] values
// carrying the byte offset; encode failures are [*EncodeError] values
// carrying the path of the offending value.
//
// Encoding and decoding are synchronous. Each call owns its buffers and
// string table, so independent calls may run concurrently without
// coordination.
package bxml
