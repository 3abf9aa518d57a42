// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Every failure returned by this package matches
// exactly one of them under errors.Is.
var (
	// ErrInvalidSignature reports a header magic other than "BXML".
	ErrInvalidSignature = errors.New("bxml: invalid signature")

	// ErrInvalidFooter reports a footer magic other than "EOFB". It
	// also matches ErrInvalidSignature.
	ErrInvalidFooter = fmt.Errorf("%w: bad footer", ErrInvalidSignature)

	// ErrUnsupportedVersion reports a version byte this codec does not
	// decode.
	ErrUnsupportedVersion = errors.New("bxml: unsupported version")

	// ErrTooManyStrings reports a string table above the configured
	// limit, or a writer that ran out of 16-bit indices.
	ErrTooManyStrings = errors.New("bxml: too many strings")

	// ErrStringTooLong reports a string longer than the configured
	// limit or the 16-bit length field.
	ErrStringTooLong = errors.New("bxml: string too long")

	// ErrTooManyAttributes reports a node attribute count above the
	// configured limit.
	ErrTooManyAttributes = errors.New("bxml: too many attributes")

	// ErrTooManyChildren reports a child count above the configured
	// limit or the 15 bits the count field allows.
	ErrTooManyChildren = errors.New("bxml: too many children")

	// ErrBytesTooLong reports a raw byte payload above the configured
	// limit.
	ErrBytesTooLong = errors.New("bxml: byte string too long")

	// ErrMaxDepthExceeded reports a tree nested deeper than the
	// configured ceiling.
	ErrMaxDepthExceeded = errors.New("bxml: maximum depth exceeded")

	// ErrTruncatedInput reports a field that runs past the end of the
	// buffered input. Incremental callers should buffer more bytes and
	// retry instead of rejecting the document.
	ErrTruncatedInput = errors.New("bxml: truncated input")

	// ErrUnknownValueTag reports a value tag outside the codec's table.
	ErrUnknownValueTag = errors.New("bxml: unknown value tag")

	// ErrIndexOutOfRange reports a string reference past the end of the
	// loaded string table.
	ErrIndexOutOfRange = errors.New("bxml: string index out of range")

	// ErrMalformed reports a structural anomaly: a bad node tag, a
	// type/value mismatch, trailing bytes, and the other conditions
	// strict mode refuses.
	ErrMalformed = errors.New("bxml: malformed document")

	// ErrNotInitialized reports ReadDocument called before a
	// successful Initialize.
	ErrNotInitialized = errors.New("bxml: reader not initialized")
)

// FormatError is a decode failure at a byte offset. Unwrap returns the
// sentinel kind, so errors.Is(err, ErrTruncatedInput) and friends work
// through it.
type FormatError struct {
	// Kind is one of the package sentinels.
	Kind error

	// Offset is the byte offset of the field that failed.
	Offset int

	// Detail names the field and, where useful, the offending value.
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

func (e *FormatError) Unwrap() error { return e.Kind }

func formatError(kind error, offset int, format string, args ...any) *FormatError {
	return &FormatError{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// EncodeError is an encode failure at a position in the input tree.
type EncodeError struct {
	// Kind is one of the package sentinels.
	Kind error

	// Path locates the failing value, e.g. "$.readings[3]".
	Path string

	// Detail describes the failure.
	Detail string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%v at %s: %s", e.Kind, e.Path, e.Detail)
}

func (e *EncodeError) Unwrap() error { return e.Kind }

// IsTruncated reports whether err means the input ended early, as
// opposed to the input being invalid.
func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncatedInput)
}

// path tracks the position of the writer in the input tree for error
// messages. Segments are pushed on descent and popped on return.
type path struct {
	segments []string
}

func (p *path) push(segment string) { p.segments = append(p.segments, segment) }

func (p *path) pop() { p.segments = p.segments[:len(p.segments)-1] }

func (p *path) String() string {
	var builder strings.Builder
	builder.WriteByte('$')
	for _, segment := range p.segments {
		builder.WriteString(segment)
	}
	return builder.String()
}
