// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/bxml/lib/token"
)

// Encode encodes root as a complete BXML document.
func Encode(root token.Value, options ...WriterOption) ([]byte, error) {
	return NewWriter(options...).WriteDocument(root)
}

// Decode decodes a complete BXML document held in data.
func Decode(data []byte, options ...ReaderOption) (token.Value, error) {
	reader := NewReader(data, options...)
	if err := reader.Initialize(); err != nil {
		return token.Value{}, err
	}
	return reader.ReadDocument()
}

// readChunkSize is how much DecodeFrom asks the source for at a time.
const readChunkSize = 32 * 1024

// DecodeFrom decodes one document from source, reading only as much as
// it needs. Each time a decode attempt reports ErrTruncatedInput more
// input is read and the attempt retried. A retry, of either the header
// and string table or the node tree, waits until the buffer has doubled
// since the previous attempt, so a large document is parsed a
// logarithmic number of times rather than once per chunk. Input that
// ends mid-document yields ErrTruncatedInput.
//
// In strict mode the source must end right after the footer. Trailing
// bytes already buffered alongside the footer are rejected by
// [Reader.ReadDocument]; bytes still unread in source are rejected
// after it returns. Both yield ErrMalformed.
func DecodeFrom(source io.Reader, options ...ReaderOption) (token.Value, error) {
	document, _, err := decodeFrom(source, options)
	return document, err
}

// decodeFrom is DecodeFrom, also reporting how many decode attempts
// were made.
func decodeFrom(source io.Reader, options []ReaderOption) (token.Value, int, error) {
	reader := NewReader(nil, options...)
	chunk := make([]byte, readChunkSize)
	nextAttempt := 0
	attempts := 0
	exhausted := false

	for {
		if !exhausted {
			count, err := source.Read(chunk)
			if count > 0 {
				reader.Feed(chunk[:count])
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					return token.Value{}, attempts, fmt.Errorf("bxml: read input: %w", err)
				}
				exhausted = true
			}
		}

		if reader.Buffered() < nextAttempt && !exhausted {
			continue
		}
		attempts++

		if err := reader.Initialize(); err != nil {
			if IsTruncated(err) && !exhausted {
				nextAttempt = 2 * reader.Buffered()
				continue
			}
			return token.Value{}, attempts, err
		}

		document, err := reader.ReadDocument()
		if err != nil {
			if IsTruncated(err) && !exhausted {
				nextAttempt = 2 * reader.Buffered()
				continue
			}
			return token.Value{}, attempts, err
		}

		if reader.mode == Strict {
			if err := expectEnd(source, exhausted, reader.Consumed()); err != nil {
				return token.Value{}, attempts, err
			}
		}
		return document, attempts, nil
	}
}

// expectEnd checks that source has nothing left after the footer.
func expectEnd(source io.Reader, exhausted bool, offset int) error {
	if exhausted {
		return nil
	}
	var probe [1]byte
	for {
		count, err := source.Read(probe[:])
		if count > 0 {
			return formatError(ErrMalformed, offset, "trailing bytes after footer")
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("bxml: read input: %w", err)
		}
	}
}
