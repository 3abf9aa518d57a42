// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

// cursor reads fixed-width fields from a buffer, checking the remaining
// length before every read. A short buffer always yields
// ErrTruncatedInput and leaves the offset where the field began.
type cursor struct {
	data   []byte
	offset int
	order  byteOrder
}

func (c *cursor) remaining() int { return len(c.data) - c.offset }

func (c *cursor) need(size int, field string) error {
	if c.remaining() < size {
		return formatError(ErrTruncatedInput, c.offset,
			"%s needs %d bytes, %d available", field, size, c.remaining())
	}
	return nil
}

func (c *cursor) uint8(field string) (uint8, error) {
	if err := c.need(1, field); err != nil {
		return 0, err
	}
	value := c.data[c.offset]
	c.offset++
	return value, nil
}

func (c *cursor) uint16(field string) (uint16, error) {
	if err := c.need(2, field); err != nil {
		return 0, err
	}
	value := c.order.Uint16(c.data[c.offset:])
	c.offset += 2
	return value, nil
}

func (c *cursor) uint32(field string) (uint32, error) {
	if err := c.need(4, field); err != nil {
		return 0, err
	}
	value := c.order.Uint32(c.data[c.offset:])
	c.offset += 4
	return value, nil
}

func (c *cursor) uint64(field string) (uint64, error) {
	if err := c.need(8, field); err != nil {
		return 0, err
	}
	value := c.order.Uint64(c.data[c.offset:])
	c.offset += 8
	return value, nil
}

// bytes returns the next size bytes without copying.
func (c *cursor) bytes(size int, field string) ([]byte, error) {
	if err := c.need(size, field); err != nil {
		return nil, err
	}
	value := c.data[c.offset : c.offset+size]
	c.offset += size
	return value, nil
}
