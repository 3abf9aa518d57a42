// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import (
	"github.com/bureau-foundation/bxml/lib/token"
)

// ReaderOption configures a [Reader].
type ReaderOption func(*readerOptions)

type readerOptions struct {
	mode        Mode
	limits      *Limits
	forcedOrder *ByteOrder
}

// WithMode selects strict or lenient decoding. Lenient by default. The
// mode's default limits apply unless [WithLimits] is also given.
func WithMode(mode Mode) ReaderOption {
	return func(options *readerOptions) { options.mode = mode }
}

// WithLimits replaces the mode's default limits.
func WithLimits(limits Limits) ReaderOption {
	return func(options *readerOptions) { options.limits = &limits }
}

// WithByteOrder makes the reader ignore the flags byte's endianness bit
// and decode with order instead. Used to diagnose documents whose flags
// byte is wrong; a document read with the wrong order fails or decodes to
// visibly different values.
func WithByteOrder(order ByteOrder) ReaderOption {
	return func(options *readerOptions) { options.forcedOrder = &order }
}

type readerState uint8

const (
	stateUninitialized readerState = iota
	stateInitialized
	stateDocumentRead
)

// Stats summarizes what a reader decoded. It is filled in by
// ReadDocument.
type Stats struct {
	// Nodes counts serialized nodes, not compressed-array elements.
	Nodes int

	// CompressedArrays counts arrays written in compressed form.
	CompressedArrays int

	// CompressedElements counts values held by compressed arrays.
	CompressedElements int

	// MaxDepth is the deepest level reached, counting the root as 1.
	MaxDepth int

	// ValueTags counts scalar payloads by tag, including the null tag
	// carried by containers.
	ValueTags map[ValueTag]int
}

// Reader decodes one BXML document from a buffer that may still be
// growing. It moves through three states: uninitialized, initialized
// (header and string table loaded), and document read.
//
// A call that fails with ErrTruncatedInput leaves the reader in the
// state it was in, so the caller can [Reader.Feed] more bytes and call
// again. Any other error is final.
type Reader struct {
	data   []byte
	owned  bool
	offset int
	state  readerState
	mode   Mode
	limits Limits
	forced *ByteOrder
	order  byteOrder
	header Header
	table  *StringTable
	root   string
	result token.Value
	stats  Stats
}

// NewReader returns a reader over data. data is not modified; the
// first Feed copies it before appending.
func NewReader(data []byte, options ...ReaderOption) *Reader {
	settings := readerOptions{mode: Lenient}
	for _, option := range options {
		option(&settings)
	}
	limits := LimitsFor(settings.mode)
	if settings.limits != nil {
		limits = *settings.limits
	}
	return &Reader{
		data:   data,
		mode:   settings.mode,
		limits: limits,
		forced: settings.forcedOrder,
	}
}

// Feed appends more input. It is how incremental callers respond to
// ErrTruncatedInput.
func (r *Reader) Feed(more []byte) {
	if !r.owned {
		buffer := make([]byte, 0, len(r.data)+len(more))
		r.data = append(buffer, r.data...)
		r.owned = true
	}
	r.data = append(r.data, more...)
}

// Buffered returns the number of input bytes held.
func (r *Reader) Buffered() int { return len(r.data) }

// Initialize reads and validates the header, then loads the whole
// string table. It is a no-op once it has succeeded.
func (r *Reader) Initialize() error {
	if r.state != stateUninitialized {
		return nil
	}

	// The signature is checked on whatever prefix is available, so
	// non-BXML input is rejected before anything else is parsed, even
	// when fewer than four bytes have arrived.
	available := min(len(r.data), len(Magic))
	if string(r.data[:available]) != Magic[:available] {
		return formatError(ErrInvalidSignature, 0, "magic %q, want %q", r.data[:available], Magic)
	}

	header := cursor{data: r.data}
	if err := header.need(headerSize, "header"); err != nil {
		return err
	}
	header.offset = len(Magic)
	version, _ := header.uint8("version")
	flags, _ := header.uint8("flags")

	if version != Version {
		return formatError(ErrUnsupportedVersion, 4, "version %d, this codec reads %d", version, Version)
	}
	if r.mode == Strict && flags&^knownFlags != 0 {
		return formatError(ErrMalformed, 5, "unknown flag bits %#02x", flags&^knownFlags)
	}

	order := LittleEndian
	if flags&FlagBigEndian != 0 {
		order = BigEndian
	}
	if r.forced != nil {
		order = *r.forced
	}
	header.order = order.binary()
	reserved, _ := header.uint16("reserved")
	if r.mode == Strict && reserved != 0 {
		return formatError(ErrMalformed, 6, "reserved field is %#04x, want 0", reserved)
	}

	table, err := readStringTable(&header, r.limits, r.mode)
	if err != nil {
		return err
	}

	r.header = Header{
		Version:          version,
		Flags:            flags,
		Reserved:         reserved,
		CompressedArrays: flags&FlagCompressedArrays != 0,
		ByteOrder:        order,
	}
	r.order = header.order
	r.table = table
	r.offset = header.offset
	r.state = stateInitialized
	return nil
}

// ReadDocument decodes the root node and checks the footer. It requires
// a successful Initialize. Once it has succeeded it returns the same
// tree on every call.
func (r *Reader) ReadDocument() (token.Value, error) {
	switch r.state {
	case stateUninitialized:
		return token.Value{}, ErrNotInitialized
	case stateDocumentRead:
		return r.result, nil
	}

	decoder := &nodeDecoder{
		cursor: cursor{data: r.data, offset: r.offset, order: r.order},
		reader: r,
		stats:  Stats{ValueTags: make(map[ValueTag]int)},
	}
	name, value, err := decoder.node(1)
	if err != nil {
		return token.Value{}, err
	}

	footerOffset := decoder.cursor.offset
	footer, err := decoder.cursor.bytes(len(FooterMagic), "footer")
	if err != nil {
		// A partial footer that already disagrees is not truncation.
		available := decoder.cursor.data[footerOffset:]
		if string(available) != FooterMagic[:len(available)] {
			return token.Value{}, formatError(ErrInvalidFooter, footerOffset, "footer %q, want %q", available, FooterMagic)
		}
		return token.Value{}, err
	}
	if string(footer) != FooterMagic {
		return token.Value{}, formatError(ErrInvalidFooter, footerOffset, "footer %q, want %q", footer, FooterMagic)
	}
	if r.mode == Strict && decoder.cursor.remaining() > 0 {
		return token.Value{}, formatError(ErrMalformed, decoder.cursor.offset,
			"%d trailing bytes after footer", decoder.cursor.remaining())
	}

	r.offset = decoder.cursor.offset
	r.root = name
	r.result = value
	r.stats = decoder.stats
	r.state = stateDocumentRead
	return value, nil
}

// Header returns the parsed header. Valid after Initialize.
func (r *Reader) Header() Header { return r.header }

// StringTable returns the loaded string table, or nil before Initialize.
// Callers must not modify it.
func (r *Reader) StringTable() *StringTable { return r.table }

// RootName returns the root node's name. Valid after ReadDocument.
func (r *Reader) RootName() string { return r.root }

// Stats returns decoding statistics. Valid after ReadDocument.
func (r *Reader) Stats() Stats { return r.stats }

// Consumed returns the number of bytes the reader has accepted: the
// header and table after Initialize, the whole document after
// ReadDocument.
func (r *Reader) Consumed() int { return r.offset }

// nodeDecoder holds the state of one ReadDocument attempt. Nothing is
// committed to the Reader unless the attempt succeeds.
type nodeDecoder struct {
	cursor cursor
	reader *Reader
	stats  Stats
}

// child is one decoded child before its parent decides whether it is an
// object member or an array element.
type child struct {
	name  string
	value token.Value
}

func (d *nodeDecoder) lookup(offset int, index uint16, field string) (string, error) {
	text, ok := d.reader.table.Lookup(index)
	if !ok {
		return "", formatError(ErrIndexOutOfRange, offset,
			"%s index %d, table holds %d", field, index, d.reader.table.Len())
	}
	return text, nil
}

func (d *nodeDecoder) index(field string) (string, error) {
	offset := d.cursor.offset
	index, err := d.cursor.uint16(field)
	if err != nil {
		return "", err
	}
	return d.lookup(offset, index, field)
}

// node decodes one node at depth and returns its name and tree.
func (d *nodeDecoder) node(depth int) (string, token.Value, error) {
	reader := d.reader
	strict := reader.mode == Strict
	startOffset := d.cursor.offset

	if depth > reader.limits.MaxDepth {
		return "", token.Value{}, formatError(ErrMaxDepthExceeded, startOffset,
			"node at depth %d, limit is %d", depth, reader.limits.MaxDepth)
	}
	d.stats.Nodes++
	d.stats.MaxDepth = max(d.stats.MaxDepth, depth)

	tag, err := d.cursor.uint8("node tag")
	if err != nil {
		return "", token.Value{}, err
	}
	if tag != nodeTag {
		return "", token.Value{}, formatError(ErrMalformed, startOffset, "node tag %d, want %d", tag, nodeTag)
	}

	name, err := d.index("node name")
	if err != nil {
		return "", token.Value{}, err
	}

	attributeOffset := d.cursor.offset
	attributeCount, err := d.cursor.uint16("attribute count")
	if err != nil {
		return "", token.Value{}, err
	}
	if int(attributeCount) > reader.limits.MaxAttributes {
		return "", token.Value{}, formatError(ErrTooManyAttributes, attributeOffset,
			"node declares %d attributes, limit is %d", attributeCount, reader.limits.MaxAttributes)
	}

	typeName := ""
	for range int(attributeCount) {
		keyOffset := d.cursor.offset
		key, err := d.index("attribute key")
		if err != nil {
			return "", token.Value{}, err
		}
		value, err := d.index("attribute value")
		if err != nil {
			return "", token.Value{}, err
		}
		if key != typeAttribute {
			if strict {
				return "", token.Value{}, formatError(ErrMalformed, keyOffset, "unexpected attribute %q", key)
			}
			continue
		}
		if typeName != "" && strict {
			return "", token.Value{}, formatError(ErrMalformed, keyOffset, "repeated type attribute")
		}
		typeName = value
	}
	if strict {
		if typeName == "" {
			return "", token.Value{}, formatError(ErrMalformed, startOffset, "node %q has no type attribute", name)
		}
		if !isKnownTypeName(typeName) {
			return "", token.Value{}, formatError(ErrMalformed, startOffset, "node %q has unknown type %q", name, typeName)
		}
	}

	valueOffset := d.cursor.offset
	value, err := readScalar(&d.cursor, reader.table, reader.limits, reader.mode)
	if err != nil {
		return "", token.Value{}, err
	}
	d.stats.ValueTags[value.tag]++

	countOffset := d.cursor.offset
	rawCount, err := d.cursor.uint16("child count")
	if err != nil {
		return "", token.Value{}, err
	}
	compressed := rawCount&compressedArrayBit != 0
	count := int(rawCount &^ compressedArrayBit)
	if count > reader.limits.MaxChildren {
		return "", token.Value{}, formatError(ErrTooManyChildren, countOffset,
			"node declares %d children, limit is %d", count, reader.limits.MaxChildren)
	}

	var children []child
	if compressed {
		children, err = d.compressedChildren(count, depth+1)
	} else {
		children, err = d.children(count, depth+1)
	}
	if err != nil {
		return "", token.Value{}, err
	}

	hasChildren := compressed || count > 0
	if typeName == "" || !isKnownTypeName(typeName) {
		typeName = inferTypeName(value, children, hasChildren)
	}

	switch typeName {
	case typeObject, typeArray:
		if value.tag != TagNull && strict {
			return "", token.Value{}, formatError(ErrMalformed, valueOffset,
				"%s node %q carries a %s value", typeName, name, value.tag)
		}
		if typeName == typeArray {
			elements := make([]token.Value, len(children))
			for index, element := range children {
				elements[index] = element.value
			}
			return name, token.Array(elements...), nil
		}
		members := make([]token.Member, len(children))
		for index, member := range children {
			members[index] = token.Member{Key: member.name, Value: member.value}
		}
		return name, token.Object(members...), nil

	default:
		if hasChildren && strict {
			return "", token.Value{}, formatError(ErrMalformed, countOffset,
				"%s node %q has children", typeName, name)
		}
		converted, matched := typedToken(value, typeName, reader.table)
		if !matched && strict {
			return "", token.Value{}, formatError(ErrMalformed, valueOffset,
				"%s node %q carries a %s value", typeName, name, value.tag)
		}
		return name, converted, nil
	}
}

func (d *nodeDecoder) children(count, depth int) ([]child, error) {
	children := make([]child, 0, count)
	for range count {
		name, value, err := d.node(depth)
		if err != nil {
			return nil, err
		}
		children = append(children, child{name: name, value: value})
	}
	return children, nil
}

// compressedChildren decodes the element type byte and count bare
// values, reconstructing each as an "item" child.
func (d *nodeDecoder) compressedChildren(count, depth int) ([]child, error) {
	reader := d.reader
	typeOffset := d.cursor.offset
	rawType, err := d.cursor.uint8("compressed element type")
	if err != nil {
		return nil, err
	}
	elementType, err := d.lookup(typeOffset, uint16(rawType), "compressed element type")
	if err != nil {
		return nil, err
	}
	if reader.mode == Strict && !isScalarTypeName(elementType) {
		return nil, formatError(ErrMalformed, typeOffset, "compressed element type %q is not a scalar type", elementType)
	}
	if count > 0 && depth > reader.limits.MaxDepth {
		return nil, formatError(ErrMaxDepthExceeded, d.cursor.offset,
			"compressed elements at depth %d, limit is %d", depth, reader.limits.MaxDepth)
	}

	d.stats.CompressedArrays++
	d.stats.CompressedElements += count
	if count > 0 {
		d.stats.MaxDepth = max(d.stats.MaxDepth, depth)
	}

	children := make([]child, 0, count)
	for range count {
		valueOffset := d.cursor.offset
		value, err := readScalar(&d.cursor, reader.table, reader.limits, reader.mode)
		if err != nil {
			return nil, err
		}
		d.stats.ValueTags[value.tag]++
		converted, matched := typedToken(value, elementType, reader.table)
		if !matched && reader.mode == Strict {
			return nil, formatError(ErrMalformed, valueOffset,
				"compressed %s element carries a %s value", elementType, value.tag)
		}
		children = append(children, child{name: itemName, value: converted})
	}
	return children, nil
}

// inferTypeName picks a type for a node whose type attribute is missing
// or unknown (lenient mode only; strict mode rejects such nodes first).
func inferTypeName(value scalar, children []child, hasChildren bool) string {
	if hasChildren {
		for _, element := range children {
			if element.name != itemName {
				return typeObject
			}
		}
		return typeArray
	}
	switch value.tag {
	case TagString:
		return typeString
	case TagUint8, TagInt16, TagInt32, TagInt64:
		return typeLong
	case TagFloat32, TagFloat64:
		return typeFloat
	case TagBool:
		return typeBool
	case TagDate:
		return typeDate
	case TagBytes:
		return typeBytes
	default:
		return typeNull
	}
}
