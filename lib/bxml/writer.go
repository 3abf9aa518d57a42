// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bureau-foundation/bxml/lib/token"
)

// WriterOption configures a [Writer].
type WriterOption func(*writerOptions)

type writerOptions struct {
	compressArrays bool
	byteOrder      ByteOrder
	maxDepth       int
	rootName       string
}

func defaultWriterOptions() writerOptions {
	return writerOptions{
		compressArrays: true,
		byteOrder:      LittleEndian,
		maxDepth:       DefaultMaxDepth,
		rootName:       DefaultRootName,
	}
}

// WithArrayCompression enables or disables compressed arrays. Enabled by
// default.
func WithArrayCompression(enabled bool) WriterOption {
	return func(options *writerOptions) { options.compressArrays = enabled }
}

// WithWriterByteOrder selects the byte order of every multi-byte field.
// Little-endian by default.
func WithWriterByteOrder(order ByteOrder) WriterOption {
	return func(options *writerOptions) { options.byteOrder = order }
}

// WithMaxDepth sets the nesting ceiling (default [DefaultMaxDepth]).
// Values below 1 are ignored.
func WithMaxDepth(depth int) WriterOption {
	return func(options *writerOptions) {
		if depth > 0 {
			options.maxDepth = depth
		}
	}
}

// WithRootName names the root node (default "root").
func WithRootName(name string) WriterOption {
	return func(options *writerOptions) { options.rootName = name }
}

// Writer encodes token trees as BXML documents. A Writer holds only
// options; every call builds its own string table, so one Writer may be
// used from several goroutines.
type Writer struct {
	options writerOptions
}

// NewWriter returns a writer with options applied over the defaults.
func NewWriter(options ...WriterOption) *Writer {
	writer := &Writer{options: defaultWriterOptions()}
	for _, option := range options {
		option(&writer.options)
	}
	return writer
}

// node is the writer's intermediate form of one tree position. The type
// attribute is held as a plain index and only expanded to the wire's
// key/value pair at serialization.
type node struct {
	name     uint16
	typeName uint16
	value    scalar
	children []*node

	compressed  bool
	elementType uint16
	elements    []scalar
}

// builder walks the token tree once, filling the string table and
// producing the node tree. Serialization happens afterwards, because the
// table must precede the nodes on the wire.
type builder struct {
	options writerOptions
	table   *StringTable
	path    path

	typeKey uint16
}

// WriteDocument encodes root into a complete document: header, string
// table, root node, footer.
func (w *Writer) WriteDocument(root token.Value) ([]byte, error) {
	b := &builder{options: w.options, table: NewStringTable()}

	// The attribute key is registered before anything else so that it
	// has a stable, small index in every document.
	typeKey, err := b.add(typeAttribute)
	if err != nil {
		return nil, err
	}
	b.typeKey = typeKey

	rootNode, err := b.build(root, w.options.rootName, 1)
	if err != nil {
		return nil, err
	}

	order := w.options.byteOrder.binary()
	buffer := make([]byte, 0, headerSize+b.table.EncodedSize()+64)
	buffer = append(buffer, Magic...)
	buffer = append(buffer, Version, headerFlags(w.options.compressArrays, w.options.byteOrder))
	buffer = order.AppendUint16(buffer, 0)
	buffer = b.table.appendTo(buffer, order)
	buffer = appendNode(buffer, rootNode, b.typeKey, order)
	buffer = append(buffer, FooterMagic...)
	return buffer, nil
}

func (b *builder) add(s string) (uint16, error) {
	index, err := b.table.Add(s)
	if err != nil {
		if encodeErr, ok := err.(*EncodeError); ok {
			encodeErr.Path = b.path.String()
		}
		return 0, err
	}
	return index, nil
}

func (b *builder) fail(kind error, format string, args ...any) error {
	return &EncodeError{Kind: kind, Path: b.path.String(), Detail: fmt.Sprintf(format, args...)}
}

// build converts value into a node named name at depth.
func (b *builder) build(value token.Value, name string, depth int) (*node, error) {
	if depth > b.options.maxDepth {
		return nil, b.fail(ErrMaxDepthExceeded, "depth %d exceeds limit %d", depth, b.options.maxDepth)
	}

	nameIndex, err := b.add(name)
	if err != nil {
		return nil, err
	}
	result := &node{name: nameIndex}

	switch value.Kind() {
	case token.KindObject:
		if result.typeName, err = b.add(typeObject); err != nil {
			return nil, err
		}
		members := value.Members()
		if len(members) > maxChildCount {
			return nil, b.fail(ErrTooManyChildren, "object has %d members, limit is %d", len(members), maxChildCount)
		}
		result.children = make([]*node, 0, len(members))
		for _, member := range members {
			b.path.push("." + member.Key)
			child, err := b.build(member.Value, member.Key, depth+1)
			b.path.pop()
			if err != nil {
				return nil, err
			}
			result.children = append(result.children, child)
		}

	case token.KindArray:
		if result.typeName, err = b.add(typeArray); err != nil {
			return nil, err
		}
		compressed, err := b.tryCompress(result, value.Elements(), depth)
		if err != nil || compressed {
			return result, err
		}
		elements := value.Elements()
		if len(elements) > maxChildCount {
			return nil, b.fail(ErrTooManyChildren, "array has %d elements, limit is %d", len(elements), maxChildCount)
		}
		result.children = make([]*node, 0, len(elements))
		for index, element := range elements {
			b.path.push("[" + strconv.Itoa(index) + "]")
			child, err := b.build(element, itemName, depth+1)
			b.path.pop()
			if err != nil {
				return nil, err
			}
			result.children = append(result.children, child)
		}

	default:
		typeName, encoded, err := b.scalar(value)
		if err != nil {
			return nil, err
		}
		if result.typeName, err = b.add(typeName); err != nil {
			return nil, err
		}
		result.value = encoded
	}
	return result, nil
}

// tryCompress turns an array node into a compressed array when
// compression is enabled, the array is non-empty, every element is a
// scalar of the same kind, the element type index fits one byte, and the
// count fits fifteen bits. It reports whether it did.
func (b *builder) tryCompress(result *node, elements []token.Value, depth int) (bool, error) {
	if !b.options.compressArrays || len(elements) == 0 || len(elements) > maxChildCount {
		return false, nil
	}
	kind := elements[0].Kind()
	if !kind.IsScalar() {
		return false, nil
	}
	for _, element := range elements[1:] {
		if element.Kind() != kind {
			return false, nil
		}
	}
	if depth+1 > b.options.maxDepth {
		return false, b.fail(ErrMaxDepthExceeded, "array elements at depth %d exceed limit %d", depth+1, b.options.maxDepth)
	}

	// Integers share one element type: "long" as soon as any element
	// needs 64 bits.
	elementTypeName := ""
	encoded := make([]scalar, 0, len(elements))
	for index, element := range elements {
		b.path.push("[" + strconv.Itoa(index) + "]")
		typeName, value, err := b.scalar(element)
		b.path.pop()
		if err != nil {
			return false, err
		}
		if elementTypeName == "" || typeName == typeLong {
			elementTypeName = typeName
		}
		encoded = append(encoded, value)
	}

	elementType, err := b.add(elementTypeName)
	if err != nil {
		return false, err
	}
	if elementType > maxElementTypeIndex {
		// The element type field is one byte. Late in a large table the
		// type name may not fit; the array is written uncompressed.
		return false, nil
	}

	result.compressed = true
	result.elementType = elementType
	result.elements = encoded
	return true, nil
}

// scalar encodes a scalar token, returning its type name and wire value.
// String payloads are added to the table.
func (b *builder) scalar(value token.Value) (string, scalar, error) {
	switch value.Kind() {
	case token.KindNull:
		return typeNull, scalar{tag: TagNull}, nil
	case token.KindBool:
		return typeBool, scalar{tag: TagBool, boolean: value.BoolValue()}, nil
	case token.KindInteger:
		integer := value.IntegerValue()
		return integerTypeName(integer), scalar{tag: integerTag(integer), integer: integer}, nil
	case token.KindFloat:
		float := value.FloatValue()
		return typeFloat, scalar{tag: floatTag(float), float: float}, nil
	case token.KindString:
		index, err := b.add(value.StringValue())
		if err != nil {
			return "", scalar{}, err
		}
		return typeString, scalar{tag: TagString, index: index}, nil
	case token.KindDate:
		return typeDate, scalar{tag: TagDate, date: value.DateValue()}, nil
	case token.KindBytes:
		raw := value.BytesValue()
		if uint64(len(raw)) > math.MaxUint32 {
			return "", scalar{}, b.fail(ErrBytesTooLong, "byte value of %d bytes exceeds the 32-bit length field", len(raw))
		}
		return typeBytes, scalar{tag: TagBytes, raw: raw}, nil
	default:
		return "", scalar{}, b.fail(ErrMalformed, "value of kind %s is not a scalar", value.Kind())
	}
}

// appendNode serializes one node and its subtree.
func appendNode(buffer []byte, n *node, typeKey uint16, order byteOrder) []byte {
	buffer = append(buffer, nodeTag)
	buffer = order.AppendUint16(buffer, n.name)
	buffer = order.AppendUint16(buffer, 1)
	buffer = order.AppendUint16(buffer, typeKey)
	buffer = order.AppendUint16(buffer, n.typeName)
	buffer = appendScalar(buffer, n.value, order)

	if n.compressed {
		buffer = order.AppendUint16(buffer, uint16(len(n.elements))|compressedArrayBit)
		buffer = append(buffer, uint8(n.elementType))
		for _, element := range n.elements {
			buffer = appendScalar(buffer, element, order)
		}
		return buffer
	}

	buffer = order.AppendUint16(buffer, uint16(len(n.children)))
	for _, child := range n.children {
		buffer = appendNode(buffer, child, typeKey, order)
	}
	return buffer
}
