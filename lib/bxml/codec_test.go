// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/bureau-foundation/bxml/lib/token"
)

// sampleDocument exercises every value kind, compressed and plain
// arrays, and nesting.
func sampleDocument() token.Value {
	return token.Object(
		token.Field("name", token.String("sensor-7")),
		token.Field("active", token.Bool(true)),
		token.Field("count", token.Integer(200)),
		token.Field("offset", token.Integer(-40000)),
		token.Field("serial", token.Integer(9223372036854775000)),
		token.Field("ratio", token.Float(0.5)),
		token.Field("precise", token.Float(0.1)),
		token.Field("calibrated", token.Date(time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC))),
		token.Field("blob", token.Bytes([]byte{0xDE, 0xAD, 0xBE, 0xEF})),
		token.Field("note", token.Null()),
		token.Field("readings", token.Array(token.Integer(1), token.Integer(2), token.Integer(300))),
		token.Field("labels", token.Array(token.String("a"), token.String("b"), token.String("a"))),
		token.Field("mixed", token.Array(token.Integer(1), token.String("two"), token.Null(), token.Object())),
		token.Field("nested", token.Object(
			token.Field("deeper", token.Array(token.Array(token.Float(1.5)))),
		)),
		token.Field("empty_array", token.Array()),
		token.Field("empty_object", token.Object()),
	)
}

// nested returns a value of exactly depth levels: arrays wrapped around a
// single integer.
func nested(depth int) token.Value {
	value := token.Integer(1)
	for range depth - 1 {
		value = token.Array(value)
	}
	return value
}

func TestRoundtrip(t *testing.T) {
	documents := map[string]token.Value{
		"sample":        sampleDocument(),
		"integer root":  token.Integer(5),
		"null root":     token.Null(),
		"string root":   token.String("just text"),
		"empty array":   token.Array(),
		"empty object":  token.Object(),
		"array of null": token.Array(token.Null(), token.Null()),
		"item keys":     token.Object(token.Field("item", token.Integer(1)), token.Field("item", token.Integer(2))),
		"type key":      token.Object(token.Field("type", token.String("type"))),
		"long array":    token.Array(token.Integer(1), token.Integer(1<<40), token.Integer(-3)),
		"empty strings": token.Object(token.Field("", token.String(""))),
	}

	for name, document := range documents {
		for _, order := range []ByteOrder{LittleEndian, BigEndian} {
			for _, compress := range []bool{true, false} {
				for _, mode := range []Mode{Lenient, Strict} {
					t.Run(fmt.Sprintf("%s/%s/compress=%v/%s", name, order, compress, mode), func(t *testing.T) {
						data, err := Encode(document, WithWriterByteOrder(order), WithArrayCompression(compress))
						if err != nil {
							t.Fatalf("Encode: %v", err)
						}
						decoded, err := Decode(data, WithMode(mode))
						if err != nil {
							t.Fatalf("Decode: %v", err)
						}
						if !token.Equal(decoded, document) {
							t.Errorf("decoded %s\nwant    %s", decoded, document)
						}
					})
				}
			}
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	data, err := Encode(token.Integer(7))
	if err != nil {
		t.Fatal(err)
	}

	var want []byte
	want = append(want, "BXML"...)
	want = append(want, Version, FlagCompressedArrays, 0, 0)
	// Table: "type", "root", "int".
	want = append(want, 3, 0, 4, 0)
	want = append(want, "type"...)
	want = append(want, 4, 0)
	want = append(want, "root"...)
	want = append(want, 3, 0)
	want = append(want, "int"...)
	// Root node: tag, name 1, one attribute (0 -> 2), u8 7, no children.
	want = append(want, 1, 1, 0, 1, 0, 0, 0, 2, 0, byte(TagUint8), 7, 0, 0)
	want = append(want, "EOFB"...)

	if !bytes.Equal(data, want) {
		t.Errorf("Encode(7) =\n% x\nwant\n% x", data, want)
	}
}

func TestStringDeduplication(t *testing.T) {
	elements := make([]token.Value, 100)
	for index := range elements {
		elements[index] = token.String("repeated")
	}
	for _, compress := range []bool{true, false} {
		t.Run(fmt.Sprintf("compress=%v", compress), func(t *testing.T) {
			data, err := Encode(token.Array(elements...), WithArrayCompression(compress))
			if err != nil {
				t.Fatal(err)
			}
			if count := bytes.Count(data, []byte("repeated")); count != 1 {
				t.Errorf("%q appears %d times in the document, want 1", "repeated", count)
			}

			reader := NewReader(data)
			if err := reader.Initialize(); err != nil {
				t.Fatal(err)
			}
			occurrences := 0
			for _, entry := range reader.StringTable().Strings() {
				if entry == "repeated" {
					occurrences++
				}
			}
			if occurrences != 1 {
				t.Errorf("table holds %d copies of %q", occurrences, "repeated")
			}
		})
	}
}

func TestCompressionFallsBackForWideTypeIndex(t *testing.T) {
	// 300 distinct keys push the float type name past the one-byte
	// element type field.
	fields := make([]token.Member, 0, 301)
	for index := range 300 {
		fields = append(fields, token.Field(fmt.Sprintf("k%03d", index), token.Bool(index%2 == 0)))
	}
	fields = append(fields, token.Field("floats", token.Array(token.Float(1.5), token.Float(2.5))))
	document := token.Object(fields...)

	data, err := Encode(document, WithArrayCompression(true))
	if err != nil {
		t.Fatal(err)
	}
	for _, mode := range []Mode{Lenient, Strict} {
		t.Run(mode.String(), func(t *testing.T) {
			reader := NewReader(data, WithMode(mode))
			if err := reader.Initialize(); err != nil {
				t.Fatal(err)
			}
			decoded, err := reader.ReadDocument()
			if err != nil {
				t.Fatal(err)
			}
			if !token.Equal(decoded, document) {
				t.Errorf("decoded %s", decoded)
			}
			if stats := reader.Stats(); stats.CompressedArrays != 0 {
				t.Errorf("CompressedArrays = %d, want 0", stats.CompressedArrays)
			}
		})
	}
}

func TestIntegerWidths(t *testing.T) {
	document := token.Object(
		token.Field("small", token.Integer(200)),
		token.Field("medium", token.Integer(200000)),
		token.Field("large", token.Integer(9223372036854775000)),
		token.Field("negative", token.Integer(-5)),
		token.Field("single", token.Float(0.5)),
		token.Field("double", token.Float(0.1)),
	)
	data, err := Encode(document)
	if err != nil {
		t.Fatal(err)
	}
	reader := NewReader(data)
	if err := reader.Initialize(); err != nil {
		t.Fatal(err)
	}
	if _, err := reader.ReadDocument(); err != nil {
		t.Fatal(err)
	}

	tags := reader.Stats().ValueTags
	want := map[ValueTag]int{
		TagNull:    1,
		TagUint8:   1,
		TagInt16:   1,
		TagInt32:   1,
		TagInt64:   1,
		TagFloat32: 1,
		TagFloat64: 1,
	}
	for tag, count := range want {
		if tags[tag] != count {
			t.Errorf("ValueTags[%s] = %d, want %d", tag, tags[tag], count)
		}
	}

	// The 64-bit integer is declared "long"; the others "int".
	table := reader.StringTable()
	if _, ok := table.IndexOf("long"); !ok {
		t.Error("table has no \"long\" type name")
	}
	if _, ok := table.IndexOf("int"); !ok {
		t.Error("table has no \"int\" type name")
	}
}

func TestCompressedArrayEquivalence(t *testing.T) {
	readings := make([]token.Value, 50)
	for index := range readings {
		readings[index] = token.Integer(int64(index * 10))
	}
	document := token.Object(
		token.Field("readings", token.Array(readings...)),
		token.Field("flags", token.Array(token.Bool(true), token.Bool(false))),
		token.Field("mixed", token.Array(token.Integer(1), token.Float(1.5))),
	)

	compressed, err := Encode(document, WithArrayCompression(true))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := Encode(document, WithArrayCompression(false))
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(plain) {
		t.Errorf("compressed document is %d bytes, plain is %d", len(compressed), len(plain))
	}
	if compressed[5]&FlagCompressedArrays == 0 || plain[5]&FlagCompressedArrays != 0 {
		t.Errorf("flags: compressed %#02x, plain %#02x", compressed[5], plain[5])
	}

	stats := make(map[bool]Stats)
	for enabled, data := range map[bool][]byte{true: compressed, false: plain} {
		reader := NewReader(data, WithMode(Strict))
		if err := reader.Initialize(); err != nil {
			t.Fatal(err)
		}
		decoded, err := reader.ReadDocument()
		if err != nil {
			t.Fatalf("compress=%v: %v", enabled, err)
		}
		if !token.Equal(decoded, document) {
			t.Errorf("compress=%v: decoded %s", enabled, decoded)
		}
		stats[enabled] = reader.Stats()
	}

	if stats[true].CompressedArrays != 2 || stats[true].CompressedElements != 52 {
		t.Errorf("compressed stats = %+v, want 2 arrays holding 52 elements", stats[true])
	}
	if stats[false].CompressedArrays != 0 {
		t.Errorf("plain stats = %+v, want no compressed arrays", stats[false])
	}
	if stats[true].MaxDepth != stats[false].MaxDepth {
		t.Errorf("MaxDepth differs: compressed %d, plain %d", stats[true].MaxDepth, stats[false].MaxDepth)
	}
}

func TestWriterDepthLimit(t *testing.T) {
	for _, compress := range []bool{true, false} {
		t.Run(fmt.Sprintf("compress=%v", compress), func(t *testing.T) {
			if _, err := Encode(nested(DefaultMaxDepth), WithArrayCompression(compress)); err != nil {
				t.Errorf("depth %d: %v", DefaultMaxDepth, err)
			}
			_, err := Encode(nested(DefaultMaxDepth+1), WithArrayCompression(compress))
			if !errors.Is(err, ErrMaxDepthExceeded) {
				t.Errorf("depth %d: error = %v, want ErrMaxDepthExceeded", DefaultMaxDepth+1, err)
			}

			if _, err := Encode(nested(10), WithArrayCompression(compress), WithMaxDepth(10)); err != nil {
				t.Errorf("depth 10 with limit 10: %v", err)
			}
			if _, err := Encode(nested(11), WithArrayCompression(compress), WithMaxDepth(10)); !errors.Is(err, ErrMaxDepthExceeded) {
				t.Errorf("depth 11 with limit 10: error = %v", err)
			}
		})
	}
}

func TestReaderDepthLimit(t *testing.T) {
	limits := LenientLimits()
	limits.MaxDepth = 10

	for _, compress := range []bool{true, false} {
		t.Run(fmt.Sprintf("compress=%v", compress), func(t *testing.T) {
			for depth, wantErr := range map[int]bool{10: false, 11: true} {
				data, err := Encode(nested(depth), WithArrayCompression(compress))
				if err != nil {
					t.Fatal(err)
				}
				decoded, err := Decode(data, WithLimits(limits))
				if wantErr {
					if !errors.Is(err, ErrMaxDepthExceeded) {
						t.Errorf("depth %d: error = %v, want ErrMaxDepthExceeded", depth, err)
					}
					continue
				}
				if err != nil {
					t.Errorf("depth %d: %v", depth, err)
					continue
				}
				if decoded.Depth() != depth {
					t.Errorf("decoded depth %d, want %d", decoded.Depth(), depth)
				}
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	hugeString := strings.Repeat("x", 70000)

	manyIntegers := make([]token.Value, maxChildCount+1)
	for index := range manyIntegers {
		manyIntegers[index] = token.Integer(int64(index))
	}

	distinct := func(prefix string) token.Value {
		elements := make([]token.Value, 30000)
		for index := range elements {
			elements[index] = token.String(fmt.Sprintf("%s-%d", prefix, index))
		}
		return token.Array(elements...)
	}

	tests := []struct {
		name     string
		document token.Value
		want     error
		path     string
	}{
		{
			name:     "string too long",
			document: token.Object(token.Field("a", token.Array(token.Object(token.Field("b", token.String(hugeString)))))),
			want:     ErrStringTooLong,
			path:     "$.a[0].b",
		},
		{
			name:     "key too long",
			document: token.Object(token.Field(hugeString, token.Null())),
			want:     ErrStringTooLong,
		},
		{
			name:     "too many children",
			document: token.Array(manyIntegers...),
			want:     ErrTooManyChildren,
			path:     "$",
		},
		{
			name: "too many strings",
			document: token.Object(
				token.Field("a", distinct("a")),
				token.Field("b", distinct("b")),
				token.Field("c", distinct("c")),
			),
			want: ErrTooManyStrings,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Encode(test.document)
			if !errors.Is(err, test.want) {
				t.Fatalf("error = %v, want %v", err, test.want)
			}
			var encodeErr *EncodeError
			if !errors.As(err, &encodeErr) {
				t.Fatalf("error %T is not an *EncodeError", err)
			}
			if test.path != "" && encodeErr.Path != test.path {
				t.Errorf("Path = %q, want %q", encodeErr.Path, test.path)
			}
		})
	}
}

func TestTruncatedPrefixes(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		data, err := Encode(sampleDocument(), WithWriterByteOrder(order))
		if err != nil {
			t.Fatal(err)
		}
		for _, mode := range []Mode{Lenient, Strict} {
			for length := range len(data) {
				_, err := Decode(data[:length], WithMode(mode))
				if !IsTruncated(err) {
					t.Fatalf("%s %s: prefix of %d/%d bytes: error = %v, want ErrTruncatedInput",
						order, mode, length, len(data), err)
				}
			}
		}
	}
}

func TestByteOrder(t *testing.T) {
	document := sampleDocument()
	data, err := Encode(document, WithWriterByteOrder(BigEndian))
	if err != nil {
		t.Fatal(err)
	}
	if data[5]&FlagBigEndian == 0 {
		t.Fatalf("flags %#02x lack the big-endian bit", data[5])
	}

	reader := NewReader(data)
	if err := reader.Initialize(); err != nil {
		t.Fatal(err)
	}
	if header := reader.Header(); header.ByteOrder != BigEndian || !header.CompressedArrays {
		t.Errorf("Header() = %+v", header)
	}
	if count := binary.BigEndian.Uint16(data[8:]); int(count) != reader.StringTable().Len() {
		t.Errorf("big-endian table count %d, table holds %d", count, reader.StringTable().Len())
	}
	decoded, err := reader.ReadDocument()
	if err != nil {
		t.Fatal(err)
	}
	if !token.Equal(decoded, document) {
		t.Errorf("big-endian decode = %s", decoded)
	}

	// Forcing the opposite order must not silently reproduce the tree.
	little, err := Encode(document)
	if err != nil {
		t.Fatal(err)
	}
	for _, input := range []struct {
		data  []byte
		order ByteOrder
	}{{little, BigEndian}, {data, LittleEndian}} {
		misread, err := Decode(input.data, WithByteOrder(input.order))
		if err == nil && token.Equal(misread, document) {
			t.Errorf("decoding with forced %s order reproduced the document", input.order)
		}
	}

	// Forcing the right order is harmless.
	if decoded, err := Decode(data, WithByteOrder(BigEndian)); err != nil || !token.Equal(decoded, document) {
		t.Errorf("forced matching order: %v", err)
	}
}

func TestSignature(t *testing.T) {
	valid, err := Encode(token.Integer(1))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"xml text", []byte(`<?xml version="1.0"?><root/>`), ErrInvalidSignature},
		{"wrong magic", append([]byte("BXMX"), valid[4:]...), ErrInvalidSignature},
		{"short mismatch", []byte("BQ"), ErrInvalidSignature},
		{"short match", []byte("BX"), ErrTruncatedInput},
		{"empty", nil, ErrTruncatedInput},
		{"bad footer", append(bytes.Clone(valid[:len(valid)-4]), "EOFX"...), ErrInvalidFooter},
		{"partial bad footer", append(bytes.Clone(valid[:len(valid)-4]), "EX"...), ErrInvalidFooter},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(test.input)
			if !errors.Is(err, test.want) {
				t.Errorf("error = %v, want %v", err, test.want)
			}
		})
	}

	// A bad footer is also a signature failure.
	_, err = Decode(append(bytes.Clone(valid[:len(valid)-4]), "EOFX"...))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("bad footer error %v does not match ErrInvalidSignature", err)
	}
}

func TestReaderStates(t *testing.T) {
	data, err := Encode(sampleDocument(), WithRootName("telemetry"))
	if err != nil {
		t.Fatal(err)
	}

	reader := NewReader(data)
	if _, err := reader.ReadDocument(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("ReadDocument before Initialize: error = %v", err)
	}
	if reader.StringTable() != nil {
		t.Error("StringTable() is non-nil before Initialize")
	}

	if err := reader.Initialize(); err != nil {
		t.Fatal(err)
	}
	tableEnd := reader.Consumed()
	if err := reader.Initialize(); err != nil || reader.Consumed() != tableEnd {
		t.Errorf("second Initialize: %v, consumed %d -> %d", err, tableEnd, reader.Consumed())
	}

	first, err := reader.ReadDocument()
	if err != nil {
		t.Fatal(err)
	}
	second, err := reader.ReadDocument()
	if err != nil || !token.Equal(first, second) {
		t.Errorf("second ReadDocument: %v", err)
	}
	if reader.RootName() != "telemetry" {
		t.Errorf("RootName() = %q", reader.RootName())
	}
	if reader.Consumed() != len(data) {
		t.Errorf("Consumed() = %d, want %d", reader.Consumed(), len(data))
	}
}

func TestFeed(t *testing.T) {
	document := sampleDocument()
	data, err := Encode(document)
	if err != nil {
		t.Fatal(err)
	}

	reader := NewReader(nil)
	var decoded token.Value
	finished := -1
	for index, b := range data {
		reader.Feed([]byte{b})
		if err := reader.Initialize(); err != nil {
			if !IsTruncated(err) {
				t.Fatalf("Initialize after %d bytes: %v", index+1, err)
			}
			continue
		}
		decoded, err = reader.ReadDocument()
		if err != nil {
			if !IsTruncated(err) {
				t.Fatalf("ReadDocument after %d bytes: %v", index+1, err)
			}
			continue
		}
		finished = index
		break
	}

	if finished != len(data)-1 {
		t.Fatalf("document completed after %d bytes, want %d", finished+1, len(data))
	}
	if !token.Equal(decoded, document) {
		t.Errorf("decoded %s", decoded)
	}
}

func TestFeedDoesNotModifyInput(t *testing.T) {
	data, err := Encode(token.Integer(1))
	if err != nil {
		t.Fatal(err)
	}
	backing := make([]byte, len(data)-2, len(data)+16)
	copy(backing, data)
	sentinel := backing[:cap(backing)]
	sentinel[len(data)-2] = 0xAA

	reader := NewReader(backing)
	reader.Feed(data[len(data)-2:])
	if sentinel[len(data)-2] != 0xAA {
		t.Error("Feed wrote into the caller's backing array")
	}
	if err := reader.Initialize(); err != nil {
		t.Fatal(err)
	}
	if decoded, err := reader.ReadDocument(); err != nil || !token.Equal(decoded, token.Integer(1)) {
		t.Errorf("ReadDocument = %s, %v", decoded, err)
	}
}

func TestDecodeFrom(t *testing.T) {
	document := sampleDocument()
	data, err := Encode(document)
	if err != nil {
		t.Fatal(err)
	}

	readings := make([]token.Value, 12000)
	for index := range readings {
		readings[index] = token.Float(float64(index) / 7)
	}
	large := token.Object(token.Field("readings", token.Array(readings...)))
	largeData, err := Encode(large)
	if err != nil {
		t.Fatal(err)
	}
	if len(largeData) <= readChunkSize {
		t.Fatalf("large document is only %d bytes", len(largeData))
	}

	tests := []struct {
		name   string
		source io.Reader
		mode   Mode
		want   token.Value
		err    error
	}{
		{"whole", bytes.NewReader(data), Lenient, document, nil},
		{"one byte at a time", iotest.OneByteReader(bytes.NewReader(data)), Strict, document, nil},
		{"data with EOF", iotest.DataErrReader(bytes.NewReader(data)), Strict, document, nil},
		{"larger than a chunk", bytes.NewReader(largeData), Lenient, large, nil},
		{"large in halves", iotest.HalfReader(bytes.NewReader(largeData)), Lenient, large, nil},
		{"truncated", bytes.NewReader(data[:len(data)-3]), Lenient, token.Value{}, ErrTruncatedInput},
		{"trailing lenient", io.MultiReader(bytes.NewReader(data), strings.NewReader("junk")), Lenient, document, nil},
		{"trailing strict", io.MultiReader(bytes.NewReader(data), strings.NewReader("junk")), Strict, token.Value{}, ErrMalformed},
		{"trailing strict bytewise", iotest.OneByteReader(io.MultiReader(bytes.NewReader(data), strings.NewReader("junk"))), Strict, token.Value{}, ErrMalformed},
		{"not bxml", strings.NewReader("{\"json\": true}"), Lenient, token.Value{}, ErrInvalidSignature},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			decoded, err := DecodeFrom(test.source, WithMode(test.mode))
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Fatalf("error = %v, want %v", err, test.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !token.Equal(decoded, test.want) {
				t.Errorf("decoded %s", decoded)
			}
		})
	}
}

func TestDecodeFromReadError(t *testing.T) {
	failure := errors.New("disk on fire")
	_, err := DecodeFrom(iotest.ErrReader(failure))
	if !errors.Is(err, failure) {
		t.Fatalf("error = %v, want it to wrap %v", err, failure)
	}
}

func TestDecodeFromAttemptsStayLogarithmic(t *testing.T) {
	// Mostly string table: every key is distinct.
	fields := make([]token.Member, 20000)
	for index := range fields {
		fields[index] = token.Field(fmt.Sprintf("key-%05d", index), token.Integer(int64(index)))
	}
	document := token.Object(fields...)
	data, err := Encode(document)
	if err != nil {
		t.Fatal(err)
	}
	limit := 2 * bits.Len(uint(len(data)))

	sources := map[string]func() io.Reader{
		"one byte at a time": func() io.Reader { return iotest.OneByteReader(bytes.NewReader(data)) },
		"halves":             func() io.Reader { return iotest.HalfReader(bytes.NewReader(data)) },
	}
	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			decoded, attempts, err := decodeFrom(source(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if !token.Equal(decoded, document) {
				t.Error("decoded document differs")
			}
			if attempts > limit {
				t.Errorf("%d decode attempts for %d bytes, want at most %d", attempts, len(data), limit)
			}
		})
	}
}

func TestWriterConcurrentUse(t *testing.T) {
	writer := NewWriter(WithWriterByteOrder(BigEndian))
	want, err := writer.WriteDocument(sampleDocument())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for worker := range results {
		wg.Go(func() {
			data, err := writer.WriteDocument(sampleDocument())
			if err != nil {
				t.Error(err)
				return
			}
			results[worker] = data
		})
	}
	wg.Wait()

	for worker, data := range results {
		if !bytes.Equal(data, want) {
			t.Errorf("worker %d produced a different encoding", worker)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	document := sampleDocument()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Encode(document); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	data, err := Encode(sampleDocument())
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}
