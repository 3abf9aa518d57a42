// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/bxml/lib/token"
)

// JSON reads and writes RFC 8259 JSON. Object member order is kept in
// both directions. Numbers without a fraction or exponent that fit
// int64 decode as integers; everything else as floats. JSON has no byte
// or date type: bytes encode as base64 strings and dates as RFC 3339
// strings, and both decode back as plain strings.
type JSON struct {
	// Indent pretty-prints output with two-space indentation.
	Indent bool
}

func (*JSON) Name() string         { return "json" }
func (*JSON) Extensions() []string { return []string{".json"} }
func (*JSON) Binary() bool         { return false }

func (*JSON) Decode(data []byte) (token.Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	value, err := readJSON(decoder, 1)
	if err != nil {
		return token.Value{}, fmt.Errorf("json: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return token.Value{}, fmt.Errorf("json: unexpected data after the top-level value at offset %d", decoder.InputOffset())
	}
	return value, nil
}

func readJSON(decoder *json.Decoder, depth int) (token.Value, error) {
	if depth > maxNesting {
		return token.Value{}, fmt.Errorf("nesting deeper than %d at offset %d", maxNesting, decoder.InputOffset())
	}
	next, err := decoder.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return token.Value{}, io.ErrUnexpectedEOF
		}
		return token.Value{}, err
	}

	switch value := next.(type) {
	case json.Delim:
		switch value {
		case '{':
			var members []token.Member
			for decoder.More() {
				key, err := decoder.Token()
				if err != nil {
					return token.Value{}, err
				}
				member, err := readJSON(decoder, depth+1)
				if err != nil {
					return token.Value{}, err
				}
				members = append(members, token.Field(key.(string), member))
			}
			if _, err := decoder.Token(); err != nil {
				return token.Value{}, err
			}
			return token.Object(members...), nil
		case '[':
			var elements []token.Value
			for decoder.More() {
				element, err := readJSON(decoder, depth+1)
				if err != nil {
					return token.Value{}, err
				}
				elements = append(elements, element)
			}
			if _, err := decoder.Token(); err != nil {
				return token.Value{}, err
			}
			return token.Array(elements...), nil
		default:
			return token.Value{}, fmt.Errorf("unexpected %q at offset %d", value, decoder.InputOffset())
		}
	case json.Number:
		return parseNumber(string(value))
	case string:
		return token.String(value), nil
	case bool:
		return token.Bool(value), nil
	case nil:
		return token.Null(), nil
	default:
		return token.Value{}, fmt.Errorf("unexpected token %v", next)
	}
}

// parseNumber keeps integral literals as integers when they fit int64.
func parseNumber(literal string) (token.Value, error) {
	if !strings.ContainsAny(literal, ".eE") {
		if integer, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return token.Integer(integer), nil
		}
	}
	float, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return token.Value{}, fmt.Errorf("number %s: %w", literal, err)
	}
	return token.Float(float), nil
}

func (j *JSON) Encode(value token.Value) ([]byte, error) {
	var buffer bytes.Buffer
	if err := writeJSON(&buffer, value, "$"); err != nil {
		return nil, err
	}
	if !j.Indent {
		buffer.WriteByte('\n')
		return buffer.Bytes(), nil
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, buffer.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("json: indent: %w", err)
	}
	indented.WriteByte('\n')
	return indented.Bytes(), nil
}

func writeJSON(buffer *bytes.Buffer, value token.Value, path string) error {
	switch value.Kind() {
	case token.KindNull:
		buffer.WriteString("null")
	case token.KindBool:
		buffer.WriteString(strconv.FormatBool(value.BoolValue()))
	case token.KindInteger:
		buffer.WriteString(strconv.FormatInt(value.IntegerValue(), 10))
	case token.KindFloat:
		float := value.FloatValue()
		if math.IsNaN(float) || math.IsInf(float, 0) {
			return fmt.Errorf("json: %w: %v at %s", ErrUnsupportedValue, float, path)
		}
		buffer.WriteString(formatFloat(float))
	case token.KindString:
		writeJSONString(buffer, value.StringValue())
	case token.KindBytes:
		writeJSONString(buffer, base64.StdEncoding.EncodeToString(value.BytesValue()))
	case token.KindDate:
		writeJSONString(buffer, value.DateValue().Format(time.RFC3339Nano))
	case token.KindObject:
		buffer.WriteByte('{')
		for index, member := range value.Members() {
			if index > 0 {
				buffer.WriteByte(',')
			}
			writeJSONString(buffer, member.Key)
			buffer.WriteByte(':')
			if err := writeJSON(buffer, member.Value, path+"."+member.Key); err != nil {
				return err
			}
		}
		buffer.WriteByte('}')
	case token.KindArray:
		buffer.WriteByte('[')
		for index, element := range value.Elements() {
			if index > 0 {
				buffer.WriteByte(',')
			}
			if err := writeJSON(buffer, element, path+"["+strconv.Itoa(index)+"]"); err != nil {
				return err
			}
		}
		buffer.WriteByte(']')
	}
	return nil
}

// writeJSONString writes s as a JSON string literal without the HTML
// escaping json.Marshal applies.
func writeJSONString(buffer *bytes.Buffer, s string) {
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = encoder.Encode(s)
	// Drop the newline Encode appends.
	buffer.Truncate(buffer.Len() - 1)
}

// formatFloat renders float in the shortest form that parses back to the
// same value, with ".0" appended to integral values so they stay floats
// when read back.
func formatFloat(float float64) string {
	text := strconv.FormatFloat(float, 'g', -1, 64)
	if !strings.ContainsAny(text, ".eEnN") {
		text += ".0"
	}
	return text
}

// JSONC reads JSON with comments and trailing commas, as written in
// hand-maintained configuration files. Output is plain JSON.
type JSONC struct {
	JSON *JSON
}

func (*JSONC) Name() string         { return "jsonc" }
func (*JSONC) Extensions() []string { return []string{".jsonc"} }
func (*JSONC) Binary() bool         { return false }

func (j *JSONC) Decode(data []byte) (token.Value, error) {
	return j.JSON.Decode(jsonc.ToJSON(data))
}

func (j *JSONC) Encode(value token.Value) ([]byte, error) {
	return j.JSON.Encode(value)
}
