// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/bureau-foundation/bxml/lib/token"
)

// TOML reads and writes TOML 1.0. A TOML document is always a table, so
// only object roots encode, and TOML has no null. Tables come back with
// their keys sorted. Bytes encode as base64 strings.
type TOML struct{}

func (TOML) Name() string         { return "toml" }
func (TOML) Extensions() []string { return []string{".toml"} }
func (TOML) Binary() bool         { return false }

func (TOML) Decode(data []byte) (token.Value, error) {
	var decoded map[string]any
	if _, err := toml.Decode(string(data), &decoded); err != nil {
		return token.Value{}, fmt.Errorf("toml: %w", err)
	}
	if decoded == nil {
		return token.Object(), nil
	}
	value, err := token.FromAny(decoded)
	if err != nil {
		return token.Value{}, fmt.Errorf("toml: %w", err)
	}
	return value, nil
}

func (TOML) Encode(value token.Value) ([]byte, error) {
	if value.Kind() != token.KindObject {
		return nil, fmt.Errorf("toml: %w: the root must be an object, not %s", ErrUnsupportedValue, value.Kind())
	}
	table, err := toTOML(value, "$")
	if err != nil {
		return nil, err
	}
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(table); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return buffer.Bytes(), nil
}

func toTOML(value token.Value, path string) (any, error) {
	switch value.Kind() {
	case token.KindNull:
		return nil, fmt.Errorf("toml: %w: null at %s", ErrUnsupportedValue, path)
	case token.KindBool:
		return value.BoolValue(), nil
	case token.KindInteger:
		return value.IntegerValue(), nil
	case token.KindFloat:
		return value.FloatValue(), nil
	case token.KindString:
		return value.StringValue(), nil
	case token.KindBytes:
		return base64.StdEncoding.EncodeToString(value.BytesValue()), nil
	case token.KindDate:
		return value.DateValue(), nil
	case token.KindObject:
		table := make(map[string]any, value.Len())
		for _, member := range value.Members() {
			if _, exists := table[member.Key]; exists {
				continue
			}
			converted, err := toTOML(member.Value, path+"."+member.Key)
			if err != nil {
				return nil, err
			}
			table[member.Key] = converted
		}
		return table, nil
	default:
		elements := make([]any, 0, value.Len())
		for index, element := range value.Elements() {
			converted, err := toTOML(element, path+"["+strconv.Itoa(index)+"]")
			if err != nil {
				return nil, err
			}
			elements = append(elements, converted)
		}
		return elements, nil
	}
}
