// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// FromAny converts the generic shapes produced by reflection-based
// decoders (encoding/json, fxamacker/cbor, msgpack, toml) into a tree.
//
// Go maps have no order, so map keys become object members sorted
// byte-wise. Maps with non-string keys (CBOR and MessagePack allow them)
// have their keys rendered with fmt.Sprint. Unsigned integers above
// math.MaxInt64 are rejected rather than silently wrapped.
func FromAny(input any) (Value, error) {
	switch value := input.(type) {
	case nil:
		return Null(), nil
	case Value:
		return value, nil
	case bool:
		return Bool(value), nil
	case int:
		return Integer(int64(value)), nil
	case int8:
		return Integer(int64(value)), nil
	case int16:
		return Integer(int64(value)), nil
	case int32:
		return Integer(int64(value)), nil
	case int64:
		return Integer(value), nil
	case uint:
		return fromUnsigned(uint64(value))
	case uint8:
		return Integer(int64(value)), nil
	case uint16:
		return Integer(int64(value)), nil
	case uint32:
		return Integer(int64(value)), nil
	case uint64:
		return fromUnsigned(value)
	case float32:
		return Float(float64(value)), nil
	case float64:
		return Float(value), nil
	case json.Number:
		if integer, err := value.Int64(); err == nil {
			return Integer(integer), nil
		}
		float, err := value.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %q is neither int64 nor float64", value.String())
		}
		return Float(float), nil
	case string:
		return String(value), nil
	case []byte:
		return Bytes(value), nil
	case time.Time:
		return Date(value), nil
	case map[string]any:
		members := make([]Member, 0, len(value))
		for _, key := range slices.Sorted(maps.Keys(value)) {
			converted, err := FromAny(value[key])
			if err != nil {
				return Value{}, fmt.Errorf("member %q: %w", key, err)
			}
			members = append(members, Member{Key: key, Value: converted})
		}
		return Object(members...), nil
	case map[any]any:
		keyed := make(map[string]any, len(value))
		for key, element := range value {
			keyed[fmt.Sprint(key)] = element
		}
		return FromAny(keyed)
	case []any:
		elements := make([]Value, 0, len(value))
		for index, element := range value {
			converted, err := FromAny(element)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", index, err)
			}
			elements = append(elements, converted)
		}
		return Array(elements...), nil
	case []map[string]any:
		elements := make([]Value, 0, len(value))
		for index, element := range value {
			converted, err := FromAny(element)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", index, err)
			}
			elements = append(elements, converted)
		}
		return Array(elements...), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", input)
	}
}

func fromUnsigned(value uint64) (Value, error) {
	if value > math.MaxInt64 {
		return Value{}, fmt.Errorf("integer %d overflows int64", value)
	}
	return Integer(int64(value)), nil
}

// ToAny converts a tree into map[string]any / []any shapes for
// reflection-based encoders. Member order is lost; callers that need it
// walk the tree directly.
func ToAny(value Value) any {
	switch value.kind {
	case KindNull:
		return nil
	case KindBool:
		return value.boolean
	case KindInteger:
		return value.integer
	case KindFloat:
		return value.float
	case KindString:
		return value.text
	case KindBytes:
		if value.raw == nil {
			// Encoders treat a nil slice as null.
			return []byte{}
		}
		return value.raw
	case KindDate:
		return value.date
	case KindObject:
		result := make(map[string]any, len(value.members))
		for _, member := range value.members {
			if _, exists := result[member.Key]; exists {
				continue
			}
			result[member.Key] = ToAny(member.Value)
		}
		return result
	case KindArray:
		result := make([]any, len(value.elements))
		for index, element := range value.elements {
			result[index] = ToAny(element)
		}
		return result
	default:
		return nil
	}
}
