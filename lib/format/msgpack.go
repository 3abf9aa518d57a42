// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/bureau-foundation/bxml/lib/token"
)

// MsgPack reads and writes MessagePack. Maps and arrays are walked
// directly on the wire, so member order survives in both directions.
// Dates use the timestamp extension type (-1). Map keys must be strings.
type MsgPack struct{}

func (MsgPack) Name() string         { return "msgpack" }
func (MsgPack) Extensions() []string { return []string{".msgpack", ".mpk"} }
func (MsgPack) Binary() bool         { return true }

func (MsgPack) Decode(data []byte) (token.Value, error) {
	reader := bytes.NewReader(data)
	decoder := msgpack.NewDecoder(reader)
	value, err := readMsgPack(decoder, 1)
	if err != nil {
		return token.Value{}, fmt.Errorf("msgpack: %w", err)
	}
	if reader.Len() > 0 {
		return token.Value{}, fmt.Errorf("msgpack: %d bytes after the top-level value", reader.Len())
	}
	return value, nil
}

func readMsgPack(decoder *msgpack.Decoder, depth int) (token.Value, error) {
	if depth > maxNesting {
		return token.Value{}, fmt.Errorf("nesting deeper than %d", maxNesting)
	}
	code, err := decoder.PeekCode()
	if err != nil {
		return token.Value{}, err
	}

	switch {
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		length, err := decoder.DecodeMapLen()
		if err != nil {
			return token.Value{}, err
		}
		members := make([]token.Member, 0, length)
		for range length {
			key, err := decoder.DecodeString()
			if err != nil {
				return token.Value{}, fmt.Errorf("map key: %w", err)
			}
			value, err := readMsgPack(decoder, depth+1)
			if err != nil {
				return token.Value{}, err
			}
			members = append(members, token.Field(key, value))
		}
		return token.Object(members...), nil

	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		length, err := decoder.DecodeArrayLen()
		if err != nil {
			return token.Value{}, err
		}
		elements := make([]token.Value, 0, length)
		for range length {
			element, err := readMsgPack(decoder, depth+1)
			if err != nil {
				return token.Value{}, err
			}
			elements = append(elements, element)
		}
		return token.Array(elements...), nil

	default:
		scalar, err := decoder.DecodeInterface()
		if err != nil {
			return token.Value{}, err
		}
		return token.FromAny(scalar)
	}
}

func (MsgPack) Encode(value token.Value) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := msgpack.NewEncoder(&buffer)
	if err := writeMsgPack(encoder, value); err != nil {
		return nil, fmt.Errorf("msgpack: %w", err)
	}
	return buffer.Bytes(), nil
}

func writeMsgPack(encoder *msgpack.Encoder, value token.Value) error {
	switch value.Kind() {
	case token.KindObject:
		members := value.Members()
		if err := encoder.EncodeMapLen(len(members)); err != nil {
			return err
		}
		for _, member := range members {
			if err := encoder.EncodeString(member.Key); err != nil {
				return err
			}
			if err := writeMsgPack(encoder, member.Value); err != nil {
				return err
			}
		}
		return nil
	case token.KindArray:
		elements := value.Elements()
		if err := encoder.EncodeArrayLen(len(elements)); err != nil {
			return err
		}
		for _, element := range elements {
			if err := writeMsgPack(encoder, element); err != nil {
				return err
			}
		}
		return nil
	case token.KindBool:
		return encoder.EncodeBool(value.BoolValue())
	case token.KindInteger:
		return encoder.EncodeInt(value.IntegerValue())
	case token.KindFloat:
		return encoder.EncodeFloat64(value.FloatValue())
	case token.KindString:
		return encoder.EncodeString(value.StringValue())
	case token.KindBytes:
		raw := value.BytesValue()
		if raw == nil {
			// A nil slice would encode as nil.
			raw = []byte{}
		}
		return encoder.EncodeBytes(raw)
	case token.KindDate:
		return encoder.EncodeTime(value.DateValue())
	default:
		return encoder.EncodeNil()
	}
}
