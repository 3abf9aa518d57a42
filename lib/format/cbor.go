// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/bureau-foundation/bxml/lib/token"
)

// cborEncMode is Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer and float encodings, no indefinite-length
// items. The same tree always produces identical bytes.
var cborEncMode cbor.EncMode

// cborDecMode decodes any-typed maps as map[string]any, so documents with
// non-string keys are rejected rather than producing keys the token model
// cannot express.
var cborDecMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Dates are tag 0 text strings with nanosecond precision, which
	// decode back to time.Time.
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TimeTag = cbor.EncTagRequired
	cborEncMode, err = encOptions.EncMode()
	if err != nil {
		panic("format: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels: maxNesting,
	}.DecMode()
	if err != nil {
		panic("format: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR reads and writes RFC 8949 CBOR. Output uses Core Deterministic
// Encoding, which sorts map keys: member order is not preserved and
// duplicate keys keep their first value. Byte strings, integers and
// tag 0/1 times map directly onto token kinds.
type CBOR struct{}

func (CBOR) Name() string         { return "cbor" }
func (CBOR) Extensions() []string { return []string{".cbor"} }
func (CBOR) Binary() bool         { return true }

func (CBOR) Decode(data []byte) (token.Value, error) {
	var decoded any
	if err := cborDecMode.Unmarshal(data, &decoded); err != nil {
		return token.Value{}, fmt.Errorf("cbor: %w", err)
	}
	value, err := token.FromAny(decoded)
	if err != nil {
		return token.Value{}, fmt.Errorf("cbor: %w", err)
	}
	return value, nil
}

func (CBOR) Encode(value token.Value) ([]byte, error) {
	data, err := cborEncMode.Marshal(token.ToAny(value))
	if err != nil {
		return nil, fmt.Errorf("cbor: %w", err)
	}
	return data, nil
}

// DiagnoseCBOR returns the CBOR diagnostic notation (RFC 8949 §8) for
// the entire contents of data.
func DiagnoseCBOR(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
