// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package token defines the generic document tree every format strategy
// reads and produces.
//
// A [Value] is a tagged variant over null, boolean, integer, float,
// string, raw bytes, date, object and array. Objects keep their members
// in insertion order, so a document converted JSON → BXML → YAML comes
// out with its keys where the author put them. Trees are owned strictly
// top-down: nothing is shared between parents and nothing needs cycle
// detection.
//
// Values are immutable once built. Construct them with the kind-specific
// constructors:
//
//	document := token.Object(
//	    token.Field("name", token.String("sensor-7")),
//	    token.Field("readings", token.Array(token.Integer(3), token.Integer(4))),
//	)
//
// [FromAny] and [ToAny] bridge to the map[string]any / []any shapes that
// encoding/json, CBOR and MessagePack decoders produce. [Equal] compares
// two trees structurally, including member order.
package token
