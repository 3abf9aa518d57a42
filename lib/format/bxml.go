// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/token"
)

// BXML adapts the bxml codec to the Strategy interface.
type BXML struct {
	Writer []bxml.WriterOption
	Reader []bxml.ReaderOption
}

func (*BXML) Name() string         { return "bxml" }
func (*BXML) Extensions() []string { return []string{".bxml"} }
func (*BXML) Binary() bool         { return true }

func (b *BXML) Decode(data []byte) (token.Value, error) {
	return bxml.Decode(data, b.Reader...)
}

func (b *BXML) Encode(value token.Value) ([]byte, error) {
	return bxml.Encode(value, b.Writer...)
}
