// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes content digests of token trees. A digest is
// the BLAKE3 keyed hash of the tree's canonical BXML encoding, so two
// documents with the same content have the same digest whichever format
// they were read from.
//
// The canonical encoding sorts object members by key (stable, so
// repeated keys keep their relative order), writes little-endian, and
// disables compressed arrays. Dates hash by instant in UTC.
package digest

import (
	"cmp"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/token"
)

// Size is the digest length in bytes.
const Size = 32

// Hash is a BLAKE3 digest of a canonical document.
type Hash [Size]byte

// documentDomainKey is the ASCII domain name zero-padded to 32 bytes.
// Changing it changes every digest.
var documentDomainKey = [32]byte{
	'b', 'x', 'm', 'l', '.', 'd', 'o', 'c', 'u', 'm', 'e', 'n', 't', 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Canonical returns value with every object's members sorted by key
// and every date converted to UTC.
func Canonical(value token.Value) token.Value {
	switch value.Kind() {
	case token.KindObject:
		members := slices.Clone(value.Members())
		slices.SortStableFunc(members, func(a, b token.Member) int {
			return cmp.Compare(a.Key, b.Key)
		})
		for index := range members {
			members[index].Value = Canonical(members[index].Value)
		}
		return token.Object(members...)
	case token.KindArray:
		elements := make([]token.Value, len(value.Elements()))
		for index, element := range value.Elements() {
			elements[index] = Canonical(element)
		}
		return token.Array(elements...)
	case token.KindDate:
		return token.Date(value.DateValue().UTC())
	default:
		return value
	}
}

// Encode returns the canonical BXML encoding of value.
func Encode(value token.Value) ([]byte, error) {
	return bxml.Encode(Canonical(value),
		bxml.WithArrayCompression(false),
		bxml.WithWriterByteOrder(bxml.LittleEndian),
	)
}

// Sum returns the digest of value.
func Sum(value token.Value) (Hash, error) {
	encoded, err := Encode(value)
	if err != nil {
		return Hash{}, fmt.Errorf("canonical encoding: %w", err)
	}
	return SumEncoded(encoded), nil
}

// SumEncoded hashes bytes that are already a canonical encoding.
func SumEncoded(encoded []byte) Hash {
	// NewKeyed fails only for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(documentDomainKey[:])
	if err != nil {
		panic("digest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(encoded)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// String returns the 64-character hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the "bx-" reference: the first 12 hex characters.
func (h Hash) Short() string {
	return "bx-" + hex.EncodeToString(h[:6])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Parse parses the 64-character hex form.
func Parse(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != Size {
		return hash, fmt.Errorf("digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(hash[:], decoded)
	return hash, nil
}
