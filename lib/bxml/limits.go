// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bxml

import "fmt"

// Mode selects how forgiving the reader is. Both modes enforce limits;
// they differ in the ceilings applied and in whether structural
// anomalies are tolerated.
type Mode uint8

const (
	// Lenient applies generous limits, infers a missing type attribute
	// from the node's value or children, trusts the value tag over a
	// conflicting type name, and ignores extra attributes and trailing
	// bytes.
	Lenient Mode = iota

	// Strict applies tight limits and rejects every anomaly Lenient
	// tolerates.
	Strict
)

// String returns the mode name as used in configuration files.
func (mode Mode) String() string {
	switch mode {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("unknown(%d)", mode)
	}
}

// ParseMode parses "strict" or "lenient".
func ParseMode(name string) (Mode, error) {
	switch name {
	case "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return 0, fmt.Errorf("unknown reader mode %q (want strict or lenient)", name)
	}
}

// Limits are the ceilings the reader enforces while decoding. Crossing
// any of them is a hard failure; nothing is truncated to fit.
type Limits struct {
	// MaxDepth is the deepest node nesting allowed. The root node is at
	// depth 1; compressed-array elements sit one level below their array.
	MaxDepth int `yaml:"max_depth"`

	// MaxStrings is the largest string table accepted.
	MaxStrings int `yaml:"max_strings"`

	// MaxStringLength is the longest string table entry in bytes.
	MaxStringLength int `yaml:"max_string_length"`

	// MaxAttributes is the most attribute pairs one node may carry.
	MaxAttributes int `yaml:"max_attributes"`

	// MaxChildren is the most children one node may carry.
	MaxChildren int `yaml:"max_children"`

	// MaxBytesLength is the longest raw byte value in bytes.
	MaxBytesLength int `yaml:"max_bytes_length"`
}

// DefaultMaxDepth is the writer's depth ceiling and the lenient reader's.
const DefaultMaxDepth = 1000

// LenientLimits returns the generous defaults used in lenient mode.
func LenientLimits() Limits {
	return Limits{
		MaxDepth:        DefaultMaxDepth,
		MaxStrings:      65535,
		MaxStringLength: 65535,
		MaxAttributes:   16384,
		MaxChildren:     maxChildCount,
		MaxBytesLength:  64 << 20,
	}
}

// StrictLimits returns the tight defaults used in strict mode.
func StrictLimits() Limits {
	return Limits{
		MaxDepth:        100,
		MaxStrings:      1024,
		MaxStringLength: 1024,
		MaxAttributes:   8,
		MaxChildren:     512,
		MaxBytesLength:  1 << 20,
	}
}

// LimitsFor returns the default limits of mode.
func LimitsFor(mode Mode) Limits {
	if mode == Strict {
		return StrictLimits()
	}
	return LenientLimits()
}

// Merge returns l with every positive field of override applied.
func (l Limits) Merge(override Limits) Limits {
	if override.MaxDepth > 0 {
		l.MaxDepth = override.MaxDepth
	}
	if override.MaxStrings > 0 {
		l.MaxStrings = override.MaxStrings
	}
	if override.MaxStringLength > 0 {
		l.MaxStringLength = override.MaxStringLength
	}
	if override.MaxAttributes > 0 {
		l.MaxAttributes = override.MaxAttributes
	}
	if override.MaxChildren > 0 {
		l.MaxChildren = override.MaxChildren
	}
	if override.MaxBytesLength > 0 {
		l.MaxBytesLength = override.MaxBytesLength
	}
	return l
}

// Validate rejects non-positive limits and limits the wire format
// cannot express anyway.
func (l Limits) Validate() error {
	checks := []struct {
		name    string
		value   int
		ceiling int
	}{
		{"max_depth", l.MaxDepth, 0},
		{"max_strings", l.MaxStrings, 65535},
		{"max_string_length", l.MaxStringLength, 65535},
		{"max_attributes", l.MaxAttributes, 65535},
		{"max_children", l.MaxChildren, maxChildCount},
		{"max_bytes_length", l.MaxBytesLength, 0},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", check.name, check.value)
		}
		if check.ceiling > 0 && check.value > check.ceiling {
			return fmt.Errorf("%s %d exceeds the wire format maximum %d", check.name, check.value, check.ceiling)
		}
	}
	return nil
}
