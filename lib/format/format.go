// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package format converts [token.Value] trees to and from the document
// formats bxml understands: JSON (with and without comments), YAML,
// CBOR, MessagePack, TOML, and BXML itself.
//
// Each format is a [Strategy]. A [Registry] holds the strategies a
// caller has configured and picks one by name, by file extension, or by
// sniffing the leading bytes of the input.
package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/token"
)

// ErrUnknownFormat is returned when no strategy matches a name, an
// extension, or the content of an input.
var ErrUnknownFormat = errors.New("unknown format")

// ErrUnsupportedValue is returned by Encode when the tree holds a value
// the target format cannot represent (a null in TOML, a NaN in JSON).
var ErrUnsupportedValue = errors.New("value not representable in format")

// maxNesting bounds the recursion of the text decoders. It matches the
// deepest tree the BXML writer accepts.
const maxNesting = bxml.DefaultMaxDepth

// Strategy encodes and decodes one document format.
type Strategy interface {
	// Name is the identifier used on the command line and in config.
	Name() string

	// Extensions lists file extensions, with the leading dot, that
	// select this strategy.
	Extensions() []string

	// Binary reports whether encoded output may contain bytes that are
	// unsafe to write to a terminal.
	Binary() bool

	Decode(data []byte) (token.Value, error)
	Encode(value token.Value) ([]byte, error)
}

// Options configure the strategies built by [NewDefaultRegistry].
type Options struct {
	// Indent pretty-prints JSON output.
	Indent bool

	// Writer and Reader are passed through to the BXML strategy.
	Writer []bxml.WriterOption
	Reader []bxml.ReaderOption
}

// Registry is an ordered set of strategies.
type Registry struct {
	strategies  []Strategy
	byName      map[string]Strategy
	byExtension map[string]Strategy
}

// NewRegistry returns a registry holding strategies. A later strategy
// with the same name or extension as an earlier one replaces it.
func NewRegistry(strategies ...Strategy) *Registry {
	registry := &Registry{
		byName:      make(map[string]Strategy),
		byExtension: make(map[string]Strategy),
	}
	for _, strategy := range strategies {
		registry.Register(strategy)
	}
	return registry
}

// NewDefaultRegistry returns a registry with every built-in strategy.
func NewDefaultRegistry(options Options) *Registry {
	jsonStrategy := &JSON{Indent: options.Indent}
	return NewRegistry(
		&BXML{Writer: options.Writer, Reader: options.Reader},
		jsonStrategy,
		&JSONC{JSON: jsonStrategy},
		YAML{},
		CBOR{},
		MsgPack{},
		TOML{},
	)
}

// Register adds strategy, replacing any strategy of the same name.
func (r *Registry) Register(strategy Strategy) {
	name := strategy.Name()
	if _, exists := r.byName[name]; exists {
		r.strategies = slices.DeleteFunc(r.strategies, func(existing Strategy) bool {
			return existing.Name() == name
		})
	}
	r.strategies = append(r.strategies, strategy)
	r.byName[name] = strategy
	for _, extension := range strategy.Extensions() {
		r.byExtension[strings.ToLower(extension)] = strategy
	}
}

// Lookup returns the strategy called name.
func (r *Registry) Lookup(name string) (Strategy, error) {
	strategy, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownFormat, name, strings.Join(r.Names(), ", "))
	}
	return strategy, nil
}

// ForPath returns the strategy registered for the extension of path.
// Encryption and compression suffixes (".age", ".zst", ".lz4") are
// skipped, so "report.json.zst" selects JSON.
func (r *Registry) ForPath(path string) (Strategy, error) {
	name := strings.ToLower(filepath.Base(path))
	for {
		extension := filepath.Ext(name)
		if extension == "" {
			return nil, fmt.Errorf("%w: %q has no recognized extension", ErrUnknownFormat, path)
		}
		if strategy, ok := r.byExtension[extension]; ok {
			return strategy, nil
		}
		if !isWrapperExtension(extension) {
			return nil, fmt.Errorf("%w: no format registered for extension %q", ErrUnknownFormat, extension)
		}
		name = strings.TrimSuffix(name, extension)
	}
}

func isWrapperExtension(extension string) bool {
	switch extension {
	case ".age", ".zst", ".zstd", ".lz4":
		return true
	default:
		return false
	}
}

// Names returns the registered strategy names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.strategies))
	for index, strategy := range r.strategies {
		names[index] = strategy.Name()
	}
	return names
}

// Strategies returns the registered strategies in registration order.
func (r *Registry) Strategies() []Strategy {
	return slices.Clone(r.strategies)
}

// cborSelfDescribe is the tag 55799 prefix some CBOR producers emit.
var cborSelfDescribe = []byte{0xD9, 0xD9, 0xF7}

// Detect guesses the format of data from its leading bytes and returns
// the matching registered strategy. Binary formats are recognized by
// magic or by the initial byte of a map; text formats by their first
// significant character.
func (r *Registry) Detect(data []byte) (Strategy, error) {
	name := detectName(data)
	if name == "" {
		return nil, fmt.Errorf("%w: cannot detect the format of %d bytes of input", ErrUnknownFormat, len(data))
	}
	strategy, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: input looks like %s, which is not registered", ErrUnknownFormat, name)
	}
	return strategy, nil
}

func detectName(data []byte) string {
	switch {
	case len(data) == 0:
		return ""
	case bytes.HasPrefix(data, []byte(bxml.Magic)):
		return "bxml"
	case bytes.HasPrefix(data, cborSelfDescribe):
		return "cbor"
	}

	if !utf8.Valid(data) {
		switch first := data[0]; {
		// MessagePack fixmap, map16, map32, array16, array32.
		case first >= 0x80 && first <= 0x8F, first == 0xDE, first == 0xDF, first == 0xDC, first == 0xDD:
			return "msgpack"
		// CBOR map.
		case first >= 0xA0 && first <= 0xBF:
			return "cbor"
		}
		return ""
	}

	text := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(text) == 0 {
		return ""
	}
	switch text[0] {
	case '{', '[':
		if json.Valid(text) {
			return "json"
		}
		if text[0] == '[' && looksLikeTOMLTable(text) {
			return "toml"
		}
		return "jsonc"
	case '/':
		return "jsonc"
	}
	if looksLikeTOML(text) {
		return "toml"
	}
	return "yaml"
}

// looksLikeTOMLTable reports whether text opens with a TOML table header
// such as "[server]" or "[[hosts]]" rather than a JSON array.
func looksLikeTOMLTable(text []byte) bool {
	line, _, _ := bytes.Cut(text, []byte("\n"))
	line = bytes.TrimSpace(line)
	if !bytes.HasSuffix(line, []byte("]")) {
		return false
	}
	inner := bytes.Trim(line, "[]")
	if len(inner) == 0 {
		return false
	}
	for _, c := range inner {
		if !isBareKeyByte(c) && c != '.' && c != '"' && c != ' ' {
			return false
		}
	}
	return true
}

// looksLikeTOML reports whether the first significant line of text is a
// TOML "key = value" assignment. YAML uses "key: value" instead.
func looksLikeTOML(text []byte) bool {
	for line := range bytes.Lines(text) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		key, _, found := bytes.Cut(line, []byte("="))
		if !found {
			return false
		}
		key = bytes.TrimSpace(key)
		if len(key) == 0 {
			return false
		}
		for _, c := range key {
			if !isBareKeyByte(c) && c != '.' && c != '"' {
				return false
			}
		}
		return true
	}
	return false
}

func isBareKeyByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}
