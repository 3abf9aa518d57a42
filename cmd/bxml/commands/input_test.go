// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"testing"

	"github.com/bureau-foundation/bxml/lib/format"
)

func TestDecodeHexInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "contiguous", input: "42584d4c", want: []byte("BXML")},
		{name: "spaced pairs", input: "42 58 4d 4c", want: []byte("BXML")},
		{name: "newlines and tabs", input: "42\t58\n4D\r\n4C\n", want: []byte("BXML")},
		{name: "empty", input: " \n\t", wantErr: true},
		{name: "odd length", input: "425", wantErr: true},
		{name: "not hex", input: "zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeHexInput([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("decodeHexInput(%q) = %x, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeHexInput(%q): %v", tt.input, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("decodeHexInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	registry := format.NewDefaultRegistry(format.Options{})
	bxmlTarget, _ := registry.Lookup("bxml")
	yamlTarget, _ := registry.Lookup("yaml")

	tests := []struct {
		input  string
		target format.Strategy
		suffix string
		want   string
	}{
		{"data/report.json", bxmlTarget, "", "report.bxml"},
		{"report.json.zst", yamlTarget, "", "report.yaml"},
		{"report.bxml.zst.age", yamlTarget, ".lz4", "report.yaml.lz4"},
		{"archive.v2.toml", bxmlTarget, ".zst.age", "archive.v2.bxml.zst.age"},
		{"README", bxmlTarget, "", "README.bxml"},
		{".hidden", yamlTarget, "", ".hidden.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := outputName(registry, tt.input, tt.target, tt.suffix); got != tt.want {
				t.Errorf("outputName(%q, %s, %q) = %q, want %q", tt.input, tt.target.Name(), tt.suffix, got, tt.want)
			}
		})
	}
}

func TestStrategyFor(t *testing.T) {
	registry := format.NewDefaultRegistry(format.Options{})

	tests := []struct {
		name  string
		input input
		from  string
		want  string
	}{
		{"explicit wins", input{name: "a.json", data: []byte("a: 1")}, "yaml", "yaml"},
		{"extension", input{name: "a.toml", data: []byte(`{"a":1}`)}, "", "toml"},
		{"wrapped extension", input{name: "a.yml.zst", data: []byte("a: 1")}, "", "yaml"},
		{"detected from stdin", input{name: stdinName, data: []byte(`{"a":1}`)}, "", "json"},
		{"detected for unknown extension", input{name: "a.dat", data: []byte("BXML\x01\x01\x00\x00")}, "", "bxml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := strategyFor(registry, &tt.input, tt.from)
			if err != nil {
				t.Fatalf("strategyFor: %v", err)
			}
			if strategy.Name() != tt.want {
				t.Errorf("strategyFor = %s, want %s", strategy.Name(), tt.want)
			}
		})
	}

	if _, err := strategyFor(registry, &input{name: "a.json"}, "xml"); err == nil {
		t.Error("unknown --from should fail")
	}
}
