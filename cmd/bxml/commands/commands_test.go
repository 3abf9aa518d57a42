// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/compress"
	"github.com/bureau-foundation/bxml/lib/config"
	"github.com/bureau-foundation/bxml/lib/format"
	"github.com/bureau-foundation/bxml/lib/sealed"
	"github.com/bureau-foundation/bxml/lib/testutil"
	"github.com/bureau-foundation/bxml/lib/token"
)

const sampleJSON = `{
  "name": "probe-7",
  "active": true,
  "ratio": 0.5,
  "readings": [1, 2, 3, 5, 8],
  "tags": ["north", "deep"],
  "calibration": {"offset": -3, "note": null}
}`

// harness runs the command tree against in-memory streams.
type harness struct {
	env    *Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, stdin []byte) *harness {
	t.Helper()
	testutil.Isolate(t)
	h := &harness{stdout: new(bytes.Buffer), stderr: new(bytes.Buffer)}
	h.env = &Environment{
		Stdin:  bytes.NewReader(stdin),
		Stdout: h.stdout,
		Stderr: h.stderr,
	}
	return h
}

// run executes one command line on a fresh tree, so parameter structs
// never carry over between runs.
func (h *harness) run(args ...string) error {
	return Root(h.env).Execute(context.Background(), args, nil)
}

func mustRun(t *testing.T, h *harness, args ...string) {
	t.Helper()
	if err := h.run(args...); err != nil {
		t.Fatalf("bxml %s: %v\nstderr: %s", strings.Join(args, " "), err, h.stderr.String())
	}
}

func decodeJSON(t *testing.T, data []byte) token.Value {
	t.Helper()
	value, err := (&format.JSON{}).Decode(data)
	if err != nil {
		t.Fatalf("decoding JSON output: %v\n%s", err, data)
	}
	return value
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	encoder := newHarness(t, []byte(sampleJSON))
	mustRun(t, encoder, "encode", "--from", "json")
	encoded := encoder.stdout.Bytes()
	if !bytes.HasPrefix(encoded, []byte(bxml.Magic)) {
		t.Fatalf("encode output starts %q, want BXML magic", encoded[:min(8, len(encoded))])
	}

	decoder := newHarness(t, encoded)
	mustRun(t, decoder, "decode")

	want := decodeJSON(t, []byte(sampleJSON))
	got := decodeJSON(t, decoder.stdout.Bytes())
	if !token.Equal(got, want) {
		t.Errorf("roundtrip mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestEncodeWriterFlags(t *testing.T) {
	h := newHarness(t, []byte(sampleJSON))
	mustRun(t, h, "encode", "--from", "json", "--big-endian", "--no-compress-arrays", "--root-name", "sensor")

	reader := bxml.NewReader(h.stdout.Bytes())
	if err := reader.Initialize(); err != nil {
		t.Fatal(err)
	}
	if _, err := reader.ReadDocument(); err != nil {
		t.Fatal(err)
	}
	header := reader.Header()
	if header.ByteOrder != bxml.BigEndian || header.CompressedArrays {
		t.Errorf("header = %+v, want big-endian without compressed arrays", header)
	}
	if reader.RootName() != "sensor" {
		t.Errorf("root name = %q, want sensor", reader.RootName())
	}
}

func TestEncodeMaxDepth(t *testing.T) {
	h := newHarness(t, []byte(`{"a":{"b":{"c":{"d":1}}}}`))
	err := h.run("encode", "--from", "json", "--max-depth", "3")
	if !errors.Is(err, bxml.ErrMaxDepthExceeded) {
		t.Fatalf("encode with --max-depth 3 = %v, want ErrMaxDepthExceeded", err)
	}
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("category = %q, want validation", cli.CategoryOf(err))
	}
}

func TestDecodeRejectsNonBXML(t *testing.T) {
	h := newHarness(t, []byte(sampleJSON))
	err := h.run("decode")
	if err == nil || !strings.Contains(err.Error(), "not a BXML document") {
		t.Fatalf("decode of JSON = %v, want not-a-BXML error", err)
	}
}

func TestDecodeStrictRejectsTrailingBytes(t *testing.T) {
	document, err := bxml.Encode(decodeJSON(t, []byte(sampleJSON)))
	if err != nil {
		t.Fatal(err)
	}
	padded := append(document, 0x00, 0x01)

	if err := newHarness(t, padded).run("decode", "--lenient"); err != nil {
		t.Errorf("lenient decode with trailing bytes: %v", err)
	}
	err = newHarness(t, padded).run("decode", "--strict")
	if !errors.Is(err, bxml.ErrMalformed) {
		t.Errorf("strict decode with trailing bytes = %v, want ErrMalformed", err)
	}
	if err := newHarness(t, padded).run("decode", "--strict", "--lenient"); err == nil {
		t.Error("--strict with --lenient should fail")
	}
}

func TestDecodeHex(t *testing.T) {
	document, err := bxml.Encode(token.Object(token.Field("answer", token.Integer(42))))
	if err != nil {
		t.Fatal(err)
	}
	encoded := hex.EncodeToString(document)
	var hexText strings.Builder
	for index := 0; index < len(encoded); index += 2 {
		if index > 0 {
			hexText.WriteByte(' ')
		}
		hexText.WriteString(encoded[index : index+2])
	}

	h := newHarness(t, []byte(hexText.String()+"\n"))
	mustRun(t, h, "decode", "--hex", "--to", "yaml")
	if got := strings.TrimSpace(h.stdout.String()); got != "answer: 42" {
		t.Errorf("decode --hex --to yaml = %q", got)
	}
}

func TestConvertToFile(t *testing.T) {
	directory := t.TempDir()
	input := testutil.WriteFile(t, directory, "sensor.json", []byte(sampleJSON))
	output := filepath.Join(directory, "sensor.yaml")

	h := newHarness(t, nil)
	mustRun(t, h, "convert", "--to", "yaml", "-o", output, input)

	value, err := format.YAML{}.Decode(testutil.ReadFile(t, output))
	if err != nil {
		t.Fatal(err)
	}
	if !token.Equal(value, decodeJSON(t, []byte(sampleJSON))) {
		t.Errorf("YAML output differs from input: %s", value)
	}

	// A second run must not clobber the file.
	err = newHarness(t, nil).run("convert", "--to", "yaml", "-o", output, input)
	if cli.CategoryOf(err) != cli.CategoryConflict {
		t.Errorf("second convert = %v (category %q), want conflict", err, cli.CategoryOf(err))
	}
	mustRun(t, newHarness(t, nil), "convert", "--to", "yaml", "-o", output, "--force", input)
}

func TestConvertOutputDir(t *testing.T) {
	directory := t.TempDir()
	inputs := []string{
		testutil.WriteFile(t, directory, "in/first.json", []byte(sampleJSON)),
		testutil.WriteFile(t, directory, "in/second.yaml", []byte("name: second\ncount: 2\n")),
		testutil.WriteFile(t, directory, "in/third.toml", []byte("name = \"third\"\n")),
	}
	outputDir := filepath.Join(directory, "out")

	h := newHarness(t, nil)
	mustRun(t, h, append([]string{"convert", "--to", "bxml", "-d", outputDir, "-j", "2"}, inputs...)...)

	for _, name := range []string{"first.bxml", "second.bxml", "third.bxml"} {
		data := testutil.ReadFile(t, filepath.Join(outputDir, name))
		if _, err := bxml.Decode(data, bxml.WithMode(bxml.Strict)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestConvertOutputDirErrors(t *testing.T) {
	directory := t.TempDir()
	good := testutil.WriteFile(t, directory, "good.json", []byte(`{"ok":true}`))
	bad := testutil.WriteFile(t, directory, "bad.json", []byte(`{"ok":`))
	outputDir := filepath.Join(directory, "out")

	err := newHarness(t, nil).run("convert", "--to", "yaml", "-d", outputDir, good, bad)
	if err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Fatalf("convert with a broken input = %v, want an error naming bad.json", err)
	}
	if _, statErr := os.Stat(filepath.Join(outputDir, "good.yaml")); statErr != nil {
		t.Errorf("good input was not converted: %v", statErr)
	}

	ignoring := filepath.Join(directory, "ignoring")
	if err := newHarness(t, nil).run("convert", "--to", "yaml", "-d", ignoring, "--ignore-errors", good, bad); err != nil {
		t.Fatalf("--ignore-errors still failed: %v", err)
	}
	placeholder, err := format.YAML{}.Decode(testutil.ReadFile(t, filepath.Join(ignoring, "bad.yaml")))
	if err != nil {
		t.Fatal(err)
	}
	if placeholder.Kind() != token.KindObject || placeholder.Len() != 0 {
		t.Errorf("placeholder for bad.json = %s, want an empty object", placeholder)
	}
}

func TestConvertArgumentErrors(t *testing.T) {
	directory := t.TempDir()
	first := testutil.WriteFile(t, directory, "a.json", []byte(`{}`))
	second := testutil.WriteFile(t, directory, "b.json", []byte(`{}`))

	tests := []struct {
		name string
		args []string
	}{
		{"several without output dir", []string{"convert", first, second}},
		{"output with several", []string{"convert", "-o", "x", first, second}},
		{"output and output dir", []string{"convert", "-o", "x", "-d", directory, first}},
		{"unknown target", []string{"convert", "--to", "xml", first}},
		{"unknown compression", []string{"convert", "--compress", "gzip", first}},
		{"bad recipient", []string{"convert", "-r", "not-a-key", first}},
		{"stdin in output dir", []string{"convert", "-d", directory, first, "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newHarness(t, nil).run(tt.args...)
			if cli.CategoryOf(err) != cli.CategoryValidation {
				t.Errorf("err = %v (category %q), want validation", err, cli.CategoryOf(err))
			}
		})
	}
}

func TestConvertCompressedEncrypted(t *testing.T) {
	directory := t.TempDir()
	identityPath := filepath.Join(directory, "identity.txt")

	keys := newHarness(t, nil)
	mustRun(t, keys, "keygen", "-o", identityPath)
	publicKey := strings.TrimSpace(strings.TrimPrefix(keys.stderr.String(), "Public key: "))
	if !strings.HasPrefix(publicKey, "age1") {
		t.Fatalf("keygen printed %q, want an age public key", keys.stderr.String())
	}

	input := testutil.WriteFile(t, directory, "sensor.json", []byte(sampleJSON))
	output := filepath.Join(directory, "sensor.bxml.zst.age")
	mustRun(t, newHarness(t, nil), "convert", "--to", "bxml", "--compress", "zstd", "-r", publicKey, "-o", output, input)

	wrapped := testutil.ReadFile(t, output)
	if !sealed.IsEncrypted(wrapped) {
		t.Fatal("output is not age-encrypted")
	}
	identities, err := sealed.ReadIdentityFile(identityPath)
	if err != nil {
		t.Fatal(err)
	}
	plaintext, err := sealed.Decrypt(wrapped, identities...)
	if err != nil {
		t.Fatal(err)
	}
	if compress.Detect(plaintext) != compress.Zstd {
		t.Errorf("plaintext is %s-framed, want zstd", compress.Detect(plaintext))
	}

	// Without an identity the file cannot be read.
	if err := newHarness(t, nil).run("decode", output); err == nil || !strings.Contains(err.Error(), "--identity") {
		t.Errorf("decode without identity = %v", err)
	}

	decoder := newHarness(t, nil)
	mustRun(t, decoder, "decode", "-i", identityPath, output)
	if !token.Equal(decodeJSON(t, decoder.stdout.Bytes()), decodeJSON(t, []byte(sampleJSON))) {
		t.Errorf("decrypted document differs:\n%s", decoder.stdout.String())
	}
}

func TestConfigFile(t *testing.T) {
	directory := t.TempDir()
	configPath := testutil.WriteFile(t, directory, "bxml.yaml", []byte(`
writer:
  byte_order: big
output:
  format: yaml
`))
	h := newHarness(t, []byte(`{"a": 1}`))
	t.Setenv("BXML_CONFIG", configPath)

	mustRun(t, h, "convert", "--from", "json")
	if got := strings.TrimSpace(h.stdout.String()); got != "a: 1" {
		t.Errorf("configured output format not applied: %q", got)
	}

	encoder := newHarness(t, []byte(`{"a": 1}`))
	mustRun(t, encoder, "encode", "--from", "json", "--config", configPath)
	if flags := encoder.stdout.Bytes()[5]; flags&bxml.FlagBigEndian == 0 {
		t.Errorf("flags = %#x, want big-endian from config", flags)
	}

	broken := testutil.WriteFile(t, directory, "broken.yaml", []byte("writer:\n  byte_order: middle\n"))
	err := newHarness(t, []byte(`{}`)).run("convert", "--config", broken)
	if cli.CategoryOf(err) != cli.CategoryValidation || !strings.Contains(err.Error(), "byte_order") {
		t.Errorf("invalid config = %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	err := newHarness(t, nil).run("conver")
	if err == nil || !strings.Contains(err.Error(), `did you mean "convert"`) {
		t.Errorf("err = %v, want a suggestion", err)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t, nil)
	mustRun(t, h, "version")
	if !strings.HasPrefix(h.stdout.String(), "bxml ") {
		t.Errorf("version output = %q", h.stdout.String())
	}
}

func TestColorFormatter(t *testing.T) {
	h := newHarness(t, nil)
	tests := []struct {
		color    string
		terminal bool
		want     string
	}{
		{config.ColorNever, true, ""},
		{config.ColorAuto, false, ""},
		{config.ColorAlways, false, "terminal256"},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			cfg := config.Default()
			cfg.Output.Color = tt.color
			s := &session{env: h.env, config: cfg}
			if got := s.colorFormatter(tt.terminal); got != tt.want {
				t.Errorf("colorFormatter(%v) = %q, want %q", tt.terminal, got, tt.want)
			}
		})
	}
}

func TestHighlightedOutput(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "bxml.yaml", []byte("output:\n  color: always\n"))

	h := newHarness(t, []byte(`{"a": 1}`))
	mustRun(t, h, "convert", "--config", configPath, "--to", "json")
	if !strings.Contains(h.stdout.String(), "\x1b[") {
		t.Errorf("color: always produced no escape sequences: %q", h.stdout.String())
	}

	plain := newHarness(t, []byte(`{"a": 1}`))
	mustRun(t, plain, "convert", "--to", "json")
	if strings.Contains(plain.stdout.String(), "\x1b[") {
		t.Errorf("piped output was highlighted: %q", plain.stdout.String())
	}
}
