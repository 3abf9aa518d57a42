// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the bxml tool's configuration.
//
// Configuration comes from a single YAML file named by:
//   - the BXML_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// There is no discovery: without either, the built-in defaults apply.
// Command-line flags override file values, which override defaults.
//
// The file may carry "strict" and "lenient" sections that override the
// reader limits of that mode. They are applied when the reader options
// are built, so a --strict flag on the command line picks up the strict
// overrides even when the file's reader mode is lenient.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/compress"
	"github.com/bureau-foundation/bxml/lib/sealed"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "BXML_CONFIG"

// ErrNotConfigured is returned by Load when BXML_CONFIG is unset.
var ErrNotConfigured = errors.New(EnvironmentVariable + " environment variable not set")

// Config is the complete tool configuration.
type Config struct {
	// Writer configures BXML encoding.
	Writer WriterConfig `yaml:"writer"`

	// Reader configures BXML decoding.
	Reader ReaderConfig `yaml:"reader"`

	// Output configures what convert writes.
	Output OutputConfig `yaml:"output"`

	// Per-mode limit overrides. Zero fields keep the mode's default.
	Strict  *bxml.Limits `yaml:"strict,omitempty"`
	Lenient *bxml.Limits `yaml:"lenient,omitempty"`
}

// WriterConfig configures BXML encoding.
type WriterConfig struct {
	// CompressArrays enables the compressed array layout for
	// homogeneous scalar arrays. Default: true.
	CompressArrays bool `yaml:"compress_arrays"`

	// ByteOrder is "little" or "big". Default: little.
	ByteOrder string `yaml:"byte_order"`

	// MaxDepth is the writer's nesting ceiling. Default: 1000.
	MaxDepth int `yaml:"max_depth"`

	// RootName names the root node. Default: root.
	RootName string `yaml:"root_name"`
}

// ReaderConfig configures BXML decoding.
type ReaderConfig struct {
	// Mode is "strict" or "lenient". Default: lenient.
	Mode string `yaml:"mode"`
}

// OutputConfig configures conversion output.
type OutputConfig struct {
	// Format is the default target format name. Default: json.
	Format string `yaml:"format"`

	// Compact writes JSON on one line instead of indenting it.
	Compact bool `yaml:"compact"`

	// Compression is none, lz4, zstd or auto. Default: none.
	Compression string `yaml:"compression"`

	// Recipients are age public keys output is encrypted to. Empty
	// disables encryption.
	Recipients []string `yaml:"recipients"`

	// Identity is the path of an age identity file used to decrypt
	// encrypted input.
	Identity string `yaml:"identity"`

	// Armor writes encrypted output as ASCII armor.
	Armor bool `yaml:"armor"`

	// Color is auto, always or never. Default: auto.
	Color string `yaml:"color"`
}

// Color modes for OutputConfig.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default returns the built-in configuration. LoadFile decodes the file
// over it, so fields the file omits keep these values.
func Default() *Config {
	return &Config{
		Writer: WriterConfig{
			CompressArrays: true,
			ByteOrder:      bxml.LittleEndian.String(),
			MaxDepth:       bxml.DefaultMaxDepth,
			RootName:       bxml.DefaultRootName,
		},
		Reader: ReaderConfig{
			Mode: bxml.Lenient.String(),
		},
		Output: OutputConfig{
			Format:      "json",
			Compression: compress.None.String(),
			Color:       ColorAuto,
		},
	}
}

// Load loads the file named by BXML_CONFIG. It returns ErrNotConfigured
// when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, ErrNotConfigured
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. Unknown keys are errors, so a
// misspelled option fails loudly. ${VAR} and ${VAR:-default} references
// in the identity path and recipient list are expanded from the
// environment.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.Output.Identity = expandVars(c.Output.Identity)
	recipients := c.Output.Recipients[:0]
	for _, recipient := range c.Output.Recipients {
		// A reference to an unset variable drops the entry rather than
		// leaving an empty recipient behind.
		if expanded := expandVars(recipient); expanded != "" {
			recipients = append(recipients, expanded)
		}
	}
	c.Output.Recipients = recipients
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := bxml.ParseByteOrder(c.Writer.ByteOrder); err != nil {
		errs = append(errs, fmt.Errorf("writer.byte_order: %w", err))
	}
	if c.Writer.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("writer.max_depth must be positive, got %d", c.Writer.MaxDepth))
	}
	if c.Writer.RootName == "" {
		errs = append(errs, errors.New("writer.root_name must not be empty"))
	}

	if _, err := bxml.ParseMode(c.Reader.Mode); err != nil {
		errs = append(errs, fmt.Errorf("reader.mode: %w", err))
	}
	for _, mode := range []bxml.Mode{bxml.Strict, bxml.Lenient} {
		if err := c.Limits(mode).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mode, err))
		}
	}

	if c.Output.Format == "" {
		errs = append(errs, errors.New("output.format must not be empty"))
	}
	if c.Output.Compression != compress.Auto {
		if _, err := compress.Parse(c.Output.Compression); err != nil {
			errs = append(errs, fmt.Errorf("output.compression: %w", err))
		}
	}
	if len(c.Output.Recipients) > 0 {
		if _, err := sealed.ParseRecipients(c.Output.Recipients); err != nil {
			errs = append(errs, fmt.Errorf("output.recipients: %w", err))
		}
	}
	colors := []string{ColorAuto, ColorAlways, ColorNever}
	if !slices.Contains(colors, c.Output.Color) {
		errs = append(errs, fmt.Errorf("output.color must be one of: %v", colors))
	}

	return errors.Join(errs...)
}

// Mode returns the configured reader mode, lenient if unparseable.
func (c *Config) Mode() bxml.Mode {
	mode, err := bxml.ParseMode(c.Reader.Mode)
	if err != nil {
		return bxml.Lenient
	}
	return mode
}

// Limits returns the defaults of mode with the file's overrides for
// that mode applied.
func (c *Config) Limits(mode bxml.Mode) bxml.Limits {
	limits := bxml.LimitsFor(mode)
	override := c.Lenient
	if mode == bxml.Strict {
		override = c.Strict
	}
	if override != nil {
		limits = limits.Merge(*override)
	}
	return limits
}

// WriterOptions converts the writer section to codec options.
func (c *Config) WriterOptions() ([]bxml.WriterOption, error) {
	order, err := bxml.ParseByteOrder(c.Writer.ByteOrder)
	if err != nil {
		return nil, fmt.Errorf("writer.byte_order: %w", err)
	}
	return []bxml.WriterOption{
		bxml.WithArrayCompression(c.Writer.CompressArrays),
		bxml.WithWriterByteOrder(order),
		bxml.WithMaxDepth(c.Writer.MaxDepth),
		bxml.WithRootName(c.Writer.RootName),
	}, nil
}

// ReaderOptions returns codec options for mode with its limits.
func (c *Config) ReaderOptions(mode bxml.Mode) []bxml.ReaderOption {
	return []bxml.ReaderOption{
		bxml.WithMode(mode),
		bxml.WithLimits(c.Limits(mode)),
	}
}
