// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/config"
	"github.com/bureau-foundation/bxml/lib/format"
)

// Environment is what the command tree reads from and writes to. main
// wires the process's streams; tests wire buffers.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Level is the logger's level, lowered to debug by --verbose. May
	// be nil.
	Level *slog.LevelVar
}

// ProcessEnvironment returns an Environment over the process's
// standard streams.
func ProcessEnvironment(level *slog.LevelVar) *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Level:  level,
	}
}

// globalParams are accepted by every command.
type globalParams struct {
	Config  string `flag:"config"    desc:"configuration file (default: $BXML_CONFIG)"`
	Verbose bool   `flag:"verbose,v" desc:"log debug detail"`
}

// readerParams select how BXML input is decoded.
type readerParams struct {
	Strict  bool `flag:"strict"  desc:"decode BXML in strict mode"`
	Lenient bool `flag:"lenient" desc:"decode BXML in lenient mode"`
}

// wrapParams control how input is unwrapped.
type wrapParams struct {
	Identity string `flag:"identity,i" desc:"age identity file for encrypted input"`
	Hex      bool   `flag:"hex,x"      desc:"treat input as hex-encoded bytes"`
}

// session is one command run's resolved configuration.
type session struct {
	env    *Environment
	config *config.Config
	logger *slog.Logger
}

// open applies global flags and loads configuration.
func (e *Environment) open(global globalParams, logger *slog.Logger) (*session, error) {
	if global.Verbose && e.Level != nil {
		e.Level.Set(slog.LevelDebug)
	}

	cfg, err := loadConfig(global.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}
	logger.Debug("configuration loaded",
		"writer_byte_order", cfg.Writer.ByteOrder,
		"reader_mode", cfg.Reader.Mode,
		"output_format", cfg.Output.Format,
	)
	return &session{env: e, config: cfg, logger: logger}, nil
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
		if errors.Is(err, config.ErrNotConfigured) {
			return config.Default(), nil
		}
	}
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, cli.FileError(err, "%w", err)
		}
		return nil, cli.Validation("%w", err)
	}
	return cfg, nil
}

// mode resolves --strict and --lenient against the configured mode.
func (s *session) mode(params readerParams) (bxml.Mode, error) {
	switch {
	case params.Strict && params.Lenient:
		return 0, cli.Validation("--strict and --lenient are mutually exclusive")
	case params.Strict:
		return bxml.Strict, nil
	case params.Lenient:
		return bxml.Lenient, nil
	default:
		return s.config.Mode(), nil
	}
}

// registry builds the format strategies for this run. writer options
// are appended after the configured ones, so flags win.
func (s *session) registry(mode bxml.Mode, writer ...bxml.WriterOption) (*format.Registry, error) {
	configured, err := s.config.WriterOptions()
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return format.NewDefaultRegistry(format.Options{
		Indent: !s.config.Output.Compact,
		Writer: append(configured, writer...),
		Reader: s.config.ReaderOptions(mode),
	}), nil
}
