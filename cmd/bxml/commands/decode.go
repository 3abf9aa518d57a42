// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/token"
)

type decodeParams struct {
	globalParams
	readerParams
	wrapParams
	outputParams
	To string `flag:"to,t" desc:"output format (default: output.format from config)"`
}

func decodeCommand(env *Environment) *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode BXML to a text format",
		Description: `Read a BXML document and write it as JSON, or the format named by
--to.

Plain BXML on stdin is decoded incrementally as it arrives. Compressed
or encrypted input is unwrapped first. --strict rejects structural
anomalies that lenient decoding tolerates and applies tighter limits.`,
		Usage:  "bxml decode [flags] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Decode to pretty JSON",
				Command:     "bxml decode document.bxml",
			},
			{
				Description: "Strict decode to YAML",
				Command:     "bxml decode --strict --to yaml < document.bxml",
			},
			{
				Description: "Decode hex-encoded BXML",
				Command:     "echo '42 58 4d 4c 01 01 00 00 ...' | bxml decode --hex",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			s, err := env.open(params.globalParams, logger)
			if err != nil {
				return err
			}
			return s.decodeBXML(params, args)
		},
	}
}

func (s *session) decodeBXML(params decodeParams, args []string) error {
	if len(args) > 1 {
		return cli.Validation("expected at most one input file, got %d", len(args))
	}
	mode, err := s.mode(params.readerParams)
	if err != nil {
		return err
	}
	registry, err := s.registry(mode)
	if err != nil {
		return err
	}
	targetName := params.To
	if targetName == "" {
		targetName = s.config.Output.Format
	}
	target, err := registry.Lookup(targetName)
	if err != nil {
		return cli.Validation("--to: %w", err)
	}
	wrap, err := s.wrapping(params.outputParams)
	if err != nil {
		return err
	}

	var value token.Value
	streamed := false
	if (len(args) == 0 || args[0] == stdinName) && !params.Hex {
		value, streamed, err = s.decodeStream(mode)
		if err != nil {
			return err
		}
	}
	if !streamed {
		in, err := s.readInput(args, params.Hex)
		if err != nil {
			return err
		}
		if err := s.unwrap(in, params.Identity); err != nil {
			return err
		}
		if !bytes.HasPrefix(in.data, []byte(bxml.Magic)) {
			return cli.Validation("%s is not a BXML document; use convert for other formats", in.name)
		}
		source, err := bxmlStrategy(registry)
		if err != nil {
			return err
		}
		value, err = source.Decode(in.data)
		if err != nil {
			return cli.Validation("%s: %w", in.name, err)
		}
	}

	encoded, err := target.Encode(value)
	if err != nil {
		return cli.Validation("encoding %s: %w", target.Name(), err)
	}
	wrapped, _, err := wrap.apply(encoded)
	if err != nil {
		return err
	}
	return s.writeOutput(params.Output, wrapped, binaryOutput(target, wrap), lexerFor(target), params.Force)
}

// decodeStream decodes stdin with bxml.DecodeFrom when it starts with
// the BXML magic. Otherwise it reports streamed=false and replaces
// Stdin with the buffered reader, which still yields every byte.
func (s *session) decodeStream(mode bxml.Mode) (token.Value, bool, error) {
	reader := bufio.NewReader(s.env.Stdin)
	magic, err := reader.Peek(len(bxml.Magic))
	if err != nil && !errors.Is(err, io.EOF) {
		return token.Value{}, false, cli.Internal("read stdin: %w", err)
	}
	if !bytes.Equal(magic, []byte(bxml.Magic)) {
		s.env = &Environment{
			Stdin:  reader,
			Stdout: s.env.Stdout,
			Stderr: s.env.Stderr,
			Level:  s.env.Level,
		}
		return token.Value{}, false, nil
	}

	value, err := bxml.DecodeFrom(reader, s.config.ReaderOptions(mode)...)
	if err != nil {
		return token.Value{}, false, cli.Validation("stdin: %w", err)
	}
	s.logger.Debug("decoded stdin incrementally", "mode", mode.String())
	return value, true, nil
}
