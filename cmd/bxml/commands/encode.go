// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/format"
)

type encodeParams struct {
	globalParams
	wrapParams
	outputParams
	From             string `flag:"from"               desc:"input format (default: by extension, else detected)"`
	BigEndian        bool   `flag:"big-endian"         desc:"write multi-byte fields big-endian"`
	NoCompressArrays bool   `flag:"no-compress-arrays" desc:"write every array element as a full node"`
	MaxDepth         int    `flag:"max-depth"          desc:"nesting ceiling (default: writer.max_depth from config)"`
	RootName         string `flag:"root-name"          desc:"name of the root node (default: writer.root_name from config)"`
}

func encodeCommand(env *Environment) *cli.Command {
	var params encodeParams

	return &cli.Command{
		Name:    "encode",
		Summary: "Encode a document as BXML",
		Description: `Read a document in any supported format and write it as BXML.

Writer settings default to the config file's writer section; the flags
here override them for one run. BXML is binary, so output goes to
--output or a redirected stdout, never to a terminal.`,
		Usage:  "bxml encode [flags] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Encode JSON from stdin",
				Command:     "bxml encode < document.json > document.bxml",
			},
			{
				Description: "Big-endian, without compressed arrays",
				Command:     "bxml encode --big-endian --no-compress-arrays -o doc.bxml doc.yaml",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			s, err := env.open(params.globalParams, logger)
			if err != nil {
				return err
			}
			return s.encode(params, args)
		},
	}
}

func (s *session) encode(params encodeParams, args []string) error {
	var overrides []bxml.WriterOption
	if params.BigEndian {
		overrides = append(overrides, bxml.WithWriterByteOrder(bxml.BigEndian))
	}
	if params.NoCompressArrays {
		overrides = append(overrides, bxml.WithArrayCompression(false))
	}
	if params.MaxDepth < 0 {
		return cli.Validation("--max-depth must be positive, got %d", params.MaxDepth)
	}
	if params.MaxDepth > 0 {
		overrides = append(overrides, bxml.WithMaxDepth(params.MaxDepth))
	}
	if params.RootName != "" {
		overrides = append(overrides, bxml.WithRootName(params.RootName))
	}

	registry, err := s.registry(s.config.Mode(), overrides...)
	if err != nil {
		return err
	}
	target, err := bxmlStrategy(registry)
	if err != nil {
		return err
	}
	wrap, err := s.wrapping(params.outputParams)
	if err != nil {
		return err
	}
	in, err := s.readInput(args, params.Hex)
	if err != nil {
		return err
	}

	plan := &conversion{
		registry: registry,
		target:   target,
		wrap:     wrap,
		params: convertParams{
			wrapParams:   params.wrapParams,
			outputParams: params.outputParams,
			From:         params.From,
		},
	}
	return s.convertInput(plan, in, params.Output)
}

// bxmlStrategy returns the registry's BXML strategy.
func bxmlStrategy(registry *format.Registry) (format.Strategy, error) {
	strategy, err := registry.Lookup("bxml")
	if err != nil {
		return nil, cli.Internal("%w", err)
	}
	return strategy, nil
}
