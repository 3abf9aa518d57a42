// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/digest"
)

type digestParams struct {
	globalParams
	readerParams
	wrapParams
	cli.JSONOutput
	From  string `flag:"from"  desc:"input format (default: by extension, else detected)"`
	Short bool   `flag:"short" desc:"print the short bx- form"`
}

func digestCommand(env *Environment) *cli.Command {
	var params digestParams

	return &cli.Command{
		Name:    "digest",
		Summary: "Print the content digest of documents",
		Description: `Print a BLAKE3 digest of each document's content.

The digest is computed over a canonical BXML encoding of the decoded
tree, with object members sorted by key, so the same data stored as
JSON, YAML or BXML digests identically regardless of member order,
formatting, compression or encryption.`,
		Usage:  "bxml digest [flags] [files...]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Check that two files hold the same data",
				Command:     "bxml digest settings.yaml settings.bxml",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			s, err := env.open(params.globalParams, logger)
			if err != nil {
				return err
			}
			return s.digest(params, args)
		},
	}
}

type digestResult struct {
	Input  string `json:"input"`
	Format string `json:"format"`
	Digest string `json:"digest"`
}

func (s *session) digest(params digestParams, args []string) error {
	mode, err := s.mode(params.readerParams)
	if err != nil {
		return err
	}
	registry, err := s.registry(mode)
	if err != nil {
		return err
	}
	inputs, err := s.readInputs(args, params.Hex)
	if err != nil {
		return err
	}

	results := make([]digestResult, 0, len(inputs))
	for _, in := range inputs {
		value, strategy, err := s.decode(registry, in, params.From, params.Identity)
		if err != nil {
			return err
		}
		hash, err := digest.Sum(value)
		if err != nil {
			return cli.Validation("%s: %w", in.name, err)
		}
		text := hash.String()
		if params.Short {
			text = hash.Short()
		}
		results = append(results, digestResult{Input: in.name, Format: strategy.Name(), Digest: text})
	}

	if done, err := params.EmitJSON(s.env.Stdout, results); done {
		return err
	}
	for _, result := range results {
		fmt.Fprintf(s.env.Stdout, "%s  %s\n", result.Digest, result.Input)
	}
	return nil
}
