// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/bxml"
)

type validateParams struct {
	globalParams
	wrapParams
	cli.JSONOutput
	Lenient bool `flag:"lenient" desc:"accept what lenient decoding accepts"`
}

func validateCommand(env *Environment) *cli.Command {
	var params validateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Check BXML documents for well-formedness",
		Description: `Decode each BXML document and report whether it is valid.

Validation is strict unless --lenient is given: the stricter limits
apply, and anomalies lenient decoding tolerates (unknown type names,
reserved header bits, trailing bytes) are errors.

Exits 1 if any document is invalid.`,
		Usage:  "bxml validate [flags] [files...]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Validate every document in a directory",
				Command:     "bxml validate archive/*.bxml",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			s, err := env.open(params.globalParams, logger)
			if err != nil {
				return err
			}
			return s.validate(params, args)
		},
	}
}

type validation struct {
	Input string `json:"input"`
	Valid bool   `json:"valid"`
	Nodes int    `json:"nodes,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *session) validate(params validateParams, args []string) error {
	mode := bxml.Strict
	if params.Lenient {
		mode = bxml.Lenient
	}
	inputs, err := s.readInputs(args, params.Hex)
	if err != nil {
		return err
	}

	results := make([]validation, 0, len(inputs))
	invalid := 0
	for _, in := range inputs {
		result := validation{Input: in.name}
		nodes, err := s.validateOne(in, params.Identity, mode)
		if err != nil {
			var tool *cli.ToolError
			if errors.As(err, &tool) && tool.Category != cli.CategoryValidation {
				return err
			}
			result.Error = err.Error()
			invalid++
		} else {
			result.Valid = true
			result.Nodes = nodes
		}
		results = append(results, result)
	}

	if done, err := params.EmitJSON(s.env.Stdout, results); done {
		if err != nil {
			return err
		}
	} else {
		for _, result := range results {
			if result.Valid {
				fmt.Fprintf(s.env.Stdout, "%s: valid (%d nodes)\n", result.Input, result.Nodes)
			} else {
				fmt.Fprintf(s.env.Stdout, "%s: invalid: %s\n", result.Input, result.Error)
			}
		}
	}

	if invalid > 0 {
		s.logger.Debug("validation failed", "invalid", invalid, "total", len(inputs))
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func (s *session) validateOne(in *input, identity string, mode bxml.Mode) (int, error) {
	if err := s.unwrap(in, identity); err != nil {
		return 0, err
	}
	if !bytes.HasPrefix(in.data, []byte(bxml.Magic)) {
		return 0, cli.Validation("not a BXML document")
	}
	reader := bxml.NewReader(in.data, s.config.ReaderOptions(mode)...)
	if err := reader.Initialize(); err != nil {
		return 0, cli.Validation("%w", err)
	}
	if _, err := reader.ReadDocument(); err != nil {
		return 0, cli.Validation("%w", err)
	}
	return reader.Stats().Nodes, nil
}
