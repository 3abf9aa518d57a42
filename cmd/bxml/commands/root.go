// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/version"
)

// Root builds the complete bxml command tree over env.
func Root(env *Environment) *cli.Command {
	return &cli.Command{
		Name: "bxml",
		Description: `bxml: binary tree documents.

Encode, decode, convert and inspect BXML, a compact binary encoding for
JSON-shaped data with a deduplicated string table and compressed
homogeneous arrays. Converts between BXML, JSON, JSONC, YAML, TOML, CBOR
and MessagePack, with optional zstd/LZ4 compression and age encryption
of the output.

Defaults come from the YAML file named by $BXML_CONFIG or --config.`,
		HelpOutput: env.Stderr,
		Subcommands: []*cli.Command{
			encodeCommand(env),
			decodeCommand(env),
			convertCommand(env),
			inspectCommand(env),
			validateCommand(env),
			digestCommand(env),
			formatsCommand(env),
			keygenCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					_, err := fmt.Fprintf(env.Stdout, "bxml %s\n", version.Full())
					return err
				},
			},
		},
	}
}
