// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/sealed"
)

type keygenParams struct {
	Output string `flag:"output,o" desc:"write the identity file here (default: stdout)"`
	Force  bool   `flag:"force,f"  desc:"overwrite an existing identity file"`
}

func keygenCommand(env *Environment) *cli.Command {
	var params keygenParams

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age keypair for encrypted output",
		Description: `Generate an x25519 age keypair.

The identity file (private key) goes to --output, created with mode
0600, or to stdout. The public key is printed to stderr: pass it to
--recipient or list it under output.recipients.`,
		Usage:  "bxml keygen [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Create an identity file",
				Command:     "bxml keygen -o ~/.config/bxml/identity.txt",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return keygen(env, params, logger)
		},
	}
}

func keygen(env *Environment, params keygenParams, logger *slog.Logger) error {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return cli.Internal("%w", err)
	}
	identity := []byte(keypair.IdentityFile())

	if params.Output == "" || params.Output == stdinName {
		if _, err := env.Stdout.Write(identity); err != nil {
			return cli.Internal("write stdout: %w", err)
		}
	} else {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if !params.Force {
			flags |= os.O_EXCL
		}
		file, err := os.OpenFile(params.Output, flags, 0o600)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return cli.Conflict("%s already exists; use --force to overwrite", params.Output)
			}
			return cli.FileError(err, "create %s: %w", params.Output, err)
		}
		if _, err := file.Write(identity); err != nil {
			file.Close()
			return cli.FileError(err, "write %s: %w", params.Output, err)
		}
		if err := file.Close(); err != nil {
			return cli.FileError(err, "close %s: %w", params.Output, err)
		}
		logger.Info("identity written", "path", params.Output)
	}

	fmt.Fprintf(env.Stderr, "Public key: %s\n", keypair.PublicKey)
	return nil
}
