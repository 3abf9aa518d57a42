// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command bxml encodes, decodes and converts BXML documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/cmd/bxml/commands"
)

func main() {
	if err := run(); err != nil {
		// validate prints its own verdict and exits 1 quietly.
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := new(slog.LevelVar)
	logger := cli.NewCommandLogger(os.Stderr, level)
	return commands.Root(commands.ProcessEnvironment(level)).Execute(ctx, os.Args[1:], logger)
}
