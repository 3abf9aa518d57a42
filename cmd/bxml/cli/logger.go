// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger commands receive.
// When output is a terminal it uses slog.TextHandler for people; when
// it is piped or redirected (CI, scripts) it uses slog.JSONHandler.
//
// level is shared with the command tree so --verbose can lower it after
// flag parsing:
//
//	level := new(slog.LevelVar)
//	logger := cli.NewCommandLogger(os.Stderr, level)
//	// later, in a command:
//	level.Set(slog.LevelDebug)
func NewCommandLogger(output io.Writer, level slog.Leveler) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(output) {
		return slog.New(slog.NewTextHandler(output, options))
	}
	return slog.New(slog.NewJSONHandler(output, options))
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
