// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"strings"
	"testing"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/cmd/bxml/commands"
)

// TestCommandTree walks the production command tree and checks that
// every runnable command documents itself and that its parameter
// struct builds a flag set without panicking.
func TestCommandTree(t *testing.T) {
	root := commands.Root(&commands.Environment{
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
	walkCommands(root, nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if command.Run == nil {
			return
		}
		if command.Summary == "" {
			t.Errorf("%s: missing Summary", name)
		}
		if command.Params != nil {
			if command.Usage == "" {
				t.Errorf("%s: missing Usage", name)
			}
			if flags := cli.FlagsFromParams(command.Name, command.Params()); flags == nil {
				t.Errorf("%s: no flag set", name)
			}
		}
	})
}

// walkCommands recursively visits every command in the tree with its
// accumulated path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := append(append([]string(nil), path...), command.Name)
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}
