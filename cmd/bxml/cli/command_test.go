// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func run(handler func(args []string)) func(context.Context, []string, *slog.Logger) error {
	return func(_ context.Context, args []string, _ *slog.Logger) error {
		handler(args)
		return nil
	}
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "bxml",
		Subcommands: []*Command{
			{Name: "encode", Run: run(func([]string) { called = "encode" })},
			{Name: "decode", Run: run(func([]string) { called = "decode" })},
		},
	}

	if err := root.Execute(context.Background(), []string{"decode"}, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "decode" {
		t.Errorf("dispatched to %q, want %q", called, "decode")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var receivedArgs []string

	root := &Command{
		Name: "bxml",
		Subcommands: []*Command{
			{
				Name: "outer",
				Subcommands: []*Command{
					{Name: "inner", Run: run(func(args []string) { receivedArgs = args })},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"outer", "inner", "extra-arg"}, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

type testParams struct {
	Output  string   `flag:"output,o" desc:"output path"`
	Verbose bool     `flag:"verbose"  desc:"more logging"`
	Depth   int      `flag:"depth"    desc:"nesting limit" default:"10"`
	Tags    []string `flag:"tag"      desc:"tags"`
}

func TestCommand_Execute_Params(t *testing.T) {
	var params testParams
	var receivedArgs []string

	command := &Command{
		Name:   "convert",
		Params: func() any { return &params },
		Run:    run(func(args []string) { receivedArgs = args }),
	}

	err := command.Execute(context.Background(),
		[]string{"-o", "out.json", "--verbose", "--tag", "a", "--tag", "b,c", "input.bxml"}, nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Output != "out.json" || !params.Verbose || params.Depth != 10 {
		t.Errorf("params = %+v", params)
	}
	if strings.Join(params.Tags, "|") != "a|b|c" {
		t.Errorf("tags = %v, want [a b c]", params.Tags)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "input.bxml" {
		t.Errorf("args = %v, want [input.bxml]", receivedArgs)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name:       "bxml",
		HelpOutput: &bytes.Buffer{},
		Subcommands: []*Command{
			{Name: "convert", Run: run(func([]string) {})},
			{Name: "inspect", Run: run(func([]string) {})},
		},
	}

	err := root.Execute(context.Background(), []string{"convrt"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "convert"`) {
		t.Errorf("error = %q, want suggestion for convert", err)
	}
	if CategoryOf(err) != CategoryValidation {
		t.Errorf("category = %s, want validation", CategoryOf(err))
	}

	err = root.Execute(context.Background(), []string{"zzzzzzzz"}, nil)
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion for a distant name", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	var params testParams
	command := &Command{
		Name:   "convert",
		Params: func() any { return &params },
		Run:    run(func([]string) {}),
	}

	err := command.Execute(context.Background(), []string{"--outptu", "x"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --output?") {
		t.Errorf("error = %q, want suggestion for --output", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "bxml",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "convert", Summary: "Convert documents", Run: run(func([]string) {})}},
	}

	err := root.Execute(context.Background(), nil, nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want 'subcommand required'", err)
	}
	if !strings.Contains(help.String(), "Convert documents") {
		t.Errorf("help output missing subcommand summary:\n%s", help.String())
	}
}

func TestCommand_Execute_Help(t *testing.T) {
	var params testParams
	var help bytes.Buffer
	command := &Command{
		Name:        "convert",
		Description: "Convert between formats.",
		HelpOutput:  &help,
		Params:      func() any { return &params },
		Examples:    []Example{{Description: "JSON to BXML", Command: "bxml convert --to bxml doc.json"}},
		Run: func(context.Context, []string, *slog.Logger) error {
			t.Error("Run called for --help")
			return nil
		},
	}

	for _, args := range [][]string{{"--help"}, {"-h"}} {
		help.Reset()
		if err := command.Execute(context.Background(), args, nil); err != nil {
			t.Fatalf("Execute(%v) error: %v", args, err)
		}
		output := help.String()
		for _, want := range []string{"Convert between formats.", "--output", "nesting limit", "# JSON to BXML"} {
			if !strings.Contains(output, want) {
				t.Errorf("help for %v missing %q:\n%s", args, want, output)
			}
		}
	}
}

func TestCommand_Execute_RunError(t *testing.T) {
	sentinel := errors.New("boom")
	command := &Command{
		Name: "fail",
		Run: func(context.Context, []string, *slog.Logger) error {
			return sentinel
		},
	}
	if err := command.Execute(context.Background(), nil, nil); !errors.Is(err, sentinel) {
		t.Errorf("Execute() error = %v, want the Run error", err)
	}
}

func TestCommand_Execute_LoggerScope(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	root := &Command{
		Name: "bxml",
		Subcommands: []*Command{{
			Name: "digest",
			Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
				logger.Info("hashed")
				return nil
			},
		}},
	}
	if err := root.Execute(context.Background(), []string{"digest"}, logger); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "command=digest") {
		t.Errorf("log line missing command attribute: %s", logs.String())
	}
}
