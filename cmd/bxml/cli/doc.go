// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind the bxml binary: a tree
// of [Command] values dispatched by name, flags bound from tagged
// parameter structs on top of spf13/pflag, help output with examples,
// and "did you mean" suggestions for mistyped commands and flags.
//
// Errors returned by commands are [ToolError] values carrying an
// [ErrorCategory], or an [ExitError] for a quiet non-zero exit.
package cli
