// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands implements the bxml subcommands. [Root] assembles
// the tree; each command reads and writes through an [Environment], so
// tests drive the full tree against in-memory streams.
//
// Input may be a file, stdin, or hex text (--hex), and is unwrapped
// before decoding: age encryption first, then zstd or LZ4 framing.
// Output is wrapped in the reverse order.
package commands
