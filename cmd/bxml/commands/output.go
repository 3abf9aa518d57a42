// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/compress"
	"github.com/bureau-foundation/bxml/lib/config"
	"github.com/bureau-foundation/bxml/lib/format"
	"github.com/bureau-foundation/bxml/lib/sealed"
)

// outputParams control what convert and encode write.
type outputParams struct {
	Output     string   `flag:"output,o"  desc:"output file (default: stdout)"`
	Compress   string   `flag:"compress"  desc:"compress output: none, lz4, zstd or auto"`
	Recipients []string `flag:"recipient,r" desc:"encrypt output to this age public key (repeatable)"`
	Armor      bool     `flag:"armor,a"   desc:"ASCII-armor encrypted output"`
	Force      bool     `flag:"force,f"   desc:"overwrite existing output files"`
}

// wrapping is the resolved compression and encryption for output.
type wrapping struct {
	compression string
	recipients  []string
	armor       bool
}

// wrapping merges output flags over the configured defaults.
func (s *session) wrapping(params outputParams) (wrapping, error) {
	result := wrapping{
		compression: s.config.Output.Compression,
		recipients:  s.config.Output.Recipients,
		armor:       s.config.Output.Armor || params.Armor,
	}
	if params.Compress != "" {
		result.compression = params.Compress
	}
	if len(params.Recipients) > 0 {
		result.recipients = params.Recipients
	}
	if result.compression != compress.Auto {
		if _, err := compress.Parse(result.compression); err != nil {
			return wrapping{}, cli.Validation("--compress: %w", err)
		}
	}
	if len(result.recipients) > 0 {
		if _, err := sealed.ParseRecipients(result.recipients); err != nil {
			return wrapping{}, cli.Validation("--recipient: %w", err)
		}
	}
	return result, nil
}

// wrapped reports whether w changes the bytes at all.
func (w wrapping) wrapped() bool {
	return len(w.recipients) > 0 || (w.compression != "" && w.compression != compress.None.String())
}

// apply compresses and then encrypts data. It returns the suffix the
// wrapping conventionally adds to a file name.
func (w wrapping) apply(data []byte) ([]byte, string, error) {
	var (
		algorithm compress.Algorithm
		err       error
	)
	if w.compression == compress.Auto {
		data, algorithm, err = compress.CompressAuto(data)
	} else {
		algorithm, err = compress.Parse(w.compression)
		if err == nil {
			data, err = compress.Compress(data, algorithm)
		}
	}
	if err != nil {
		return nil, "", cli.Internal("compressing output: %w", err)
	}
	suffix := algorithm.Extension()

	if len(w.recipients) > 0 {
		if w.armor {
			data, err = sealed.EncryptArmored(data, w.recipients)
		} else {
			data, err = sealed.Encrypt(data, w.recipients)
		}
		if err != nil {
			return nil, "", cli.Internal("encrypting output: %w", err)
		}
		suffix += ".age"
	}
	return data, suffix, nil
}

// binaryOutput reports whether output bytes may be unsafe for a
// terminal: binary formats, or anything compressed or encrypted
// without armor.
func binaryOutput(strategy format.Strategy, w wrapping) bool {
	if strategy.Binary() {
		return true
	}
	if w.compression != "" && w.compression != compress.None.String() {
		return true
	}
	return len(w.recipients) > 0 && !w.armor
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
// Binary data is never written to a terminal. Text written to a
// terminal is syntax-highlighted when color is enabled.
func (s *session) writeOutput(path string, data []byte, binary bool, lexer string, force bool) error {
	if path == "" || path == stdinName {
		stdout := s.env.Stdout
		terminal := cli.IsTerminal(stdout)
		if binary && terminal {
			return cli.Validation("refusing to write binary output to a terminal; use --output or redirect stdout")
		}
		if formatter := s.colorFormatter(terminal); !binary && lexer != "" && formatter != "" {
			var highlighted bytes.Buffer
			if err := quick.Highlight(&highlighted, string(data), lexer, formatter, "monokai"); err == nil {
				data = highlighted.Bytes()
			}
		}
		if _, err := stdout.Write(data); err != nil {
			return cli.Internal("write stdout: %w", err)
		}
		return nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return cli.Conflict("%s already exists; use --force to overwrite", path)
		}
		return cli.FileError(err, "create %s: %w", path, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return cli.FileError(err, "write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return cli.FileError(err, "close %s: %w", path, err)
	}
	s.logger.Debug("output written", "path", path, "size", len(data))
	return nil
}

// colorFormatter returns the chroma formatter matching stdout's color
// profile, or "" when output should not be highlighted. NO_COLOR,
// CLICOLOR and CLICOLOR_FORCE are honored in auto mode.
func (s *session) colorFormatter(terminal bool) string {
	output := termenv.NewOutput(s.env.Stdout)
	profile := output.EnvColorProfile()
	switch s.config.Output.Color {
	case config.ColorNever:
		return ""
	case config.ColorAlways:
		if profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
	default:
		if !terminal || output.EnvNoColor() {
			return ""
		}
	}
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return ""
	}
}

// lexerFor names the chroma lexer for a text format, or "" for none.
func lexerFor(strategy format.Strategy) string {
	switch strategy.Name() {
	case "json", "jsonc":
		return "json"
	case "yaml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}
