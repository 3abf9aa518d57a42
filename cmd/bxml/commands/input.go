// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/compress"
	"github.com/bureau-foundation/bxml/lib/format"
	"github.com/bureau-foundation/bxml/lib/sealed"
	"github.com/bureau-foundation/bxml/lib/token"
)

// stdinName stands for standard input in file arguments and logs.
const stdinName = "-"

// input is one document's bytes and where they came from.
type input struct {
	name string
	data []byte

	// Set by unwrap.
	encrypted   bool
	compression compress.Algorithm
}

// readInputs reads every named file, or stdin when names is empty. "-"
// names stdin explicitly and may appear once.
func (s *session) readInputs(names []string, hexMode bool) ([]*input, error) {
	if len(names) == 0 {
		names = []string{stdinName}
	}
	inputs := make([]*input, 0, len(names))
	sawStdin := false
	for _, name := range names {
		var (
			data []byte
			err  error
		)
		if name == stdinName {
			if sawStdin {
				return nil, cli.Validation("stdin (-) given more than once")
			}
			sawStdin = true
			data, err = io.ReadAll(s.env.Stdin)
			if err != nil {
				return nil, cli.Internal("read stdin: %w", err)
			}
		} else {
			data, err = os.ReadFile(name)
			if err != nil {
				return nil, cli.FileError(err, "read %s: %w", name, err)
			}
		}
		if hexMode {
			data, err = decodeHexInput(data)
			if err != nil {
				return nil, cli.Validation("%s: %w", name, err)
			}
		}
		inputs = append(inputs, &input{name: name, data: data})
	}
	return inputs, nil
}

// readInput is readInputs for commands that take at most one input.
func (s *session) readInput(args []string, hexMode bool) (*input, error) {
	if len(args) > 1 {
		return nil, cli.Validation("expected at most one input file, got %d", len(args))
	}
	inputs, err := s.readInputs(args, hexMode)
	if err != nil {
		return nil, err
	}
	return inputs[0], nil
}

// decodeHexInput strips whitespace from hex-encoded input and decodes
// it. Whitespace between digit pairs is allowed ("42 58 4d 4c").
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}

// unwrap decrypts and decompresses in.data in place. Encryption is the
// outer layer: convert compresses, then encrypts.
func (s *session) unwrap(in *input, identityPath string) error {
	if sealed.IsEncrypted(in.data) {
		if identityPath == "" {
			identityPath = s.config.Output.Identity
		}
		if identityPath == "" {
			return cli.Validation("%s is age-encrypted; pass --identity or set output.identity", in.name)
		}
		identities, err := sealed.ReadIdentityFile(identityPath)
		if err != nil {
			return cli.FileError(err, "%w", err)
		}
		plaintext, err := sealed.Decrypt(in.data, identities...)
		if err != nil {
			return cli.Validation("%s: %w", in.name, err)
		}
		in.data = plaintext
		in.encrypted = true
	}

	data, algorithm, err := compress.Decompress(in.data)
	if err != nil {
		return cli.Validation("%s: %w", in.name, err)
	}
	in.data = data
	in.compression = algorithm

	if in.encrypted || algorithm != compress.None {
		s.logger.Debug("input unwrapped",
			"input", in.name,
			"encrypted", in.encrypted,
			"compression", algorithm.String(),
			"size", len(data),
		)
	}
	return nil
}

// strategyFor picks the input format: the --from name, else the file
// extension, else detection from the bytes.
func strategyFor(registry *format.Registry, in *input, from string) (format.Strategy, error) {
	if from != "" {
		strategy, err := registry.Lookup(from)
		if err != nil {
			return nil, cli.Validation("--from: %w", err)
		}
		return strategy, nil
	}
	if in.name != stdinName {
		if strategy, err := registry.ForPath(in.name); err == nil {
			return strategy, nil
		}
	}
	strategy, err := registry.Detect(in.data)
	if err != nil {
		return nil, cli.Validation("%s: %w; use --from", in.name, err)
	}
	return strategy, nil
}

// decode unwraps in and decodes it with the selected strategy.
func (s *session) decode(registry *format.Registry, in *input, from, identity string) (token.Value, format.Strategy, error) {
	if err := s.unwrap(in, identity); err != nil {
		return token.Value{}, nil, err
	}
	strategy, err := strategyFor(registry, in, from)
	if err != nil {
		return token.Value{}, nil, err
	}
	value, err := strategy.Decode(in.data)
	if err != nil {
		return token.Value{}, nil, cli.Validation("%s: decoding %s: %w", in.name, strategy.Name(), err)
	}
	return value, strategy, nil
}
