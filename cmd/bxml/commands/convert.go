// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/format"
	"github.com/bureau-foundation/bxml/lib/token"
)

type convertParams struct {
	globalParams
	readerParams
	wrapParams
	outputParams
	From         string `flag:"from"         desc:"input format (default: by extension, else detected)"`
	To           string `flag:"to,t"         desc:"output format (default: output.format from config)"`
	OutputDir    string `flag:"output-dir,d" desc:"directory for converted files when converting several"`
	IgnoreErrors bool   `flag:"ignore-errors" desc:"write an empty document for input that fails to decode"`
	Jobs         int    `flag:"jobs,j"       desc:"files converted concurrently (default: number of CPUs)"`
}

func convertCommand(env *Environment) *cli.Command {
	var params convertParams

	return &cli.Command{
		Name:    "convert",
		Summary: "Convert documents between formats",
		Description: `Convert documents between any two supported formats.

The input format comes from --from, else the file extension, else
detection from the leading bytes. Encrypted and compressed input is
unwrapped automatically: age-encrypted files need --identity (or
output.identity in the config file).

Output is compressed with --compress and then encrypted to every
--recipient. With one input, output goes to --output or stdout. With
several, --output-dir is required and each file is named after its
input with the target extension; files are converted concurrently.

With --ignore-errors, input that fails to decode is replaced by an
empty document and a warning is logged, so a batch produces one output
per input.`,
		Usage:  "bxml convert [flags] [files...]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "JSON on stdin to YAML on stdout",
				Command:     "bxml convert --to yaml < config.json",
			},
			{
				Description: "Encode a YAML file as compressed, encrypted BXML",
				Command:     "bxml convert --to bxml --compress zstd -r age1... -o data.bxml.zst.age data.yaml",
			},
			{
				Description: "Convert a directory of BXML files to JSON",
				Command:     "bxml convert --to json -d out/ inputs/*.bxml",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			s, err := env.open(params.globalParams, logger)
			if err != nil {
				return err
			}
			return s.convert(ctx, params, args)
		},
	}
}

// conversion is the resolved plan shared by every file of one run.
type conversion struct {
	registry *format.Registry
	target   format.Strategy
	wrap     wrapping
	params   convertParams
}

func (s *session) convert(ctx context.Context, params convertParams, args []string) error {
	if len(args) > 1 && params.Output != "" {
		return cli.Validation("--output takes a single input; use --output-dir for %d files", len(args))
	}
	if len(args) > 1 && params.OutputDir == "" {
		return cli.Validation("converting %d files requires --output-dir", len(args))
	}
	if params.OutputDir != "" && params.Output != "" {
		return cli.Validation("--output and --output-dir are mutually exclusive")
	}

	mode, err := s.mode(params.readerParams)
	if err != nil {
		return err
	}
	registry, err := s.registry(mode)
	if err != nil {
		return err
	}
	targetName := params.To
	if targetName == "" {
		targetName = s.config.Output.Format
	}
	target, err := registry.Lookup(targetName)
	if err != nil {
		return cli.Validation("--to: %w", err)
	}
	wrap, err := s.wrapping(params.outputParams)
	if err != nil {
		return err
	}
	plan := &conversion{registry: registry, target: target, wrap: wrap, params: params}

	if params.OutputDir == "" {
		return s.convertOne(plan, args, params.Output)
	}
	if err := os.MkdirAll(params.OutputDir, 0o755); err != nil {
		return cli.FileError(err, "create %s: %w", params.OutputDir, err)
	}
	return s.convertMany(ctx, plan, args)
}

// convertOne converts a single input (a file or stdin) to path.
func (s *session) convertOne(plan *conversion, args []string, path string) error {
	in, err := s.readInput(args, plan.params.Hex)
	if err != nil {
		return err
	}
	return s.convertInput(plan, in, path)
}

// convertMany converts each file into the output directory on a
// bounded set of goroutines. Every file is attempted; failures are
// joined into the returned error in argument order.
func (s *session) convertMany(ctx context.Context, plan *conversion, files []string) error {
	for _, file := range files {
		if file == stdinName {
			return cli.Validation("stdin (-) cannot be combined with --output-dir")
		}
	}

	jobs := plan.params.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	semaphore := make(chan struct{}, jobs)

	// Each goroutine writes only its own slot.
	failures := make([]error, len(files))
	var waitGroup sync.WaitGroup
	for index, file := range files {
		waitGroup.Go(func() {
			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				failures[index] = fmt.Errorf("%s: %w", file, ctx.Err())
				return
			}
			defer func() { <-semaphore }()
			failures[index] = s.convertFile(plan, file)
		})
	}
	waitGroup.Wait()
	return errors.Join(failures...)
}

func (s *session) convertFile(plan *conversion, file string) error {
	inputs, err := s.readInputs([]string{file}, plan.params.Hex)
	if err != nil {
		return err
	}
	return s.convertInput(plan, inputs[0], "")
}

// convertInput decodes in, encodes it in the target format, wraps it
// and writes it. An empty path in --output-dir mode derives the name
// from the input.
func (s *session) convertInput(plan *conversion, in *input, path string) error {
	start := time.Now()
	inputSize := len(in.data)

	sourceName := "placeholder"
	value, source, err := s.decode(plan.registry, in, plan.params.From, plan.params.Identity)
	switch {
	case err == nil:
		sourceName = source.Name()
	case plan.params.IgnoreErrors && cli.CategoryOf(err) == cli.CategoryValidation:
		s.logger.Warn("substituting an empty document", "input", in.name, "error", err)
		value = token.Object()
	default:
		return err
	}
	encoded, err := plan.target.Encode(value)
	if err != nil {
		if errors.Is(err, format.ErrUnsupportedValue) || errors.Is(err, bxml.ErrMaxDepthExceeded) ||
			errors.Is(err, bxml.ErrTooManyStrings) || errors.Is(err, bxml.ErrTooManyChildren) ||
			errors.Is(err, bxml.ErrStringTooLong) {
			return cli.Validation("%s: encoding %s: %w", in.name, plan.target.Name(), err)
		}
		return cli.Internal("%s: encoding %s: %w", in.name, plan.target.Name(), err)
	}
	wrapped, suffix, err := plan.wrap.apply(encoded)
	if err != nil {
		return err
	}

	if plan.params.OutputDir != "" && path == "" {
		path = filepath.Join(plan.params.OutputDir, outputName(plan.registry, in.name, plan.target, suffix))
	}
	binary := binaryOutput(plan.target, plan.wrap)
	if err := s.writeOutput(path, wrapped, binary, lexerFor(plan.target), plan.params.Force); err != nil {
		return err
	}

	destination := path
	if destination == "" {
		destination = "stdout"
	}
	if plan.target.Name() == "bxml" {
		reader := bxml.NewReader(encoded)
		if reader.Initialize() == nil {
			s.logger.Debug("string table", "input", in.name, "strings", reader.StringTable().Len())
		}
	}
	s.logger.Info("converted",
		"input", in.name,
		"from", sourceName,
		"to", plan.target.Name(),
		"output", destination,
		"bytes_in", inputSize,
		"bytes_out", len(wrapped),
		"duration", time.Since(start),
	)
	return nil
}

// outputName replaces every known extension of input with the target's
// first extension plus the wrapping suffix: "a.json.zst" becomes
// "a.bxml".
func outputName(registry *format.Registry, input string, target format.Strategy, suffix string) string {
	base := filepath.Base(input)
	for {
		extension := filepath.Ext(base)
		if extension == "" || extension == base || !isKnownExtension(registry, extension) {
			break
		}
		base = strings.TrimSuffix(base, extension)
	}
	extension := ""
	if extensions := target.Extensions(); len(extensions) > 0 {
		extension = extensions[0]
	}
	return base + extension + suffix
}

func isKnownExtension(registry *format.Registry, extension string) bool {
	switch strings.ToLower(extension) {
	case ".age", ".zst", ".zstd", ".lz4":
		return true
	}
	_, err := registry.ForPath("file" + extension)
	return err == nil
}
