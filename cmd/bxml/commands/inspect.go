// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
	"github.com/bureau-foundation/bxml/lib/bxml"
	"github.com/bureau-foundation/bxml/lib/format"
)

type inspectParams struct {
	globalParams
	readerParams
	wrapParams
	cli.JSONOutput
	From     string `flag:"from"      desc:"input format for --cbor-diag (default: detected)"`
	CBORDiag bool   `flag:"cbor-diag" desc:"print the document as CBOR diagnostic notation"`
}

func inspectCommand(env *Environment) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show the structure of a BXML document",
		Description: `Print a BXML document's header fields, its string table (index,
length, value), and node statistics: node count, compressed arrays,
maximum depth, and how many payloads use each value tag.

With --cbor-diag, any supported input is instead decoded and printed in
CBOR extended diagnostic notation, which shows the exact type of every
value: byte strings as h'..', dates as tagged strings.`,
		Usage:  "bxml inspect [flags] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Header, strings and statistics",
				Command:     "bxml inspect document.bxml",
			},
			{
				Description: "Machine-readable report",
				Command:     "bxml inspect --json document.bxml | jq .value_tags",
			},
			{
				Description: "Exact value types of a YAML file",
				Command:     "bxml inspect --cbor-diag settings.yaml",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			s, err := env.open(params.globalParams, logger)
			if err != nil {
				return err
			}
			return s.inspect(params, args)
		},
	}
}

type inspectReport struct {
	Input            string         `json:"input"`
	Size             int            `json:"size"`
	Encrypted        bool           `json:"encrypted"`
	Compression      string         `json:"compression"`
	Version          uint8          `json:"version"`
	Flags            uint8          `json:"flags"`
	ByteOrder        string         `json:"byte_order"`
	CompressedArrays bool           `json:"compressed_arrays"`
	RootName         string         `json:"root_name"`
	StringTableBytes int            `json:"string_table_bytes"`
	Strings          []stringEntry  `json:"strings"`
	Nodes            int            `json:"nodes"`
	CompressedCount  int            `json:"compressed_array_count"`
	CompressedItems  int            `json:"compressed_elements"`
	MaxDepth         int            `json:"max_depth"`
	ValueTags        map[string]int `json:"value_tags"`
}

type stringEntry struct {
	Index  int    `json:"index"`
	Length int    `json:"length"`
	Value  string `json:"value"`
}

func (s *session) inspect(params inspectParams, args []string) error {
	mode, err := s.mode(params.readerParams)
	if err != nil {
		return err
	}
	in, err := s.readInput(args, params.Hex)
	if err != nil {
		return err
	}

	if params.CBORDiag {
		return s.inspectDiagnostic(params, in, mode)
	}

	if err := s.unwrap(in, params.Identity); err != nil {
		return err
	}
	if !bytes.HasPrefix(in.data, []byte(bxml.Magic)) {
		return cli.Validation("%s is not a BXML document; --cbor-diag inspects other formats", in.name)
	}

	reader := bxml.NewReader(in.data, s.config.ReaderOptions(mode)...)
	if err := reader.Initialize(); err != nil {
		return cli.Validation("%s: %w", in.name, err)
	}
	if _, err := reader.ReadDocument(); err != nil {
		return cli.Validation("%s: %w", in.name, err)
	}

	report := buildReport(in, reader)
	if done, err := params.EmitJSON(s.env.Stdout, report); done {
		return err
	}
	return writeReport(s.env.Stdout, report)
}

func buildReport(in *input, reader *bxml.Reader) inspectReport {
	header := reader.Header()
	stats := reader.Stats()
	table := reader.StringTable()

	report := inspectReport{
		Input:            in.name,
		Size:             len(in.data),
		Encrypted:        in.encrypted,
		Compression:      in.compression.String(),
		Version:          header.Version,
		Flags:            header.Flags,
		ByteOrder:        header.ByteOrder.String(),
		CompressedArrays: header.CompressedArrays,
		RootName:         reader.RootName(),
		StringTableBytes: table.EncodedSize(),
		Nodes:            stats.Nodes,
		CompressedCount:  stats.CompressedArrays,
		CompressedItems:  stats.CompressedElements,
		MaxDepth:         stats.MaxDepth,
		ValueTags:        make(map[string]int, len(stats.ValueTags)),
	}
	for index, value := range table.Strings() {
		report.Strings = append(report.Strings, stringEntry{Index: index, Length: len(value), Value: value})
	}
	for tag, count := range stats.ValueTags {
		report.ValueTags[tag.String()] = count
	}
	return report
}

func writeReport(w io.Writer, report inspectReport) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "input:\t%s\n", report.Input)
	fmt.Fprintf(tw, "size:\t%d bytes\n", report.Size)
	if report.Encrypted || report.Compression != "none" {
		fmt.Fprintf(tw, "wrapping:\tencrypted=%t compression=%s\n", report.Encrypted, report.Compression)
	}
	fmt.Fprintf(tw, "version:\t%d\n", report.Version)
	fmt.Fprintf(tw, "flags:\t%#02x (compressed arrays: %t, byte order: %s)\n",
		report.Flags, report.CompressedArrays, report.ByteOrder)
	fmt.Fprintf(tw, "root:\t%s\n", report.RootName)
	fmt.Fprintf(tw, "nodes:\t%d\n", report.Nodes)
	fmt.Fprintf(tw, "compressed arrays:\t%d (%d elements)\n", report.CompressedCount, report.CompressedItems)
	fmt.Fprintf(tw, "max depth:\t%d\n", report.MaxDepth)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nvalue tags:\n")
	tags := make([]string, 0, len(report.ValueTags))
	for tag := range report.ValueTags {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	tw = tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	for _, tag := range tags {
		fmt.Fprintf(tw, "  %s\t%d\n", tag, report.ValueTags[tag])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nstring table (%d strings, %d bytes):\n", len(report.Strings), report.StringTableBytes)
	tw = tabwriter.NewWriter(w, 2, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "index\tlength\t\n")
	for _, entry := range report.Strings {
		fmt.Fprintf(tw, "%d\t%d\t  %s\n", entry.Index, entry.Length, strconv.Quote(entry.Value))
	}
	return tw.Flush()
}

// inspectDiagnostic decodes in with any strategy and prints the tree as
// CBOR diagnostic notation.
func (s *session) inspectDiagnostic(params inspectParams, in *input, mode bxml.Mode) error {
	registry, err := s.registry(mode)
	if err != nil {
		return err
	}
	value, _, err := s.decode(registry, in, params.From, params.Identity)
	if err != nil {
		return err
	}
	encoded, err := format.CBOR{}.Encode(value)
	if err != nil {
		return cli.Validation("%s: %w", in.name, err)
	}
	diagnostic, err := format.DiagnoseCBOR(encoded)
	if err != nil {
		return cli.Internal("%s: %w", in.name, err)
	}
	if done, err := params.EmitJSON(s.env.Stdout, map[string]string{"input": in.name, "diagnostic": diagnostic}); done {
		return err
	}
	_, err = fmt.Fprintln(s.env.Stdout, diagnostic)
	return err
}
