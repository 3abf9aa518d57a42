// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/bxml/cmd/bxml/cli"
)

type formatsParams struct {
	globalParams
	cli.JSONOutput
}

func formatsCommand(env *Environment) *cli.Command {
	var params formatsParams

	return &cli.Command{
		Name:    "formats",
		Summary: "List supported formats",
		Usage:   "bxml formats [flags]",
		Params:  func() any { return &params },
		Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
			s, err := env.open(params.globalParams, logger)
			if err != nil {
				return err
			}
			return s.formats(params)
		},
	}
}

type formatInfo struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	Binary     bool     `json:"binary"`
}

func (s *session) formats(params formatsParams) error {
	registry, err := s.registry(s.config.Mode())
	if err != nil {
		return err
	}
	var infos []formatInfo
	for _, strategy := range registry.Strategies() {
		infos = append(infos, formatInfo{
			Name:       strategy.Name(),
			Extensions: strategy.Extensions(),
			Binary:     strategy.Binary(),
		})
	}

	if done, err := params.EmitJSON(s.env.Stdout, infos); done {
		return err
	}
	tw := tabwriter.NewWriter(s.env.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEXTENSIONS\tENCODING")
	for _, info := range infos {
		encoding := "text"
		if info.Binary {
			encoding = "binary"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, strings.Join(info.Extensions, " "), encoding)
	}
	return tw.Flush()
}
