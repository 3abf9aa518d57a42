// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build of the bxml binary. Release builds
// set the variables below with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/bxml/lib/version.Commit=$(git rev-parse --short HEAD)"
//
// Development builds fall back to the VCS stamp the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the release version.
	Version = "0.1.0-dev"

	// Commit is the short git SHA of the build.
	Commit = ""

	// BuildTime is the UTC timestamp of the build.
	BuildTime = ""
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// stamp returns the commit, build time, and whether the tree was
// modified, preferring ldflags over the embedded VCS settings.
func stamp() (commit, built string, modified bool) {
	commit, built = Commit, BuildTime
	info, ok := readBuildInfo()
	if !ok {
		return orUnknown(commit), orUnknown(built), false
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if commit == "" {
				commit = setting.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			}
		case "vcs.time":
			if built == "" {
				built = setting.Value
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	return orUnknown(commit), orUnknown(built), modified
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// Info returns the one-line version string, e.g.
// "0.1.0-dev (3f9c2a1b04de, 2026-03-14T15:09:26Z)".
func Info() string {
	commit, built, modified := stamp()
	if modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, built)
}

// Full is Info plus the Go toolchain and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
