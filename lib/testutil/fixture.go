// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to name under directory, creating parent
// directories, and returns the full path.
func WriteFile(t testing.TB, directory, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// ReadFile returns the contents of path.
func ReadFile(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}

// Isolate clears BXML_CONFIG and NO_COLOR for the duration of the test,
// so commands see defaults.
func Isolate(t *testing.T) {
	t.Helper()
	t.Setenv("BXML_CONFIG", "")
	t.Setenv("NO_COLOR", "")
}
