// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without an extra error
// message. The command has already written its own output; main exits
// with Code and prints nothing.
//
// "bxml validate" uses it: an invalid document is a valid outcome that
// exits 1, not an unexpected error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this method to tell
// a handled non-zero exit from an error to display.
func (e *ExitError) ExitCode() int {
	return e.Code
}
