// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that choose the process exit
// status.
type exitCoder interface {
	ExitCode() int
}

// exit is replaced in tests.
var exit = os.Exit

// Fatal writes "error: err" to stderr and exits. The exit status is
// taken from the first error in the chain that implements ExitCode(),
// and is 1 otherwise.
func Fatal(err error) {
	exit(Report(os.Stderr, err))
}

// Report writes err to w and returns the exit status Fatal would use.
func Report(w io.Writer, err error) int {
	fmt.Fprintf(w, "error: %v\n", err)
	return ExitCode(err)
}

// ExitCode maps err to a process exit status: 0 for nil, the code of
// the first ExitCode() implementer in the chain, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded exitCoder
	if errors.As(err, &coded) {
		if code := coded.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
