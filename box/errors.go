// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"fmt"
	"strings"
)

// Exit codes shared by every error kind in this package. The CLI maps
// any error implementing ExitCode() to the process exit status.
const (
	ExitFailure           = 1
	ExitMissingDependency = 127
)

// ConfigError reports an invalid or unsupported configuration: an
// unknown backend choice, an invalid image reference, or an invocation
// through a privilege-elevation wrapper.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// ExitCode implements the CLI exit-code contract.
func (e *ConfigError) ExitCode() int { return ExitFailure }

// MissingDependencyError reports an external program that could not be
// found: the container manager or one of the bundled utilities.
type MissingDependencyError struct {
	// Name is the program that is missing.
	Name string
	// Hint is an optional sentence telling the operator how to fix it.
	Hint string
}

func (e *MissingDependencyError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("missing dependency: %s", e.Name)
	}
	return fmt.Sprintf("missing dependency: %s. %s", e.Name, e.Hint)
}

// ExitCode implements the CLI exit-code contract.
func (e *MissingDependencyError) ExitCode() int { return ExitMissingDependency }

// SourceRunningError is returned by the clone engine when the source
// container is still running.
type SourceRunningError struct {
	Source string
}

func (e *SourceRunningError) Error() string {
	return fmt.Sprintf("container %s is running: stop it first, a running container cannot be cloned", e.Source)
}

// ExitCode implements the CLI exit-code contract.
func (e *SourceRunningError) ExitCode() int { return ExitFailure }

// CommitFailedError is returned when the backend's commit verb fails.
type CommitFailedError struct {
	Source string
	Err    error
}

func (e *CommitFailedError) Error() string {
	return fmt.Sprintf("cannot clone container %s: %v", e.Source, e.Err)
}

func (e *CommitFailedError) Unwrap() error { return e.Err }

// ExitCode implements the CLI exit-code contract.
func (e *CommitFailedError) ExitCode() int { return ExitFailure }

// InvalidPromptInputError is returned when the operator answers a
// yes/no question with anything outside the accepted set. There is no
// re-prompt.
type InvalidPromptInputError struct {
	Input string
}

func (e *InvalidPromptInputError) Error() string {
	return fmt.Sprintf("invalid input %q: the available choices are %s or %s",
		e.Input, strings.Join(yesAnswers, ","), strings.Join(noAnswers, ","))
}

// ExitCode implements the CLI exit-code contract.
func (e *InvalidPromptInputError) ExitCode() int { return ExitFailure }

// BackendExecutionError wraps a non-zero exit from the container
// manager. The backend's own exit status becomes the process status.
type BackendExecutionError struct {
	// Args is the argument vector that failed, for the error message.
	Args []string
	// Code is the backend's exit status, or -1 if it did not exit
	// normally.
	Code int
	Err  error
}

func (e *BackendExecutionError) Error() string {
	verb := ""
	if len(e.Args) > 0 {
		verb = strings.Join(e.Args[:min(len(e.Args), 3)], " ")
	}
	return fmt.Sprintf("%s failed: %v", verb, e.Err)
}

func (e *BackendExecutionError) Unwrap() error { return e.Err }

// ExitCode implements the CLI exit-code contract.
func (e *BackendExecutionError) ExitCode() int {
	if e.Code > 0 {
		return e.Code
	}
	return ExitFailure
}

// HomeDirectoryError reports a custom or prefixed home directory that
// could not be created.
type HomeDirectoryError struct {
	Path string
	Err  error
}

func (e *HomeDirectoryError) Error() string {
	return fmt.Sprintf("cannot create home directory %s (do you have permission to write there?): %v", e.Path, e.Err)
}

func (e *HomeDirectoryError) Unwrap() error { return e.Err }

// ExitCode implements the CLI exit-code contract.
func (e *HomeDirectoryError) ExitCode() int { return ExitFailure }
