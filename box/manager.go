// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes container-manager argument vectors. The production
// implementation is ExecRunner; tests substitute a recording fake.
type Runner interface {
	// Output runs argv and returns its trimmed standard output.
	Output(ctx context.Context, argv []string) (string, error)

	// Run runs argv with the operator's terminal attached.
	Run(ctx context.Context, argv []string) error
}

// ExecRunner runs commands as child processes. No timeout is imposed;
// the child's exit status is the only synchronization signal. When ctx
// is cancelled the child receives SIGINT, the same signal Ctrl-C
// delivers through the terminal, so the manager can clean up a
// half-finished pull or create instead of being killed.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner attached to the process's stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, argv []string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := managerCommand(ctx, argv)
	command.Stdout = &stdout
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		if message := strings.TrimSpace(stderr.String()); message != "" {
			err = fmt.Errorf("%w: %s", err, message)
		}
		return "", executionError(argv, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, argv []string) error {
	command := managerCommand(ctx, argv)
	command.Stdin = r.Stdin
	command.Stdout = r.Stdout
	command.Stderr = r.Stderr
	if err := command.Run(); err != nil {
		return executionError(argv, err)
	}
	return nil
}

func managerCommand(ctx context.Context, argv []string) *exec.Cmd {
	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	command.Cancel = func() error {
		return command.Process.Signal(os.Interrupt)
	}
	return command
}

func executionError(argv []string, err error) error {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &BackendExecutionError{Args: argv, Code: code, Err: err}
}

// Manager wraps the container-manager verbs this package uses.
type Manager struct {
	Backend Backend
	Runner  Runner
}

// ContainerExists reports whether a container with the given name
// exists. Any inspect failure counts as absence.
func (m *Manager) ContainerExists(ctx context.Context, name string) bool {
	_, err := m.Runner.Output(ctx, m.Backend.Argv("inspect", "--type", "container", name))
	return err == nil
}

// ImageExists reports whether the image is present in local storage.
func (m *Manager) ImageExists(ctx context.Context, image string) bool {
	_, err := m.Runner.Output(ctx, m.Backend.Argv("inspect", "--type", "image", image))
	return err == nil
}

// ContainerStatus returns the container's state ("running",
// "exited", "created", ...).
func (m *Manager) ContainerStatus(ctx context.Context, name string) (string, error) {
	return m.Runner.Output(ctx, m.Backend.Argv("inspect", "--type", "container", "--format", "{{.State.Status}}", name))
}

// ContainerID returns the container's immutable identifier.
func (m *Manager) ContainerID(ctx context.Context, name string) (string, error) {
	return m.Runner.Output(ctx, m.Backend.Argv("inspect", "--type", "container", "--format", "{{.ID}}", name))
}

// Commit snapshots a container's filesystem into a tagged image.
func (m *Manager) Commit(ctx context.Context, containerID, tag string) error {
	_, err := m.Runner.Output(ctx, m.Backend.Argv("container", "commit", containerID, tag))
	return err
}

// Pull fetches an image, streaming progress to the terminal.
func (m *Manager) Pull(ctx context.Context, image string) error {
	return m.Runner.Run(ctx, m.Backend.Argv("pull", image))
}

// Create executes a synthesized create command.
func (m *Manager) Create(ctx context.Context, command *ManagerCommand) error {
	return m.Runner.Run(ctx, command.Argv())
}

// Version returns the manager's client version string.
func (m *Manager) Version(ctx context.Context) (string, error) {
	return m.Runner.Output(ctx, m.Backend.Argv("version", "--format", "{{.Client.Version}}"))
}
