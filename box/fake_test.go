// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// fakeRunner records every invocation. Output answers from outputs,
// keyed by the space-joined argv; any other Output call fails the way
// a failed inspect does. Run succeeds unless runErrors has an entry for
// the verb (argv[1]).
type fakeRunner struct {
	mu        sync.Mutex
	calls     [][]string
	outputs   map[string]string
	runErrors map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, runErrors: map[string]error{}}
}

func (r *fakeRunner) Output(ctx context.Context, argv []string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, argv)
	if output, ok := r.outputs[strings.Join(argv, " ")]; ok {
		return output, nil
	}
	return "", &BackendExecutionError{Args: argv, Code: 125, Err: errors.New("no such object")}
}

func (r *fakeRunner) Run(ctx context.Context, argv []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, argv)
	if len(argv) > 1 {
		if err, ok := r.runErrors[argv[1]]; ok {
			return err
		}
	}
	return nil
}

// called reports whether any recorded call starts with the given tokens
// after the executable.
func (r *fakeRunner) called(tokens ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, call := range r.calls {
		if len(call) < len(tokens)+1 {
			continue
		}
		match := true
		for i, token := range tokens {
			if call[i+1] != token {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

const podmanPath = "/usr/bin/podman"

func rootlessPodman() Backend {
	return Backend{Kind: Podman, Path: podmanPath}
}

func testHost() Host {
	return Host{
		Identity: Identity{
			User:  "alice",
			UID:   1000,
			GID:   1000,
			Home:  "/home/alice",
			Shell: "/bin/zsh",
		},
		Hostname: "workstation",
	}
}

func testUtilities() Utilities {
	return Utilities{
		Entrypoint: Found(EntrypointUtility, "/usr/bin/distrobox-init"),
		Export:     Found(ExportUtility, "/usr/bin/distrobox-export"),
		HostExec:   NotFound(HostExecUtility),
	}
}
