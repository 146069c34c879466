// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package check

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/dbx/box"
	"github.com/bureau-foundation/dbx/cmd/dbx/cli"
	"github.com/bureau-foundation/dbx/cmd/dbx/create"
)

type versionRunner struct{ version string }

func (r versionRunner) Output(ctx context.Context, argv []string) (string, error) {
	if strings.Contains(strings.Join(argv, " "), "version --format") && r.version != "" {
		return r.version, nil
	}
	return "", errors.New("unexpected call")
}

func (r versionRunner) Run(ctx context.Context, argv []string) error { return nil }

func newSystem(t *testing.T, stdout *bytes.Buffer, paths map[string]string) *create.System {
	t.Helper()
	lookPath := func(name string) (string, error) {
		if path, ok := paths[name]; ok {
			return path, nil
		}
		return "", errors.New("not found")
	}
	return &create.System{
		Stdout:      stdout,
		LookupEnv:   func(string) (string, bool) { return "", false },
		Euid:        1000,
		LookPath:    lookPath,
		ConfigPaths: func(string, string) []string { return nil },
		Identity: func() (box.Identity, error) {
			return box.Identity{User: "alice", UID: 1000, GID: 1000, Home: "/home/alice"}, nil
		},
		Prober:   &box.Prober{Root: t.TempDir()},
		Resolver: &box.UtilityResolver{LookPath: lookPath},
		Runner:   versionRunner{version: "4.9.3"},
	}
}

func hostProbes(checker *box.Checker) {
	checker.SELinuxEnabled = func() bool { return false }
	checker.InUserNamespace = func() bool { return false }
}

func TestCheckPasses(t *testing.T) {
	var stdout bytes.Buffer
	system := newSystem(t, &stdout, map[string]string{
		"podman":              "/usr/bin/podman",
		box.EntrypointUtility: "/usr/bin/distrobox-init",
		box.ExportUtility:     "/usr/bin/distrobox-export",
	})

	if err := newCommand(system, hostProbes).Execute(nil); err != nil {
		t.Fatalf("check: %v", err)
	}
	output := stdout.String()
	if !strings.Contains(output, "/usr/bin/podman 4.9.3 (rootless)") || !strings.Contains(output, "Ready to create boxes") {
		t.Errorf("output =\n%s", output)
	}
}

func TestCheckFailsWithoutManager(t *testing.T) {
	var stdout bytes.Buffer
	system := newSystem(t, &stdout, map[string]string{
		box.EntrypointUtility: "/usr/bin/distrobox-init",
		box.ExportUtility:     "/usr/bin/distrobox-export",
	})

	err := newCommand(system, hostProbes).Execute(nil)
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("check = %v, want ExitError{1}", err)
	}
	if !strings.Contains(stdout.String(), "Check failed with 1 error(s)") {
		t.Errorf("output =\n%s", stdout.String())
	}
}

func TestCheckJSON(t *testing.T) {
	var stdout bytes.Buffer
	system := newSystem(t, &stdout, map[string]string{
		"docker":              "/usr/bin/docker",
		box.EntrypointUtility: "/usr/bin/distrobox-init",
		box.ExportUtility:     "/usr/bin/distrobox-export",
	})
	system.Runner = versionRunner{version: "24.0.7"}

	if err := newCommand(system, hostProbes).Execute([]string{"--root", "--json"}); err != nil {
		t.Fatalf("check --json: %v", err)
	}
	var results []box.CheckResult
	if err := json.Unmarshal(stdout.Bytes(), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if len(results) == 0 || results[0].Name != "manager" {
		t.Fatalf("results = %+v", results)
	}
	if !strings.Contains(results[0].Message, "sudo /usr/bin/docker 24.0.7 (rootful)") {
		t.Errorf("manager message = %q", results[0].Message)
	}
}
