// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Names of the external programs this package hands work to.
const (
	EntrypointUtility     = "distrobox-init"
	ExportUtility         = "distrobox-export"
	HostExecUtility       = "distrobox-host-exec"
	EntryGeneratorUtility = "distrobox-generate-entry"
	EnterCommand          = "distrobox enter"
)

// In-box locations of the bundled utilities.
const (
	entrypointDest = "/usr/bin/entrypoint"
	exportDest     = "/usr/bin/distrobox-export"
	hostExecDest   = "/usr/bin/distrobox-host-exec"
)

// Lookup is the outcome of resolving a utility: either Found with a
// path or NotFound.
type Lookup struct {
	Name  string
	Path  string
	Found bool
}

// Found returns a successful lookup.
func Found(name, path string) Lookup { return Lookup{Name: name, Path: path, Found: true} }

// NotFound returns a failed lookup.
func NotFound(name string) Lookup { return Lookup{Name: name} }

// Utilities holds the resolved in-box helper binaries.
type Utilities struct {
	Entrypoint Lookup
	Export     Lookup
	HostExec   Lookup
}

// UtilityResolver finds helper programs in two steps: next to the
// running executable, then on PATH.
type UtilityResolver struct {
	// SelfDir is the directory holding the running executable, with
	// symlinks resolved. Empty skips the colocated step.
	SelfDir string

	// LookPath searches PATH. Defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// NewUtilityResolver returns a resolver anchored at the directory of
// the running executable.
func NewUtilityResolver() *UtilityResolver {
	resolver := &UtilityResolver{LookPath: exec.LookPath}
	if executable, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(executable); err == nil {
			executable = resolved
		}
		resolver.SelfDir = filepath.Dir(executable)
	}
	return resolver
}

// Resolve looks up a single program by name.
func (r *UtilityResolver) Resolve(name string) Lookup {
	if r.SelfDir != "" {
		colocated := filepath.Join(r.SelfDir, name)
		if isExecutable(colocated) {
			return Found(name, colocated)
		}
	}
	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if path, err := lookPath(name); err == nil {
		return Found(name, path)
	}
	return NotFound(name)
}

// ResolveAll resolves the entrypoint, export, and host-exec utilities.
// A missing entrypoint or export utility is a MissingDependencyError;
// host-exec is optional and simply not mounted when absent.
func (r *UtilityResolver) ResolveAll() (Utilities, error) {
	utilities := Utilities{
		Entrypoint: r.Resolve(EntrypointUtility),
		Export:     r.Resolve(ExportUtility),
		HostExec:   r.Resolve(HostExecUtility),
	}
	for _, required := range []Lookup{utilities.Entrypoint, utilities.Export} {
		if !required.Found {
			return utilities, &MissingDependencyError{
				Name: required.Name,
				Hint: "Install it next to this program or on PATH.",
			}
		}
	}
	return utilities, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
