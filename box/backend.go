// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import "fmt"

// BackendKind identifies a supported container manager.
type BackendKind string

const (
	Podman BackendKind = "podman"
	Docker BackendKind = "docker"
)

// BackendPreference is the autodetection order.
var BackendPreference = []BackendKind{Podman, Docker}

// ParseBackendKind validates a backend name.
func ParseBackendKind(name string) (BackendKind, error) {
	switch BackendKind(name) {
	case Podman, Docker:
		return BackendKind(name), nil
	}
	return "", &ConfigError{Message: fmt.Sprintf(
		"invalid container manager %q: the available choices are 'autodetect', 'podman', 'docker'", name)}
}

// Backend is a resolved container manager invocation.
type Backend struct {
	Kind BackendKind

	// Path is the manager executable. Empty in plan-only (dry-run) mode
	// when no executable was found; Argv then falls back to the kind name.
	Path string

	// Rootful is true when containers are created by host root.
	Rootful bool

	// Sudo is the elevation program prefixed to every invocation when
	// Rootful is requested by a non-root user. Empty otherwise.
	Sudo string
}

// Argv returns the full argument vector for invoking the manager with
// args, including the elevation prefix.
func (b Backend) Argv(args ...string) []string {
	executable := b.Path
	if executable == "" {
		executable = string(b.Kind)
	}
	argv := make([]string, 0, len(args)+2)
	if b.Sudo != "" {
		argv = append(argv, b.Sudo)
	}
	argv = append(argv, executable)
	return append(argv, args...)
}

// Podman-only create flags. Docker accepts none of these.
func (b Backend) keepsOriginalGroups() bool { return b.Kind == Podman }
func (b Backend) mountsDevPts() bool        { return b.Kind == Podman }
func (b Backend) sharesHostUlimits() bool   { return b.Kind == Podman }
func (b Backend) runsSystemdMode() bool     { return b.Kind == Podman }
func (b Backend) mapsUserNamespace() bool   { return b.Kind == Podman && !b.Rootful }
