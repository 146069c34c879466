// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/mattn/go-shellwords"

	"github.com/bureau-foundation/dbx/box"
)

// ManagerAutodetect selects the first available backend.
const ManagerAutodetect = "autodetect"

// Options is the merged configuration for one invocation. Layers never
// mutate their input; they return a modified copy.
type Options struct {
	// Image and Name are empty unless set by a file, the environment,
	// or a flag. The defaults live in ImageDefault and NameDefault so
	// Spec can tell an explicit image from a defaulted one.
	Image        string
	Name         string
	ImageDefault string
	NameDefault  string

	Manager     string
	SudoProgram string
	Rootful     bool

	AlwaysPull     bool
	NonInteractive bool
	GenerateEntry  bool

	CustomHome string
	HomePrefix string

	Init   bool
	Nvidia bool
	Clone  string

	AdditionalFlags    []string
	AdditionalPackages []string
	Volumes            []string

	InitHooks    string
	PreInitHooks string

	DryRun  bool
	Verbose bool
}

// clone returns a copy whose slices do not alias o's.
func (o Options) clone() Options {
	o.AdditionalFlags = append([]string(nil), o.AdditionalFlags...)
	o.AdditionalPackages = append([]string(nil), o.AdditionalPackages...)
	o.Volumes = append([]string(nil), o.Volumes...)
	return o
}

// Layer is one override source.
type Layer func(Options) (Options, error)

// Resolve folds layers over empty options, in order.
func Resolve(layers ...Layer) (Options, error) {
	var options Options
	for _, layer := range layers {
		next, err := layer(options.clone())
		if err != nil {
			return Options{}, err
		}
		options = next
	}
	return options, nil
}

// Defaults is the built-in layer. A process running with effective UID
// 0 creates rootful boxes.
func Defaults(euid int) Layer {
	return func(o Options) (Options, error) {
		o.ImageDefault = box.DefaultImage
		o.NameDefault = box.DefaultName
		o.Manager = ManagerAutodetect
		o.SudoProgram = "sudo"
		o.Rootful = euid == 0
		o.GenerateEntry = true
		return o, nil
	}
}

// SearchPaths returns the configuration files read by Files, in
// priority order (later overrides earlier). xdgConfigHome defaults to
// ~/.config when empty.
func SearchPaths(home, xdgConfigHome string) []string {
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(home, ".config")
	}
	return []string{
		"/usr/share/distrobox/distrobox.conf",
		"/usr/share/defaults/distrobox/distrobox.conf",
		"/usr/etc/distrobox/distrobox.conf",
		"/usr/local/share/distrobox/distrobox.conf",
		"/etc/distrobox/distrobox.conf",
		filepath.Join(xdgConfigHome, "distrobox", "distrobox.conf"),
		filepath.Join(home, ".distroboxrc"),
	}
}

// Files reads each path as a shell-style key=value fragment and applies
// the recognized keys. Missing files are skipped. Problems in several
// files are reported together.
func Files(paths []string) Layer {
	return func(o Options) (Options, error) {
		var result *multierror.Error
		for _, path := range paths {
			values, err := godotenv.Read(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				result = multierror.Append(result, fmt.Errorf("reading %s: %w", path, err))
				continue
			}
			// Apply keys in a fixed order so list keys accumulate
			// deterministically within one file.
			for _, key := range fileKeyOrder {
				value, ok := values[key]
				if !ok {
					continue
				}
				if err := fileKeys[key](&o, value); err != nil {
					result = multierror.Append(result, fmt.Errorf("%s: %s: %w", path, key, err))
				}
			}
		}
		if err := result.ErrorOrNil(); err != nil {
			return Options{}, &box.ConfigError{Message: err.Error()}
		}
		return o, nil
	}
}

// Environment applies the DBX_* variables. Empty values are ignored.
func Environment(lookup func(string) (string, bool)) Layer {
	return func(o Options) (Options, error) {
		for _, variable := range envOrder {
			value, ok := lookup(variable)
			if !ok || value == "" {
				continue
			}
			if err := fileKeys[envKeys[variable]](&o, value); err != nil {
				return Options{}, &box.ConfigError{Message: fmt.Sprintf("%s: %v", variable, err)}
			}
		}
		return o, nil
	}
}

// Spec builds the container spec. Name defaulting:
//   - no name and no image: both take the built-in defaults;
//   - only an image: the name is derived from the image basename.
func (o Options) Spec() (box.ContainerSpec, error) {
	name, image := o.Name, o.Image
	if name == "" && image == "" {
		name = o.NameDefault
	}
	if image == "" && o.Clone == "" {
		image = o.ImageDefault
	}
	if name == "" && image != "" {
		name = box.DeriveName(image)
	}

	if image != "" {
		if _, err := reference.ParseNormalizedNamed(image); err != nil {
			return box.ContainerSpec{}, &box.ConfigError{Message: fmt.Sprintf("invalid image reference %q: %v", image, err)}
		}
	}

	// Homes are created on the host and mounted by the manager, which
	// reads a relative source as a named volume.
	customHome, err := absolutePath(o.CustomHome)
	if err != nil {
		return box.ContainerSpec{}, &box.ConfigError{Message: fmt.Sprintf("custom home %q: %v", o.CustomHome, err)}
	}
	homePrefix, err := absolutePath(o.HomePrefix)
	if err != nil {
		return box.ContainerSpec{}, &box.ConfigError{Message: fmt.Sprintf("home prefix %q: %v", o.HomePrefix, err)}
	}

	spec := box.ContainerSpec{
		Name:               name,
		Image:              image,
		Rootful:            o.Rootful,
		CustomHome:         customHome,
		HomePrefix:         homePrefix,
		Init:               o.Init,
		Nvidia:             o.Nvidia,
		ExtraFlags:         append([]string(nil), o.AdditionalFlags...),
		AdditionalPackages: append([]string(nil), o.AdditionalPackages...),
		Volumes:            append([]string(nil), o.Volumes...),
		InitHooks:          o.InitHooks,
		PreInitHooks:       o.PreInitHooks,
		Clone:              o.Clone,
	}
	if err := spec.Validate(); err != nil {
		return box.ContainerSpec{}, err
	}
	return spec, nil
}

func absolutePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}

// CheckElevation rejects a run as root that was started through sudo or
// doas: rootful boxes must be requested with --root instead.
func CheckElevation(euid int, lookup func(string) (string, bool)) error {
	if euid != 0 {
		return nil
	}
	for _, marker := range []string{"SUDO_USER", "DOAS_USER"} {
		if value, ok := lookup(marker); ok && value != "" {
			return &box.ConfigError{Message: "running via sudo or doas is not supported; run as your user with --root instead"}
		}
	}
	return nil
}

// ResolveBackend selects the container manager. An explicit choice must
// be podman or docker; "autodetect" takes the first found in
// box.BackendPreference. When nothing usable is found the result is a
// MissingDependencyError, except in dry-run mode, where synthesis
// proceeds with the chosen kind (podman when autodetecting) and no path.
func ResolveBackend(o Options, euid int, lookPath func(string) (string, error)) (box.Backend, error) {
	backend := box.Backend{Rootful: o.Rootful}
	if o.Rootful && euid != 0 {
		backend.Sudo = o.SudoProgram
		if backend.Sudo == "" {
			backend.Sudo = "sudo"
		}
	}

	choice := o.Manager
	if choice == "" || choice == ManagerAutodetect {
		for _, kind := range box.BackendPreference {
			if path, err := lookPath(string(kind)); err == nil {
				backend.Kind, backend.Path = kind, path
				return backend, nil
			}
		}
		if o.DryRun {
			backend.Kind = box.Podman
			return backend, nil
		}
		return box.Backend{}, &box.MissingDependencyError{
			Name: "container manager",
			Hint: "Please install one of podman or docker.",
		}
	}

	kind, err := box.ParseBackendKind(choice)
	if err != nil {
		return box.Backend{}, err
	}
	backend.Kind = kind
	path, err := lookPath(string(kind))
	if err != nil {
		if o.DryRun {
			return backend, nil
		}
		return box.Backend{}, &box.MissingDependencyError{Name: string(kind)}
	}
	backend.Path = path
	return backend, nil
}

// splitWords splits a shell-quoted token list.
func splitWords(value string) ([]string, error) {
	words, err := shellwords.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("cannot split %q: %w", value, err)
	}
	return words, nil
}

// parseBool accepts the spellings shell configs commonly use.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", value)
}
