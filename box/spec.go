// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Built-in defaults used when neither a name nor an image is given.
const (
	DefaultImage = "registry.fedoraproject.org/fedora-toolbox:39"
	DefaultName  = "my-distrobox"
)

// ContainerSpec is the resolved, immutable intent for one box. It is
// produced by the configuration resolver and never modified afterwards;
// the orchestrator derives a copy with WithImage when cloning.
type ContainerSpec struct {
	// Name is the container name. Never empty after resolution.
	Name string

	// Image is the image reference the box is created from. When Clone
	// is set, the orchestrator replaces it with the clone tag.
	Image string

	// Rootful runs the container manager with host root privileges.
	Rootful bool

	// CustomHome, when set, is used as the home directory inside the
	// box instead of the host home. It wins over HomePrefix.
	CustomHome string

	// HomePrefix, when set and CustomHome is not, places the box home at
	// <HomePrefix>/<Name>.
	HomePrefix string

	// Init runs a full init system as PID 1 inside the box.
	Init bool

	// Nvidia asks the entrypoint to integrate the host NVIDIA driver.
	Nvidia bool

	// ExtraFlags are raw tokens appended to the manager's create flags,
	// in order, before the entrypoint boundary.
	ExtraFlags []string

	// AdditionalPackages are installed by the entrypoint on first start.
	AdditionalPackages []string

	// Volumes are extra SRC:DST[:MODE] bind specifications.
	Volumes []string

	// InitHooks and PreInitHooks are shell fragments passed verbatim to
	// the entrypoint.
	InitHooks    string
	PreInitHooks string

	// Clone names an existing box to snapshot and use as the image.
	Clone string
}

// WithImage returns a copy of the spec with Image replaced.
func (s ContainerSpec) WithImage(image string) ContainerSpec {
	s.Image = image
	s.ExtraFlags = append([]string(nil), s.ExtraFlags...)
	s.AdditionalPackages = append([]string(nil), s.AdditionalPackages...)
	s.Volumes = append([]string(nil), s.Volumes...)
	return s
}

// Validate checks the invariants every resolved spec must hold.
func (s ContainerSpec) Validate() error {
	if s.Name == "" {
		return &ConfigError{Message: "container name must not be empty"}
	}
	if s.Image == "" && s.Clone == "" {
		return &ConfigError{Message: "either an image or a clone source is required"}
	}
	for _, home := range []string{s.CustomHome, s.HomePrefix} {
		if home != "" && !path.IsAbs(home) {
			return &ConfigError{Message: fmt.Sprintf("home directory %q must be an absolute path", home)}
		}
	}
	for _, volume := range s.Volumes {
		if _, err := ParseVolume(volume); err != nil {
			return &ConfigError{Message: err.Error()}
		}
	}
	return nil
}

// DeriveName computes a container name from an image reference: the
// basename of the reference (registry and repository path dropped) with
// every ':' and '.' replaced by '-'.
//
//	fedora-toolbox:35                                 -> fedora-toolbox-35
//	ghcr.io/void-linux/void-linux:latest-full-x86_64 -> void-linux-latest-full-x86_64
func DeriveName(image string) string {
	base := path.Base(strings.TrimRight(image, "/"))
	return strings.NewReplacer(":", "-", ".", "-").Replace(base)
}

// CloneTag computes the image tag a clone of source committed at the
// given time receives: "<source>:<YYYY-MM-DD>", lowercased. The date
// granularity makes repeated clones on the same day converge on one tag.
func CloneTag(source string, at time.Time) string {
	return strings.ToLower(fmt.Sprintf("%s:%s", source, at.Format(time.DateOnly)))
}
