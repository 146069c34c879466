// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Mount modes used by the host-integration plan.
const (
	ModeRO       = "ro"
	ModeRW       = "rw"
	ModeRSlave   = "rslave"
	ModeRORSlave = "ro,rslave"
)

// volumeOptions are the per-mount options accepted in a user-supplied
// volume specification. Options may be combined with commas.
var volumeOptions = map[string]bool{
	ModeRO: true, ModeRW: true,
	ModeRSlave: true, "rshared": true, "rprivate": true,
	"slave": true, "shared": true, "private": true,
	"z": true, "Z": true, "U": true,
	"nosuid": true, "nodev": true, "noexec": true,
}

// Mount is one bind mount from the host into the box.
type Mount struct {
	Source string
	Dest   string
	// Mode is the option string after the second colon (for example
	// "ro" or "rslave"). Empty means the backend default.
	Mode string
}

// Value renders the mount as the argument to --volume.
func (m Mount) Value() string {
	if m.Mode == "" {
		return m.Source + ":" + m.Dest
	}
	return m.Source + ":" + m.Dest + ":" + m.Mode
}

// ParseVolume parses a "source:dest[:mode]" volume specification. A
// single path ("source") mounts the path at the same location.
func ParseVolume(spec string) (Mount, error) {
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return Mount{}, fmt.Errorf("invalid volume %q: source is required", spec)
		}
		return Mount{Source: parts[0], Dest: parts[0]}, nil
	case 2, 3:
		if parts[0] == "" || parts[1] == "" {
			return Mount{}, fmt.Errorf("invalid volume %q: must be source:dest[:mode]", spec)
		}
		mount := Mount{Source: parts[0], Dest: parts[1]}
		if len(parts) == 3 {
			for _, option := range strings.Split(parts[2], ",") {
				if !volumeOptions[option] {
					return Mount{}, fmt.Errorf("invalid volume %q: unknown mount option %q", spec, option)
				}
			}
			mount.Mode = parts[2]
		}
		return mount, nil
	default:
		return Mount{}, fmt.Errorf("invalid volume %q: must be source:dest[:mode]", spec)
	}
}

// MountPlan is the ordered list of bind mounts for one box.
type MountPlan []Mount

// Add appends a mount whose source and destination are the same path.
func (p *MountPlan) Add(path, mode string) {
	*p = append(*p, Mount{Source: path, Dest: path, Mode: mode})
}

// AddMapped appends a mount with distinct source and destination.
func (p *MountPlan) AddMapped(source, dest, mode string) {
	*p = append(*p, Mount{Source: source, Dest: dest, Mode: mode})
}

// Dedup returns the plan with later mounts onto an already used
// destination dropped. The first mount for a destination wins.
func (p MountPlan) Dedup() MountPlan {
	return lo.UniqBy(p, func(m Mount) string { return m.Dest })
}

// Contains reports whether any mount targets dest.
func (p MountPlan) Contains(dest string) bool {
	return lo.ContainsBy(p, func(m Mount) bool { return m.Dest == dest })
}
