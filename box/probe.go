// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"golang.org/x/sys/unix"
)

// identityFiles are host files mounted read-only into every box when
// present, so name resolution and the clock follow the host.
var identityFiles = []string{
	"/etc/hosts",
	"/etc/localtime",
	"/etc/resolv.conf",
}

// storePaths are package-manager stores shared with the box when they
// exist on the host, with the mode they are mounted with.
var storePaths = []struct {
	path string
	mode string
}{
	{"/nix", ModeRSlave},
	{"/gnu", ModeRSlave},
	{"/run/current-system/sw", ModeRORSlave},
}

// Identity is the invoking user as seen by the box.
type Identity struct {
	User  string
	UID   int
	GID   int
	Home  string
	Shell string
}

// CurrentIdentity reads the invoking user from the process credentials
// and environment.
func CurrentIdentity() (Identity, error) {
	current, err := user.Current()
	if err != nil {
		return Identity{}, fmt.Errorf("looking up current user: %w", err)
	}
	home := os.Getenv("HOME")
	if home == "" {
		home = current.HomeDir
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	return Identity{
		User:  current.Username,
		UID:   os.Getuid(),
		GID:   os.Getgid(),
		Home:  home,
		Shell: shell,
	}, nil
}

// Host is the result of probing the local machine. Every optional field
// is the zero value when the corresponding path is absent.
type Host struct {
	Identity
	Hostname string

	// SELinuxFS is true when /sys/fs/selinux exists.
	SELinuxFS bool
	// Journal is true when /var/log/journal exists.
	Journal bool
	// ShmTarget is the resolved target of /dev/shm when it is a symlink.
	ShmTarget string
	// Stores lists the package-manager stores present on the host.
	Stores []Mount
	// RuntimeDir is /run/user/<uid> when it exists.
	RuntimeDir string
	// VarHome is /var/home/<user> when it exists (ostree-based hosts).
	VarHome string
	// IdentityFiles lists the host identity files that exist.
	IdentityFiles []string
}

// Prober inspects the host filesystem. Every check is independent and
// read-only; results are never cached across runs.
type Prober struct {
	// Root is prepended to every probed path. "/" in production; tests
	// point it at a fake tree.
	Root string
}

// NewProber returns a prober for the real root filesystem.
func NewProber() *Prober {
	return &Prober{Root: "/"}
}

// Probe inspects the host for the given identity.
func (p *Prober) Probe(identity Identity) Host {
	host := Host{
		Identity:  identity,
		Hostname:  hostname(),
		SELinuxFS: p.isDir("/sys/fs/selinux"),
		Journal:   p.isDir("/var/log/journal"),
		ShmTarget: p.shmTarget(),
	}

	for _, store := range storePaths {
		if p.exists(store.path) {
			host.Stores = append(host.Stores, Mount{Source: store.path, Dest: store.path, Mode: store.mode})
		}
	}

	runtimeDir := "/run/user/" + strconv.Itoa(identity.UID)
	if p.isDir(runtimeDir) {
		host.RuntimeDir = runtimeDir
	}

	if identity.User != "" {
		varHome := "/var/home/" + identity.User
		if p.isDir(varHome) {
			host.VarHome = varHome
		}
	}

	for _, file := range identityFiles {
		if p.exists(file) {
			host.IdentityFiles = append(host.IdentityFiles, file)
		}
	}

	return host
}

// EnsureDirectory creates path (and parents) if it does not exist. A
// failure is returned as a HomeDirectoryError; it is never swallowed.
func (p *Prober) EnsureDirectory(path string) error {
	if err := os.MkdirAll(p.host(path), 0o755); err != nil {
		return &HomeDirectoryError{Path: path, Err: err}
	}
	return nil
}

// shmTarget resolves /dev/shm when it is a symlink. Resolution is
// scoped to Root so a fake tree never escapes into the real host.
func (p *Prober) shmTarget() string {
	info, err := os.Lstat(p.host("/dev/shm"))
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return ""
	}
	resolved, err := securejoin.SecureJoin(p.root(), "/dev/shm")
	if err != nil {
		return ""
	}
	if _, err := os.Stat(resolved); err != nil {
		return ""
	}
	target := "/" + strings.TrimPrefix(strings.TrimPrefix(resolved, p.root()), "/")
	if target == "/dev/shm" {
		return ""
	}
	return target
}

func (p *Prober) root() string {
	if p.Root == "" {
		return "/"
	}
	return filepath.Clean(p.Root)
}

func (p *Prober) host(path string) string {
	return filepath.Join(p.root(), path)
}

func (p *Prober) exists(path string) bool {
	_, err := os.Stat(p.host(path))
	return err == nil
}

func (p *Prober) isDir(path string) bool {
	info, err := os.Stat(p.host(path))
	return err == nil && info.IsDir()
}

// hostname returns the kernel node name, the same value `uname -n`
// prints.
func hostname() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		name, _ := os.Hostname()
		return name
	}
	return unix.ByteSliceToString(uts.Nodename[:])
}
