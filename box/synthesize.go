// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	hostRootDest = "/run/host"
	terminfoDirs = "/usr/share/terminfo:/run/host/usr/share/terminfo"
	managerLabel = "manager=distrobox"
)

// SynthesisInput is everything the synthesizer needs. All host state
// has already been probed; Synthesize does not touch the filesystem.
type SynthesisInput struct {
	Spec      ContainerSpec
	Host      Host
	Backend   Backend
	Utilities Utilities
	Verbose   bool
}

// Synthesize builds the create command for one box. It is a pure
// function of its input: the same input always yields the same
// command, and nothing is executed.
func Synthesize(input SynthesisInput) (*ManagerCommand, error) {
	spec := input.Spec
	if spec.Name == "" {
		return nil, &ConfigError{Message: "container name is required"}
	}
	if spec.Image == "" {
		return nil, &ConfigError{Message: "container image is required"}
	}
	for _, required := range []Lookup{input.Utilities.Entrypoint, input.Utilities.Export} {
		if !required.Found {
			return nil, &MissingDependencyError{Name: required.Name}
		}
	}

	home, customHome := ResolveHome(spec, input.Host.Home)

	command := &ManagerCommand{
		Backend:    input.Backend,
		Verb:       "create",
		Entrypoint: entrypointDest,
		Image:      spec.Image,
		InitHooks:  spec.InitHooks,
	}

	hostname := input.Host.Hostname
	if hostname == "" {
		hostname = spec.Name
	}
	command.Add(
		Option("--hostname", hostname),
		Option("--name", spec.Name),
	)

	addNamespaces(command, spec)
	addSecurity(command)
	addBackendFlags(command, input.Backend, spec)

	command.Add(Option("--label", managerLabel))
	for _, env := range environment(spec, input, home, customHome) {
		command.Add(Option("--env", env))
	}

	plan, err := BuildMountPlan(input, home)
	if err != nil {
		return nil, err
	}
	for _, mount := range plan {
		command.Add(Option("--volume", mount.Value()))
	}

	command.Extra = append([]string(nil), spec.ExtraFlags...)
	command.EntrypointArgs = entrypointArgs(spec, input, home)

	return command, nil
}

// ResolveHome applies the home precedence: custom home, then prefixed
// home (<prefix>/<name>), then the host home unchanged. The boolean is
// true when the result differs from the host home by configuration.
func ResolveHome(spec ContainerSpec, hostHome string) (string, bool) {
	switch {
	case spec.CustomHome != "":
		return spec.CustomHome, true
	case spec.HomePrefix != "":
		return filepath.Join(spec.HomePrefix, spec.Name), true
	default:
		return hostHome, false
	}
}

// BuildMountPlan computes the ordered bind mounts for a box. Optional
// host paths appear only when the probe found them.
func BuildMountPlan(input SynthesisInput, home string) (MountPlan, error) {
	host := input.Host
	var plan MountPlan

	plan.AddMapped("/", hostRootDest, ModeRSlave)
	plan.Add("/dev", ModeRSlave)
	plan.Add("/sys", ModeRSlave)
	plan.Add("/tmp", ModeRSlave)

	plan.AddMapped(input.Utilities.Entrypoint.Path, entrypointDest, ModeRO)
	plan.AddMapped(input.Utilities.Export.Path, exportDest, ModeRO)
	if input.Utilities.HostExec.Found {
		plan.AddMapped(input.Utilities.HostExec.Path, hostExecDest, ModeRO)
	}

	if home != "" {
		plan.Add(home, ModeRSlave)
	}
	if host.Home != "" && !plan.Contains(host.Home) {
		plan.Add(host.Home, ModeRSlave)
	}

	if host.SELinuxFS {
		plan.Add("/sys/fs/selinux", ModeRSlave)
	}
	if host.Journal {
		plan.Add("/var/log/journal", ModeRSlave)
	}
	if host.ShmTarget != "" {
		plan.Add(host.ShmTarget, ModeRSlave)
	}
	plan = append(plan, host.Stores...)
	if host.RuntimeDir != "" {
		plan.Add(host.RuntimeDir, ModeRSlave)
	}
	if host.VarHome != "" && !plan.Contains(host.VarHome) {
		plan.Add(host.VarHome, ModeRSlave)
	}
	for _, file := range host.IdentityFiles {
		plan.Add(file, ModeRO)
	}

	for _, volume := range input.Spec.Volumes {
		mount, err := ParseVolume(volume)
		if err != nil {
			return nil, &ConfigError{Message: err.Error()}
		}
		plan = append(plan, mount)
	}

	return plan.Dedup(), nil
}

// addNamespaces shares IPC, network, and (without an init system) PID
// namespaces with the host.
func addNamespaces(command *ManagerCommand, spec ContainerSpec) {
	command.Add(
		Option("--ipc", "host"),
		Option("--network", "host"),
	)
	if !spec.Init {
		command.Add(Option("--pid", "host"))
	}
}

// addSecurity runs the box privileged, unlabeled, and as root; the
// entrypoint drops to the target user itself.
func addSecurity(command *ManagerCommand) {
	command.Add(
		Switch("--privileged"),
		Option("--security-opt", "label=disable"),
		Option("--user", "root:root"),
	)
}

// addBackendFlags adds the flags only some backends understand.
func addBackendFlags(command *ManagerCommand, backend Backend, spec ContainerSpec) {
	if backend.keepsOriginalGroups() {
		command.Add(Option("--annotation", "run.oci.keep_original_groups=1"))
	}
	if backend.sharesHostUlimits() {
		command.Add(Option("--ulimit", "host"))
	}
	if backend.mountsDevPts() {
		command.Add(Option("--mount", "type=devpts,destination=/dev/pts"))
	}
	if spec.Init && backend.runsSystemdMode() {
		command.Add(Switch("--systemd=always"))
	}
	if backend.mapsUserNamespace() {
		command.Add(Option("--userns", "keep-id"))
	}
}

func environment(spec ContainerSpec, input SynthesisInput, home string, customHome bool) []string {
	shell := filepath.Base(input.Host.Shell)
	if shell == "." || shell == "/" {
		shell = "bash"
	}
	env := []string{
		"SHELL=" + shell,
		"HOME=" + home,
		"container=" + string(input.Backend.Kind),
		"TERMINFO_DIRS=" + terminfoDirs,
		"CONTAINER_ID=" + spec.Name,
	}
	if customHome {
		env = append(env, "DISTROBOX_HOST_HOME="+input.Host.Home)
	}
	return env
}

// entrypointArgs builds the fixed positional vector the in-box
// entrypoint expects.
func entrypointArgs(spec ContainerSpec, input SynthesisInput, home string) []Arg {
	var args []Arg
	if input.Verbose {
		args = append(args, Switch("--verbose"))
	}
	args = append(args,
		Option("--name", input.Host.User),
		Option("--user", strconv.Itoa(input.Host.UID)),
		Option("--group", strconv.Itoa(input.Host.GID)),
		Option("--home", home),
		Option("--init", boolFlag(spec.Init)),
		Option("--nvidia", boolFlag(spec.Nvidia)),
		Option("--pre-init-hooks", spec.PreInitHooks),
		Option("--additional-packages", strings.Join(spec.AdditionalPackages, " ")),
	)
	return args
}

func boolFlag(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

