// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package box creates integrated containers ("boxes") on top of an
// existing container manager (podman or docker) driven through its CLI.
//
// A box shares the host's IPC, network, and (unless an init system is
// requested) PID namespaces, and bind-mounts the host root, devices,
// home directory, and session services so desktop applications run
// inside the container as if they were on the host. Package management
// stays separate: each box has its own root filesystem.
//
// The pieces, leaves first:
//
//   - [Prober] inspects the host filesystem for optional integration
//     points (SELinux fs, journal, /dev/shm target, Nix/Guix stores, XDG
//     runtime dir, /var/home alias, identity files). Missing paths are
//     simply absent from the resulting [Host].
//   - [UtilityResolver] finds the bundled in-container utilities, first
//     next to the running executable, then on PATH.
//   - [Synthesize] is a pure function from a [ContainerSpec], a [Host],
//     a [Backend], and the resolved [Utilities] to a [ManagerCommand]. It
//     never executes anything.
//   - [Cloner] snapshots a stopped box into a dated image tag.
//   - [Creator] runs the creation state machine: clone, existence check,
//     image pull (interactive or automatic), synthesis, execution, and
//     desktop-entry generation.
//
// The container manager itself, the in-container entrypoint, the
// desktop-entry generator, and the enter wrapper are external programs
// reached only through their command-line contracts.
package box
