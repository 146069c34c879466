// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Dbx creates containers integrated with the host ("boxes") using an
// installed podman or docker. It provides "create" to build a box,
// "check" to report whether the host is ready, and "version".
//
// Exit status is 0 on success (including refusing to recreate an
// existing box and a declined image pull), 1 for configuration and
// runtime errors, 127 when the container manager or a bundled utility
// is missing, and the container manager's own status when it fails.
package main
