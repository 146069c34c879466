// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package create implements "dbx create": resolve configuration from
// files, the environment, and flags, probe the host, and hand the
// resulting spec to box.Creator.
//
// All process-level state (stdio, environment, effective UID, PATH
// lookup, the container-manager runner) is reached through [System] so
// tests can drive the command end to end without a container manager.
package create
