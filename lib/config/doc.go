// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config resolves the options for one dbx invocation.
//
// Options are built by folding a sequence of [Layer] functions over an
// empty [Options] value. Each layer is a pure merge: it receives the
// options so far and returns a new value with its overrides applied.
// The standard order, later layers winning, is:
//
//  1. [Defaults]: built-in image and name, autodetected manager,
//     rootful when the effective UID is 0.
//  2. [Files]: shell-style key=value fragments from [SearchPaths],
//     system-wide first and the user's ~/.distroboxrc last.
//  3. [Environment]: the DBX_* variables.
//  4. [FlagOverrides]: command-line flags.
//
// Scalar values replace earlier ones; list values (additional packages,
// volumes, manager flags) accumulate.
//
// [Options.Spec] turns the merged options into an immutable
// box.ContainerSpec, applying the name-defaulting rules, and
// [ResolveBackend] selects the container manager. [CheckElevation]
// rejects invocations through sudo or doas.
package config
