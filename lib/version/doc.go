// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for dbx.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/dbx/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When no commit was injected, the VCS stamp recorded by the Go
// toolchain is used instead.
package version
