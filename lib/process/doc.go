// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint error handler. It is
// used for errors that escape the command tree, where the structured
// logger may not be initialized.
package process
