// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compat provides the list of container images known to work
// as boxes.
//
// The list is published as a markdown table in the project
// documentation. [Lister] downloads the document for the running
// version once, extracts the Images column with goldmark, and caches
// the result as YAML under the user's cache directory. The cache is
// keyed by version, so a cache hit never touches the network and an
// upgrade fetches a fresh list.
package compat
