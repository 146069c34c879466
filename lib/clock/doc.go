// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// dbx only ever asks for the current time (clone tags are dated), so
// the interface is a single method. Production code uses Real(); tests
// use Fake() pinned to a known instant:
//
//	c := clock.Fake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
//	cloner := &box.Cloner{Clock: c}
package clock
