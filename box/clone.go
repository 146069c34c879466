// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/dbx/lib/clock"
)

// Cloner snapshots an existing box into a new image so another box can
// be created from it.
type Cloner struct {
	Manager *Manager
	Clock   clock.Clock
	Logger  *slog.Logger
}

// Tag returns the image tag a clone of source taken now would get,
// without touching the container manager.
func (c *Cloner) Tag(source string) string {
	return CloneTag(source, c.Clock.Now())
}

// Clone commits the stopped container source to a dated tag and
// returns the tag. A running source yields SourceRunningError; a failed
// commit yields CommitFailedError. Cloning the same source twice on one
// day produces the same tag.
func (c *Cloner) Clone(ctx context.Context, source string) (string, error) {
	status, err := c.Manager.ContainerStatus(ctx, source)
	if err != nil {
		return "", fmt.Errorf("inspecting clone source %s: %w", source, err)
	}
	if status == "running" {
		return "", &SourceRunningError{Source: source}
	}

	id, err := c.Manager.ContainerID(ctx, source)
	if err != nil {
		return "", fmt.Errorf("resolving id of clone source %s: %w", source, err)
	}

	tag := c.Tag(source)
	c.logger().Info("duplicating container", "source", source, "id", id, "tag", tag)
	if err := c.Manager.Commit(ctx, id, tag); err != nil {
		return "", &CommitFailedError{Source: source, Err: err}
	}
	return tag, nil
}

func (c *Cloner) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
