// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete dbx command tree.
package commands

import (
	"fmt"
	"os"

	checkcmd "github.com/bureau-foundation/dbx/cmd/dbx/check"
	"github.com/bureau-foundation/dbx/cmd/dbx/cli"
	createcmd "github.com/bureau-foundation/dbx/cmd/dbx/create"
	"github.com/bureau-foundation/dbx/lib/version"
)

// Root builds and returns the complete dbx command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "dbx",
		Description: `dbx: integrated containers on podman or docker.

Create containers ("boxes") that share the host's home directory,
devices, network, and session services, so tools installed inside run
as if they were installed on the host.`,
		Subcommands: []*cli.Command{
			createcmd.Command(),
			checkcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintln(os.Stdout, version.Full())
					return nil
				},
			},
		},
	}
}
