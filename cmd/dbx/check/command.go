// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package check implements "dbx check", a pre-flight report of
// everything box creation depends on.
package check

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/dbx/box"
	"github.com/bureau-foundation/dbx/cmd/dbx/cli"
	"github.com/bureau-foundation/dbx/cmd/dbx/create"
	"github.com/bureau-foundation/dbx/lib/config"
)

type params struct {
	cli.JSONOutput
	Root bool `json:"-" flag:"root,r" desc:"check the rootful setup"`
}

// Command returns "dbx check" bound to the real process state.
func Command() *cli.Command {
	return NewCommand(create.OSSystem())
}

// NewCommand returns "dbx check" bound to system. Tests replace the
// SELinux and user-namespace probes through checker.
func NewCommand(system *create.System) *cli.Command {
	return newCommand(system, nil)
}

func newCommand(system *create.System, configure func(*box.Checker)) *cli.Command {
	var p params

	return &cli.Command{
		Name:    "check",
		Summary: "Check that this host can create boxes",
		Description: `Report the container manager and its version, rootless or rootful mode,
SELinux state, nested user namespaces, the bundled utilities, and which
optional host paths would be mounted into a new box.

Exits 1 when a required piece is missing.`,
		Usage: "dbx check [flags]",
		Examples: []cli.Example{
			{Description: "Check the rootless setup", Command: "dbx check"},
			{Description: "Check the rootful setup as JSON", Command: "dbx check --root --json"},
		},
		Flags: func() *pflag.FlagSet {
			p = params{}
			return cli.FlagsFromParams("check", &p)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return run(ctx, system, p, configure)
		},
	}
}

func run(ctx context.Context, system *create.System, p params, configure func(*box.Checker)) error {
	identity, err := system.Identity()
	if err != nil {
		return err
	}

	rootful := p.Root
	options, err := config.Resolve(
		config.Defaults(system.Euid),
		config.Files(system.ConfigPaths(identity.Home, lookup(system, "XDG_CONFIG_HOME"))),
		config.Environment(system.LookupEnv),
		config.FlagOverrides(config.Overrides{Rootful: &rootful}),
	)
	if err != nil {
		return err
	}

	checker := &box.Checker{
		Host:     system.Prober.Probe(identity),
		Resolver: system.Resolver,
	}
	backend, err := config.ResolveBackend(options, system.Euid, system.LookPath)
	if err != nil {
		checker.BackendErr = err
	} else {
		checker.Manager = &box.Manager{Backend: backend, Runner: system.Runner}
	}
	if configure != nil {
		configure(checker)
	}

	report := checker.Run(ctx)
	if done, err := p.EmitJSON(system.Stdout, report.Results()); done {
		if err != nil {
			return err
		}
	} else {
		report.Print(system.Stdout)
	}
	if report.HasFailures() {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func lookup(system *create.System, key string) string {
	value, _ := system.LookupEnv(key)
	return value
}
