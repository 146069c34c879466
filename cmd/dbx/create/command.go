// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package create

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/dbx/box"
	"github.com/bureau-foundation/dbx/cmd/dbx/cli"
	"github.com/bureau-foundation/dbx/lib/compat"
	"github.com/bureau-foundation/dbx/lib/config"
	"github.com/bureau-foundation/dbx/lib/version"
)

// params holds the raw flag values. Only flags the user actually set
// become overrides; see overrides.
type params struct {
	Image        string `flag:"image,i" desc:"image to use for the container"`
	Name         string `flag:"name,n" desc:"name for the box"`
	Clone        string `flag:"clone,c" desc:"name of a box to clone; the clone's image replaces --image"`
	Home         string `flag:"home,H" desc:"custom HOME directory for the box"`
	InitHooks    string `flag:"init-hooks" desc:"commands to run at the end of box initialization"`
	PreInitHooks string `flag:"pre-init-hooks" desc:"commands to run at the start of box initialization"`

	Pull          bool `flag:"pull,p" desc:"pull the image even if it exists locally"`
	Yes           bool `flag:"yes,Y" desc:"non-interactive: pull images without asking"`
	Root          bool `flag:"root,r" desc:"create a rootful box (uses the sudo program when not root)"`
	Init          bool `flag:"init,I" desc:"use an init system inside the box (disables PID namespace sharing)"`
	Nvidia        bool `flag:"nvidia" desc:"integrate the host NVIDIA driver"`
	NoEntry       bool `flag:"no-entry" desc:"do not generate a desktop entry"`
	DryRun        bool `flag:"dry-run,d" desc:"only print the container manager command"`
	Verbose       bool `flag:"verbose,v" desc:"show debug output"`
	Version       bool `flag:"version,V" desc:"show version"`
	Compatibility bool `flag:"compatibility,C" desc:"list images known to work and exit"`

	AdditionalFlags    []string `flag:"additional-flags,a" desc:"additional flags for the container manager create command"`
	AdditionalPackages []string `flag:"additional-packages" desc:"packages to install inside the box (also -ap)"`
	Volumes            []string `flag:"volume" desc:"additional bind mount SRC:DST[:MODE]"`
}

// Command returns "dbx create" bound to the real process state.
func Command() *cli.Command {
	return NewCommand(OSSystem())
}

// NewCommand returns "dbx create" bound to system.
func NewCommand(system *System) *cli.Command {
	var p params
	var flagSet *pflag.FlagSet

	return &cli.Command{
		Name:    "create",
		Summary: "Create a new box",
		Description: `Create a container integrated with the host: it shares the host's
network, IPC, and (without --init) PID namespaces, mounts the home
directory, devices, and session services, and runs as the invoking user.

Options come from, in increasing priority: built-in defaults, the
distrobox.conf files and ~/.distroboxrc, DBX_* environment variables,
and the flags below. NAME may be given as the only positional argument
instead of --name.`,
		Usage: "dbx create [flags] [NAME]",
		Examples: []cli.Example{
			{Description: "Create a box from the default image", Command: "dbx create"},
			{Description: "Create a named Ubuntu box", Command: "dbx create --image docker.io/library/ubuntu:22.04 --name ubuntu"},
			{Description: "Copy an existing box", Command: "dbx create --clone ubuntu --name ubuntu-copy"},
			{Description: "Print the container manager command without running it", Command: "dbx create --dry-run -i alpine:latest test"},
		},
		NormalizeArgs: normalizeArgs,
		Flags: func() *pflag.FlagSet {
			p = params{}
			flagSet = cli.FlagsFromParams("create", &p)
			return flagSet
		},
		Run: func(args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return interrupted(run(ctx, system, p, overrides(p, flagSet), args))
		},
	}
}

// interrupted turns a cancellation by SIGINT or SIGTERM into the
// conventional 128+SIGINT status without an error line.
func interrupted(err error) error {
	if errors.Is(err, context.Canceled) {
		return &cli.ExitError{Code: 130}
	}
	return err
}

// normalizeArgs rewrites the two-letter -ap shorthand, which pflag
// cannot express, to --additional-packages.
func normalizeArgs(args []string) []string {
	normalized := make([]string, 0, len(args))
	for index, arg := range args {
		if arg == "--" {
			return append(normalized, args[index:]...)
		}
		switch {
		case arg == "-ap":
			arg = "--additional-packages"
		case strings.HasPrefix(arg, "-ap="):
			arg = "--additional-packages=" + strings.TrimPrefix(arg, "-ap=")
		}
		normalized = append(normalized, arg)
	}
	return normalized
}

// overrides converts the flags the user set into a config layer input.
func overrides(p params, flagSet *pflag.FlagSet) config.Overrides {
	var o config.Overrides
	changed := func(name string) bool { return flagSet != nil && flagSet.Changed(name) }
	stringFlag := func(name string, value string) *string {
		if changed(name) {
			return &value
		}
		return nil
	}
	boolFlag := func(name string, value bool) *bool {
		if changed(name) {
			return &value
		}
		return nil
	}

	o.Image = stringFlag("image", p.Image)
	o.Name = stringFlag("name", p.Name)
	o.Clone = stringFlag("clone", p.Clone)
	o.CustomHome = stringFlag("home", p.Home)
	o.InitHooks = stringFlag("init-hooks", p.InitHooks)
	o.PreInitHooks = stringFlag("pre-init-hooks", p.PreInitHooks)
	o.AlwaysPull = boolFlag("pull", p.Pull)
	o.NonInteractive = boolFlag("yes", p.Yes)
	o.Rootful = boolFlag("root", p.Root)
	o.Init = boolFlag("init", p.Init)
	o.Nvidia = boolFlag("nvidia", p.Nvidia)
	o.NoEntry = boolFlag("no-entry", p.NoEntry)
	o.DryRun = boolFlag("dry-run", p.DryRun)
	o.Verbose = boolFlag("verbose", p.Verbose)
	o.AdditionalFlags = p.AdditionalFlags
	o.AdditionalPackages = p.AdditionalPackages
	o.Volumes = p.Volumes
	return o
}

func run(ctx context.Context, system *System, p params, flags config.Overrides, args []string) error {
	if p.Version {
		fmt.Fprintln(system.Stdout, version.Info())
		return nil
	}

	if len(args) > 1 {
		return &box.ConfigError{Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(args[1:], " "))}
	}
	if len(args) == 1 {
		if flags.Name != nil && *flags.Name != args[0] {
			return &box.ConfigError{Message: fmt.Sprintf("conflicting names: --name %s and %s", *flags.Name, args[0])}
		}
		flags.Name = &args[0]
	}

	identity, err := system.Identity()
	if err != nil {
		return err
	}

	if p.Compatibility {
		return printCompatibility(ctx, system, identity.Home, p.Verbose)
	}

	if err := config.CheckElevation(system.Euid, system.LookupEnv); err != nil {
		return err
	}

	options, err := config.Resolve(
		config.Defaults(system.Euid),
		config.Files(system.ConfigPaths(identity.Home, system.getenv("XDG_CONFIG_HOME"))),
		config.Environment(system.LookupEnv),
		config.FlagOverrides(flags),
	)
	if err != nil {
		return err
	}

	logger := cli.NewCommandLogger(options.Verbose).With("command", "create")

	spec, err := options.Spec()
	if err != nil {
		return err
	}
	logger = logger.With("container", spec.Name)

	backend, err := config.ResolveBackend(options, system.Euid, system.LookPath)
	if err != nil {
		return err
	}
	logger.Debug("resolved backend", "kind", string(backend.Kind), "path", backend.Path, "rootful", backend.Rootful)

	utilities, err := system.Resolver.ResolveAll()
	if err != nil {
		return err
	}
	host := system.Prober.Probe(identity)

	manager := &box.Manager{Backend: backend, Runner: system.Runner}
	creator := &box.Creator{
		Manager:  manager,
		Cloner:   &box.Cloner{Manager: manager, Clock: system.Clock, Logger: logger},
		Prober:   system.Prober,
		Prompter: &box.Prompter{In: system.Stdin, Out: system.Stdout},
		Entries:  &box.ExecEntryGenerator{Resolver: system.Resolver, Runner: system.Runner},
		Out:      system.Stdout,
		Logger:   logger,
	}

	result, err := creator.Create(ctx, box.CreateRequest{
		Spec:           spec,
		Host:           host,
		Utilities:      utilities,
		AlwaysPull:     options.AlwaysPull,
		NonInteractive: options.NonInteractive,
		DryRun:         options.DryRun,
		Verbose:        options.Verbose,
		GenerateEntry:  options.GenerateEntry,
	})
	if err != nil {
		return err
	}
	logger.Debug("create finished", "outcome", result.Outcome.String())

	if result.Outcome == box.OutcomeDryRun {
		printCommand(system, result.Command.String())
	}
	return nil
}

// printCommand writes the dry-run command as one line, highlighted as
// shell when stdout is a terminal.
func printCommand(system *System, line string) {
	if cli.IsTerminal(system.Stdout) {
		if err := quick.Highlight(system.Stdout, line+"\n", "bash", "terminal256", "monokai"); err == nil {
			return
		}
	}
	fmt.Fprintln(system.Stdout, line)
}

func printCompatibility(ctx context.Context, system *System, home string, verbose bool) error {
	lister := &compat.Lister{
		Version:  version.Short(),
		CacheDir: compat.CacheDir(home, system.getenv("XDG_CACHE_HOME")),
		Client:   system.HTTPClient,
		Clock:    system.Clock,
		Logger:   cli.NewCommandLogger(verbose).With("command", "create"),
	}
	images, err := lister.Images(ctx)
	if err != nil {
		return err
	}
	for _, image := range images {
		fmt.Fprintln(system.Stdout, image)
	}
	return nil
}
