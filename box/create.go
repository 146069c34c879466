// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Outcome is how a creation run ended without error.
type Outcome int

const (
	// OutcomeCreated means the box was created.
	OutcomeCreated Outcome = iota
	// OutcomeExists means a box with the name already existed and was
	// left untouched.
	OutcomeExists
	// OutcomePullDeclined means the operator declined to pull a missing
	// image.
	OutcomePullDeclined
	// OutcomeDryRun means the command was synthesized but not executed.
	OutcomeDryRun
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeExists:
		return "exists"
	case OutcomePullDeclined:
		return "pull-declined"
	case OutcomeDryRun:
		return "dry-run"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// CreateRequest is one creation run.
type CreateRequest struct {
	Spec      ContainerSpec
	Host      Host
	Utilities Utilities

	// AlwaysPull pulls the image even when it is present locally.
	AlwaysPull bool
	// NonInteractive pulls missing images without asking.
	NonInteractive bool
	// DryRun stops after synthesis. No container-manager call and no
	// filesystem change is made.
	DryRun bool
	// Verbose is forwarded to the entrypoint.
	Verbose bool
	// GenerateEntry runs the desktop-entry generator after a rootless
	// box is created.
	GenerateEntry bool
}

// Result describes a finished run.
type Result struct {
	Outcome Outcome
	// Spec is the spec actually used (Image is the clone tag when
	// cloning).
	Spec ContainerSpec
	// Command is the synthesized command; nil when the run stopped
	// before synthesis.
	Command *ManagerCommand
}

// EntryGenerator creates desktop entries for a new box.
type EntryGenerator interface {
	Generate(ctx context.Context, name string) error
}

// ExecEntryGenerator runs the external desktop-entry generator.
type ExecEntryGenerator struct {
	Resolver *UtilityResolver
	Runner   Runner
}

// Generate implements EntryGenerator. The generator's exit status is
// propagated through BackendExecutionError.
func (g *ExecEntryGenerator) Generate(ctx context.Context, name string) error {
	lookup := g.Resolver.Resolve(EntryGeneratorUtility)
	if !lookup.Found {
		return &MissingDependencyError{Name: EntryGeneratorUtility}
	}
	return g.Runner.Run(ctx, []string{lookup.Path, name})
}

// Creator runs the creation state machine:
//
//	(Cloning) -> CheckingExistence -> EnsuringImage -> Synthesizing ->
//	Executing -> (GeneratingEntry) -> Done
//
// DryRun skips every step that talks to the container manager and
// stops after Synthesizing. Configuration is resolved by the caller
// before Create is invoked.
type Creator struct {
	Manager  *Manager
	Cloner   *Cloner
	Prober   *Prober
	Prompter *Prompter
	Entries  EntryGenerator

	// Out receives operator-facing hints.
	Out    io.Writer
	Logger *slog.Logger
}

// Create runs one creation. Refusing to recreate an existing box and a
// declined pull are successful outcomes, not errors.
func (c *Creator) Create(ctx context.Context, request CreateRequest) (*Result, error) {
	spec := request.Spec
	logger := c.logger().With("container", spec.Name)

	if spec.Clone != "" {
		if request.DryRun {
			spec = spec.WithImage(c.Cloner.Tag(spec.Clone))
		} else {
			tag, err := c.Cloner.Clone(ctx, spec.Clone)
			if err != nil {
				return nil, err
			}
			spec = spec.WithImage(tag)
		}
		logger.Debug("using clone image", "source", spec.Clone, "image", spec.Image)
	}

	if !request.DryRun {
		if c.Manager.ContainerExists(ctx, spec.Name) {
			logger.Debug("container already exists")
			fmt.Fprintf(c.Out, "Distrobox named '%s' already exists.\nTo enter, run:\n\n%s\n\n",
				spec.Name, enterHint(spec))
			return &Result{Outcome: OutcomeExists, Spec: spec}, nil
		}

		proceed, err := c.ensureImage(ctx, request, spec)
		if err != nil {
			return nil, err
		}
		if !proceed {
			return &Result{Outcome: OutcomePullDeclined, Spec: spec}, nil
		}
	}

	command, err := Synthesize(SynthesisInput{
		Spec:      spec,
		Host:      request.Host,
		Backend:   c.Manager.Backend,
		Utilities: request.Utilities,
		Verbose:   request.Verbose,
	})
	if err != nil {
		return nil, err
	}
	if request.DryRun {
		return &Result{Outcome: OutcomeDryRun, Spec: spec, Command: command}, nil
	}

	if home, configured := ResolveHome(spec, request.Host.Home); configured {
		if err := c.Prober.EnsureDirectory(home); err != nil {
			return nil, err
		}
	}

	logger.Info("creating container", "image", spec.Image, "backend", string(c.Manager.Backend.Kind))
	logger.Debug("create command", "argv", command.Argv())
	if err := c.Manager.Create(ctx, command); err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Out, "Distrobox '%s' successfully created.\nTo enter, run:\n\n%s\n\n", spec.Name, enterHint(spec))

	if !spec.Rootful && request.GenerateEntry {
		logger.Debug("generating desktop entry")
		if err := c.Entries.Generate(ctx, spec.Name); err != nil {
			return nil, err
		}
	}

	return &Result{Outcome: OutcomeCreated, Spec: spec, Command: command}, nil
}

// ensureImage pulls the image when required. It returns false when
// the operator declined the pull.
func (c *Creator) ensureImage(ctx context.Context, request CreateRequest, spec ContainerSpec) (bool, error) {
	if !request.AlwaysPull && c.Manager.ImageExists(ctx, spec.Image) {
		return true, nil
	}

	if !request.AlwaysPull && !request.NonInteractive {
		pull, err := c.Prompter.Confirm(ctx, fmt.Sprintf("Image %s not found.\nDo you want to pull the image now?", spec.Image))
		if err != nil {
			return false, err
		}
		if !pull {
			fmt.Fprintf(c.Out, "next time, run this command first:\n\t%s\n",
				strings.Join(c.Manager.Backend.Argv("pull", spec.Image), " "))
			return false, nil
		}
	}

	c.logger().Info("pulling image", "image", spec.Image)
	if err := c.Manager.Pull(ctx, spec.Image); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Creator) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func enterHint(spec ContainerSpec) string {
	if spec.Rootful {
		return EnterCommand + " --root " + spec.Name
	}
	return EnterCommand + " " + spec.Name
}
