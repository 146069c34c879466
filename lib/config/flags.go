// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/bureau-foundation/dbx/box"
)

// Overrides carries the command-line values. A nil pointer means the
// flag was not given; list values are appended to what earlier layers
// produced.
type Overrides struct {
	Image      *string
	Name       *string
	Clone      *string
	CustomHome *string

	InitHooks    *string
	PreInitHooks *string

	Rootful        *bool
	AlwaysPull     *bool
	NonInteractive *bool
	Init           *bool
	Nvidia         *bool
	NoEntry        *bool
	DryRun         *bool
	Verbose        *bool

	// AdditionalFlags are shell-quoted token lists, one per flag use.
	AdditionalFlags []string
	// AdditionalPackages are space-separated package lists.
	AdditionalPackages []string
	Volumes            []string
}

// FlagOverrides is the command-line layer.
func FlagOverrides(flags Overrides) Layer {
	return func(o Options) (Options, error) {
		assign(&o.Image, flags.Image)
		assign(&o.Name, flags.Name)
		assign(&o.Clone, flags.Clone)
		assign(&o.CustomHome, flags.CustomHome)
		assign(&o.InitHooks, flags.InitHooks)
		assign(&o.PreInitHooks, flags.PreInitHooks)

		assign(&o.Rootful, flags.Rootful)
		assign(&o.AlwaysPull, flags.AlwaysPull)
		assign(&o.NonInteractive, flags.NonInteractive)
		assign(&o.Init, flags.Init)
		assign(&o.Nvidia, flags.Nvidia)
		assign(&o.DryRun, flags.DryRun)
		assign(&o.Verbose, flags.Verbose)
		if flags.NoEntry != nil {
			o.GenerateEntry = !*flags.NoEntry
		}

		for _, raw := range flags.AdditionalFlags {
			words, err := splitWords(raw)
			if err != nil {
				return Options{}, &box.ConfigError{Message: fmt.Sprintf("--additional-flags: %v", err)}
			}
			o.AdditionalFlags = append(o.AdditionalFlags, words...)
		}
		for _, raw := range flags.AdditionalPackages {
			o.AdditionalPackages = append(o.AdditionalPackages, splitPackages(raw)...)
		}
		o.AdditionalPackages = lo.Uniq(o.AdditionalPackages)
		o.Volumes = append(o.Volumes, flags.Volumes...)
		return o, nil
	}
}

func assign[T any](field *T, value *T) {
	if value != nil {
		*field = *value
	}
}
