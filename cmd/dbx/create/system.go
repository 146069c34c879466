// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package create

import (
	"io"
	"net/http"
	"os"
	"os/exec"

	"github.com/bureau-foundation/dbx/box"
	"github.com/bureau-foundation/dbx/lib/clock"
	"github.com/bureau-foundation/dbx/lib/config"
)

// System is the process state the create command depends on.
type System struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	LookupEnv func(string) (string, bool)
	Euid      int
	LookPath  func(string) (string, error)

	// ConfigPaths returns the configuration files to read.
	ConfigPaths func(home, xdgConfigHome string) []string

	Identity func() (box.Identity, error)
	Prober   *box.Prober
	Resolver *box.UtilityResolver
	Runner   box.Runner
	Clock    clock.Clock

	// HTTPClient fetches the compatibility list.
	HTTPClient *http.Client
}

// OSSystem returns the real process state.
func OSSystem() *System {
	return &System{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LookupEnv:   os.LookupEnv,
		Euid:        os.Geteuid(),
		LookPath:    exec.LookPath,
		ConfigPaths: config.SearchPaths,
		Identity:    box.CurrentIdentity,
		Prober:      box.NewProber(),
		Resolver:    box.NewUtilityResolver(),
		Runner:      box.NewExecRunner(),
		Clock:       clock.Real(),
	}
}

func (s *System) getenv(key string) string {
	value, _ := s.LookupEnv(key)
	return value
}
