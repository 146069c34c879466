// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"slices"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Image    string   `flag:"image,i" desc:"image to use"`
		Verbose  bool     `flag:"verbose,v" desc:"enable verbose output"`
		Volumes  []string `flag:"volume" desc:"bind mounts"`
		Untagged string   // no flag tag, skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"-i", "alpine:latest",
		"-v",
		"--volume", "/srv:/srv:ro,rslave",
		"--volume", "/data",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Image != "alpine:latest" {
		t.Errorf("Image = %q, want alpine:latest", p.Image)
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if want := []string{"/srv:/srv:ro,rslave", "/data"}; !slices.Equal(p.Volumes, want) {
		t.Errorf("Volumes = %q, want %q (commas must not split values)", p.Volumes, want)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Manager string   `flag:"manager" desc:"backend" default:"autodetect"`
		Entry   bool     `flag:"entry" desc:"generate entry" default:"true"`
		Flags   []string `flag:"flags" desc:"extra flags" default:"--cpus=2"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if p.Manager != "autodetect" || !p.Entry || !slices.Equal(p.Flags, []string{"--cpus=2"}) {
		t.Errorf("defaults not applied: %+v", p)
	}

	if err := flagSet.Parse([]string{"--manager", "docker", "--entry=false"}); err != nil {
		t.Fatal(err)
	}
	if p.Manager != "docker" || p.Entry {
		t.Errorf("command line did not override defaults: %+v", p)
	}
}

type customBinder struct {
	enabled bool
}

func (b *customBinder) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&b.enabled, "custom", false, "bound by AddFlags")
}

func TestBindFlags_FlagBinderAndEmbedding(t *testing.T) {
	type params struct {
		JSONOutput
		Binder customBinder
		Root   bool `flag:"root,r" desc:"rootful"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--json", "--custom", "-r"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.OutputJSON || !p.Binder.enabled || !p.Root {
		t.Errorf("flags not bound: json=%v custom=%v root=%v", p.OutputJSON, p.Binder.enabled, p.Root)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	var notStruct int
	tests := []struct {
		name   string
		params any
		want   string
	}{
		{"not a pointer", struct{}{}, "pointer to a struct"},
		{"not a struct", &notStruct, "pointer to a struct"},
		{"bad default", &struct {
			Debug bool `flag:"debug" default:"maybe"`
		}{}, "default for --debug"},
		{"unsupported type", &struct {
			Count int `flag:"count"`
		}{}, "unsupported type"},
		{"unexported field", &struct {
			hidden string `flag:"hidden"`
		}{}, "must be exported"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := BindFlags(test.params, pflag.NewFlagSet("test", pflag.ContinueOnError))
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("BindFlags() = %v, want error containing %q", err, test.want)
			}
		})
	}
}

func TestFlagsFromParams_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic on a non-pointer")
		}
	}()
	FlagsFromParams("test", struct{}{})
}

func TestBindFlags_PositionalArgsRemain(t *testing.T) {
	type params struct {
		Name string `flag:"name,n" desc:"box name"`
	}

	var p params
	flagSet := FlagsFromParams("create", &p)
	if err := flagSet.Parse([]string{"-n", "dev", "extra"}); err != nil {
		t.Fatal(err)
	}
	if p.Name != "dev" || !slices.Equal(flagSet.Args(), []string{"extra"}) {
		t.Errorf("Name = %q, Args = %q", p.Name, flagSet.Args())
	}
}
