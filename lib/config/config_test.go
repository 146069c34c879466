// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/dbx/box"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mapLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func ptr[T any](value T) *T { return &value }

func TestDefaults(t *testing.T) {
	t.Parallel()

	options, err := Resolve(Defaults(1000))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if options.Manager != ManagerAutodetect {
		t.Errorf("Manager = %q, want %q", options.Manager, ManagerAutodetect)
	}
	if options.SudoProgram != "sudo" {
		t.Errorf("SudoProgram = %q, want sudo", options.SudoProgram)
	}
	if options.Rootful {
		t.Error("Rootful should be false for a regular user")
	}
	if !options.GenerateEntry {
		t.Error("GenerateEntry should default to true")
	}

	root, err := Resolve(Defaults(0))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !root.Rootful {
		t.Error("Rootful should default to true for UID 0")
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("/home/alice", "")
	if len(paths) != 7 {
		t.Fatalf("got %d paths, want 7", len(paths))
	}
	if paths[0] != "/usr/share/distrobox/distrobox.conf" {
		t.Errorf("first path = %q", paths[0])
	}
	if paths[5] != "/home/alice/.config/distrobox/distrobox.conf" {
		t.Errorf("XDG path = %q", paths[5])
	}
	if paths[6] != "/home/alice/.distroboxrc" {
		t.Errorf("last path = %q", paths[6])
	}

	custom := SearchPaths("/home/alice", "/xdg")
	if custom[5] != "/xdg/distrobox/distrobox.conf" {
		t.Errorf("XDG path with XDG_CONFIG_HOME = %q", custom[5])
	}
}

func TestFilesLaterOverridesEarlier(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	system := filepath.Join(directory, "etc", "distrobox.conf")
	user := filepath.Join(directory, "home", ".distroboxrc")
	writeFile(t, system, `# system defaults
container_image="alpine:3.19"
container_manager=docker
container_always_pull=1
container_additional_packages="git vim"
`)
	writeFile(t, user, `export container_image="ubuntu:22.04"
container_generate_entry=false
container_additional_packages="htop"
container_manager_additional_flags="--env 'GREETING=hello world'"
`)

	options, err := Resolve(
		Defaults(1000),
		Files([]string{system, filepath.Join(directory, "missing.conf"), user}),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if options.Image != "ubuntu:22.04" {
		t.Errorf("Image = %q, want ubuntu:22.04", options.Image)
	}
	if options.Manager != "docker" {
		t.Errorf("Manager = %q, want docker", options.Manager)
	}
	if !options.AlwaysPull {
		t.Error("AlwaysPull should be true")
	}
	if options.GenerateEntry {
		t.Error("GenerateEntry should be false")
	}
	if want := []string{"git", "vim", "htop"}; !reflect.DeepEqual(options.AdditionalPackages, want) {
		t.Errorf("AdditionalPackages = %v, want %v", options.AdditionalPackages, want)
	}
	if want := []string{"--env", "GREETING=hello world"}; !reflect.DeepEqual(options.AdditionalFlags, want) {
		t.Errorf("AdditionalFlags = %v, want %v", options.AdditionalFlags, want)
	}
}

func TestFilesAggregatesErrors(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	first := filepath.Join(directory, "first.conf")
	second := filepath.Join(directory, "second.conf")
	writeFile(t, first, "container_always_pull=maybe\n")
	writeFile(t, second, "non_interactive=sometimes\n")

	_, err := Resolve(Defaults(1000), Files([]string{first, second}))
	var configErr *box.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want *box.ConfigError", err)
	}
	for _, fragment := range []string{"first.conf", "second.conf"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q does not mention %s", err, fragment)
		}
	}
}

func TestEnvironmentOverridesFiles(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	path := filepath.Join(directory, "distrobox.conf")
	writeFile(t, path, "container_name=from-file\ncontainer_home_prefix=/boxes\n")

	options, err := Resolve(
		Defaults(1000),
		Files([]string{path}),
		Environment(mapLookup(map[string]string{
			"DBX_CONTAINER_NAME":        "from-env",
			"DBX_NON_INTERACTIVE":       "yes",
			"DBX_CONTAINER_HOME_PREFIX": "",
			"DBX_SUDO_PROGRAM":          "doas",
		})),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if options.Name != "from-env" {
		t.Errorf("Name = %q, want from-env", options.Name)
	}
	if !options.NonInteractive {
		t.Error("NonInteractive should be true")
	}
	if options.HomePrefix != "/boxes" {
		t.Errorf("HomePrefix = %q: an empty variable must not override", options.HomePrefix)
	}
	if options.SudoProgram != "doas" {
		t.Errorf("SudoProgram = %q, want doas", options.SudoProgram)
	}
}

func TestEnvironmentRejectsBadBoolean(t *testing.T) {
	t.Parallel()

	_, err := Resolve(Defaults(1000), Environment(mapLookup(map[string]string{
		"DBX_CONTAINER_ALWAYS_PULL": "perhaps",
	})))
	var configErr *box.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want *box.ConfigError", err)
	}
}

func TestFlagOverrides(t *testing.T) {
	t.Parallel()

	options, err := Resolve(
		Defaults(1000),
		Environment(mapLookup(map[string]string{"DBX_CONTAINER_IMAGE": "alpine:3.19"})),
		FlagOverrides(Overrides{
			Image:              ptr("ubuntu:22.04"),
			NoEntry:            ptr(true),
			Init:               ptr(true),
			AdditionalFlags:    []string{"--cpus 2", "--env 'A=b c'"},
			AdditionalPackages: []string{"git vim", "git"},
			Volumes:            []string{"/opt:/opt:ro"},
		}),
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if options.Image != "ubuntu:22.04" {
		t.Errorf("Image = %q, want ubuntu:22.04", options.Image)
	}
	if options.GenerateEntry {
		t.Error("--no-entry should disable entry generation")
	}
	if !options.Init {
		t.Error("Init should be true")
	}
	if want := []string{"--cpus", "2", "--env", "A=b c"}; !reflect.DeepEqual(options.AdditionalFlags, want) {
		t.Errorf("AdditionalFlags = %v, want %v", options.AdditionalFlags, want)
	}
	if want := []string{"git", "vim"}; !reflect.DeepEqual(options.AdditionalPackages, want) {
		t.Errorf("AdditionalPackages = %v, want %v", options.AdditionalPackages, want)
	}
	if want := []string{"/opt:/opt:ro"}; !reflect.DeepEqual(options.Volumes, want) {
		t.Errorf("Volumes = %v, want %v", options.Volumes, want)
	}
}

func TestFlagOverridesUnterminatedQuote(t *testing.T) {
	t.Parallel()

	_, err := Resolve(Defaults(1000), FlagOverrides(Overrides{
		AdditionalFlags: []string{`--env "unterminated`},
	}))
	if err == nil {
		t.Fatal("expected an error for an unterminated quote")
	}
}

func TestResolveDoesNotAliasLayers(t *testing.T) {
	t.Parallel()

	var captured Options
	_, err := Resolve(
		FlagOverrides(Overrides{Volumes: []string{"/a"}}),
		func(o Options) (Options, error) {
			captured = o
			return o, nil
		},
		func(o Options) (Options, error) {
			o.Volumes[0] = "/mutated"
			return o, nil
		},
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if captured.Volumes[0] != "/a" {
		t.Errorf("earlier layer output mutated: %v", captured.Volumes)
	}
}

func TestSpecNameDefaulting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		options   Options
		wantName  string
		wantImage string
	}{
		{
			name:      "nothing given",
			options:   Options{},
			wantName:  box.DefaultName,
			wantImage: box.DefaultImage,
		},
		{
			name:      "image only",
			options:   Options{Image: "ghcr.io/void-linux/void-linux:latest-full-x86_64"},
			wantName:  "void-linux-latest-full-x86_64",
			wantImage: "ghcr.io/void-linux/void-linux:latest-full-x86_64",
		},
		{
			name:      "name only",
			options:   Options{Name: "dev"},
			wantName:  "dev",
			wantImage: box.DefaultImage,
		},
		{
			name:      "both",
			options:   Options{Name: "dev", Image: "alpine:latest"},
			wantName:  "dev",
			wantImage: "alpine:latest",
		},
		{
			name:      "clone without name",
			options:   Options{Clone: "source"},
			wantName:  box.DefaultName,
			wantImage: "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			options, err := Resolve(Defaults(1000), func(o Options) (Options, error) {
				o.Name, o.Image, o.Clone = test.options.Name, test.options.Image, test.options.Clone
				return o, nil
			})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			spec, err := options.Spec()
			if err != nil {
				t.Fatalf("Spec: %v", err)
			}
			if spec.Name != test.wantName {
				t.Errorf("Name = %q, want %q", spec.Name, test.wantName)
			}
			if spec.Image != test.wantImage {
				t.Errorf("Image = %q, want %q", spec.Image, test.wantImage)
			}
		})
	}
}

func TestSpecRejectsInvalidImage(t *testing.T) {
	t.Parallel()

	options := Options{Image: "Not A Valid/Reference"}
	_, err := options.Spec()
	var configErr *box.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("error = %v, want *box.ConfigError", err)
	}
}

func TestSpecMakesHomesAbsolute(t *testing.T) {
	t.Chdir(t.TempDir())
	workdir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	options := Options{Image: "alpine:latest", CustomHome: "relhome", HomePrefix: "../boxes"}
	spec, err := options.Spec()
	if err != nil {
		t.Fatalf("Spec: %v", err)
	}
	if want := filepath.Join(workdir, "relhome"); spec.CustomHome != want {
		t.Errorf("CustomHome = %q, want %q", spec.CustomHome, want)
	}
	if want := filepath.Join(filepath.Dir(workdir), "boxes"); spec.HomePrefix != want {
		t.Errorf("HomePrefix = %q, want %q", spec.HomePrefix, want)
	}

	options = Options{Image: "alpine:latest", CustomHome: "/data/home"}
	spec, err = options.Spec()
	if err != nil {
		t.Fatalf("Spec: %v", err)
	}
	if spec.CustomHome != "/data/home" || spec.HomePrefix != "" {
		t.Errorf("absolute home changed: CustomHome %q, HomePrefix %q", spec.CustomHome, spec.HomePrefix)
	}
}

func TestCheckElevation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		euid    int
		env     map[string]string
		wantErr bool
	}{
		{"regular user", 1000, map[string]string{"SUDO_USER": "alice"}, false},
		{"plain root", 0, nil, false},
		{"root via sudo", 0, map[string]string{"SUDO_USER": "alice"}, true},
		{"root via doas", 0, map[string]string{"DOAS_USER": "alice"}, true},
		{"empty marker", 0, map[string]string{"SUDO_USER": ""}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := CheckElevation(test.euid, mapLookup(test.env))
			if (err != nil) != test.wantErr {
				t.Fatalf("CheckElevation() = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

func lookPathFor(found ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, candidate := range found {
			if candidate == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestResolveBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		options  Options
		euid     int
		found    []string
		wantKind box.BackendKind
		wantPath string
		wantSudo string
		wantExit int
	}{
		{
			name:     "autodetect prefers podman",
			options:  Options{Manager: ManagerAutodetect},
			found:    []string{"docker", "podman"},
			wantKind: box.Podman,
			wantPath: "/usr/bin/podman",
		},
		{
			name:     "autodetect falls back to docker",
			options:  Options{Manager: ManagerAutodetect},
			found:    []string{"docker"},
			wantKind: box.Docker,
			wantPath: "/usr/bin/docker",
		},
		{
			name:     "nothing installed",
			options:  Options{Manager: ManagerAutodetect},
			wantExit: box.ExitMissingDependency,
		},
		{
			name:     "nothing installed in dry run",
			options:  Options{Manager: ManagerAutodetect, DryRun: true},
			wantKind: box.Podman,
		},
		{
			name:     "explicit docker",
			options:  Options{Manager: "docker"},
			found:    []string{"docker", "podman"},
			wantKind: box.Docker,
			wantPath: "/usr/bin/docker",
		},
		{
			name:     "explicit but missing",
			options:  Options{Manager: "docker"},
			found:    []string{"podman"},
			wantExit: box.ExitMissingDependency,
		},
		{
			name:     "unknown manager",
			options:  Options{Manager: "lxc"},
			found:    []string{"podman"},
			wantExit: box.ExitFailure,
		},
		{
			name:     "rootful as user uses sudo program",
			options:  Options{Manager: "podman", Rootful: true, SudoProgram: "doas"},
			euid:     1000,
			found:    []string{"podman"},
			wantKind: box.Podman,
			wantPath: "/usr/bin/podman",
			wantSudo: "doas",
		},
		{
			name:     "rootful as root needs no prefix",
			options:  Options{Manager: "podman", Rootful: true, SudoProgram: "sudo"},
			found:    []string{"podman"},
			wantKind: box.Podman,
			wantPath: "/usr/bin/podman",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			backend, err := ResolveBackend(test.options, test.euid, lookPathFor(test.found...))
			if test.wantExit != 0 {
				var coded interface{ ExitCode() int }
				if !errors.As(err, &coded) {
					t.Fatalf("error = %v, want an error with an exit code", err)
				}
				if coded.ExitCode() != test.wantExit {
					t.Errorf("ExitCode() = %d, want %d", coded.ExitCode(), test.wantExit)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveBackend: %v", err)
			}
			if backend.Kind != test.wantKind || backend.Path != test.wantPath || backend.Sudo != test.wantSudo {
				t.Errorf("backend = %+v, want kind %s path %q sudo %q", backend, test.wantKind, test.wantPath, test.wantSudo)
			}
			if backend.Rootful != test.options.Rootful {
				t.Errorf("Rootful = %v, want %v", backend.Rootful, test.options.Rootful)
			}
		})
	}
}
