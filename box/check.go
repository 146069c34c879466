// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/lipgloss"
	"github.com/moby/sys/userns"
	"github.com/opencontainers/selinux/go-selinux"
)

// Minimum manager versions known to support every flag the synthesizer
// emits for that backend.
var minimumVersions = map[BackendKind]string{
	Podman: "2.1.0",
	Docker: "19.3.0",
}

// CheckResult is one line of the host check report.
type CheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Warning bool   `json:"warning,omitempty"`
}

// Report collects host check results.
type Report struct {
	results  []CheckResult
	failures int
}

// Results returns all results in the order they were recorded.
func (r *Report) Results() []CheckResult { return r.results }

// HasFailures reports whether any check failed.
func (r *Report) HasFailures() bool { return r.failures > 0 }

func (r *Report) pass(name, message string) {
	r.results = append(r.results, CheckResult{Name: name, Passed: true, Message: message})
}

func (r *Report) warn(name, message string) {
	r.results = append(r.results, CheckResult{Name: name, Passed: true, Message: message, Warning: true})
}

func (r *Report) fail(name, message string) {
	r.results = append(r.results, CheckResult{Name: name, Message: message})
	r.failures++
}

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Print writes the report to w.
func (r *Report) Print(w io.Writer) {
	for _, result := range r.results {
		var marker string
		switch {
		case !result.Passed:
			marker = failStyle.Render("✗")
		case result.Warning:
			marker = warnStyle.Render("⚠")
		default:
			marker = passStyle.Render("✓")
		}
		fmt.Fprintf(w, "%s %s: %s\n", marker, result.Name, result.Message)
	}
	fmt.Fprintln(w)
	if r.HasFailures() {
		fmt.Fprintf(w, "Check failed with %d error(s)\n", r.failures)
	} else {
		fmt.Fprintln(w, "Ready to create boxes")
	}
}

// Checker runs the host checks.
type Checker struct {
	// Manager is nil when no backend could be resolved; BackendErr then
	// says why.
	Manager    *Manager
	BackendErr error

	Host     Host
	Resolver *UtilityResolver

	// SELinuxEnabled and InUserNamespace default to the real probes.
	SELinuxEnabled  func() bool
	InUserNamespace func() bool
}

// Run executes every check and returns the report.
func (c *Checker) Run(ctx context.Context) *Report {
	report := &Report{}
	c.checkBackend(ctx, report)
	c.checkUtilities(report)
	c.checkSecurity(report)
	c.checkIntegration(report)
	return report
}

func (c *Checker) checkBackend(ctx context.Context, report *Report) {
	if c.Manager == nil {
		report.fail("manager", fmt.Sprintf("no container manager: %v", c.BackendErr))
		return
	}
	backend := c.Manager.Backend
	mode := "rootless"
	if backend.Rootful {
		mode = "rootful"
	}
	name := strings.Join(backend.Argv(), " ")

	raw, err := c.Manager.Version(ctx)
	if err != nil {
		report.warn("manager", fmt.Sprintf("%s (%s) found but version query failed: %v", name, mode, err))
		return
	}
	ok, err := meetsMinimum(backend.Kind, raw)
	switch {
	case err != nil:
		report.warn("manager", fmt.Sprintf("%s %s (%s): cannot parse version: %v", name, raw, mode, err))
	case !ok:
		report.warn("manager", fmt.Sprintf("%s %s (%s) is older than the recommended %s", name, raw, mode, minimumVersions[backend.Kind]))
	default:
		report.pass("manager", fmt.Sprintf("%s %s (%s)", name, raw, mode))
	}
}

func (c *Checker) checkUtilities(report *Report) {
	for _, name := range []string{EntrypointUtility, ExportUtility, HostExecUtility, EntryGeneratorUtility} {
		lookup := c.Resolver.Resolve(name)
		switch {
		case lookup.Found:
			report.pass(name, lookup.Path)
		case name == EntrypointUtility || name == ExportUtility:
			report.fail(name, "not found next to this program or on PATH")
		default:
			report.warn(name, "not found (optional)")
		}
	}
}

func (c *Checker) checkSecurity(report *Report) {
	selinuxEnabled := c.SELinuxEnabled
	if selinuxEnabled == nil {
		selinuxEnabled = selinux.GetEnabled
	}
	if selinuxEnabled() {
		report.pass("selinux", "enabled; boxes are created with label=disable")
	} else {
		report.pass("selinux", "disabled")
	}

	inUserNamespace := c.InUserNamespace
	if inUserNamespace == nil {
		inUserNamespace = userns.RunningInUserNS
	}
	if inUserNamespace() {
		report.warn("userns", "running inside a user namespace; nested boxes may not work")
	} else {
		report.pass("userns", "running in the initial user namespace")
	}
}

func (c *Checker) checkIntegration(report *Report) {
	host := c.Host
	if host.RuntimeDir != "" {
		report.pass("runtime-dir", host.RuntimeDir)
	} else {
		report.warn("runtime-dir", fmt.Sprintf("/run/user/%d not found; session services will be unavailable", host.UID))
	}

	var optional []string
	if host.SELinuxFS {
		optional = append(optional, "/sys/fs/selinux")
	}
	if host.Journal {
		optional = append(optional, "/var/log/journal")
	}
	if host.ShmTarget != "" {
		optional = append(optional, host.ShmTarget)
	}
	for _, store := range host.Stores {
		optional = append(optional, store.Source)
	}
	if host.VarHome != "" {
		optional = append(optional, host.VarHome)
	}
	optional = append(optional, host.IdentityFiles...)
	if len(optional) == 0 {
		report.pass("mounts", "no optional host paths found")
		return
	}
	report.pass("mounts", strings.Join(optional, ", "))
}

// meetsMinimum compares a manager version string against the
// recommended minimum for the backend.
func meetsMinimum(kind BackendKind, raw string) (bool, error) {
	minimum, ok := minimumVersions[kind]
	if !ok {
		return true, nil
	}
	version, err := semver.NewVersion(normalizeVersion(raw))
	if err != nil {
		return false, err
	}
	return !version.LessThan(semver.MustParse(minimum)), nil
}

// normalizeVersion drops leading zeros from the numeric components so
// "19.03.12" parses as 19.3.12. A pre-release or build suffix is kept.
func normalizeVersion(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "v")
	core, suffix := raw, ""
	if index := strings.IndexAny(raw, "-+"); index >= 0 {
		core, suffix = raw[:index], raw[index:]
	}
	parts := strings.Split(core, ".")
	for i, part := range parts {
		if number, err := strconv.Atoi(part); err == nil {
			parts[i] = strconv.Itoa(number)
		}
	}
	return strings.Join(parts, ".") + suffix
}
