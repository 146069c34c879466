// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import "strings"

// Arg is one manager or entrypoint flag, optionally with a value.
type Arg struct {
	Flag     string
	Value    string
	HasValue bool
}

// Switch returns a flag without a value.
func Switch(flag string) Arg { return Arg{Flag: flag} }

// Option returns a flag followed by its value as a separate token.
func Option(flag, value string) Arg { return Arg{Flag: flag, Value: value, HasValue: true} }

// ManagerCommand is the fully assembled create invocation. The manager
// flags come first, then the raw user flags, then the fixed entrypoint
// section: --entrypoint, the image, the entrypoint's own arguments, a
// "--" separator, and the init-hooks payload. The entrypoint section is
// held in its own fields so nothing appended to Flags or Extra can move
// the boundary.
type ManagerCommand struct {
	Backend Backend
	Verb    string

	Flags []Arg
	Extra []string

	Entrypoint     string
	Image          string
	EntrypointArgs []Arg
	InitHooks      string
}

// Add appends manager flags.
func (c *ManagerCommand) Add(args ...Arg) {
	c.Flags = append(c.Flags, args...)
}

// Argv serializes the command into the argument vector handed to the
// manager. This is the only place the structured form becomes tokens.
func (c *ManagerCommand) Argv() []string {
	tokens := []string{c.Verb}
	tokens = appendArgs(tokens, c.Flags)
	tokens = append(tokens, c.Extra...)
	tokens = append(tokens, "--entrypoint", c.Entrypoint, c.Image)
	tokens = appendArgs(tokens, c.EntrypointArgs)
	tokens = append(tokens, "--", c.InitHooks)
	return c.Backend.Argv(tokens...)
}

// String renders the command as a single shell line suitable for
// copying into a terminal. Flag values are always double-quoted; bare
// tokens are quoted only when they need it.
func (c *ManagerCommand) String() string {
	var line []string
	for _, token := range c.Backend.Argv(c.Verb) {
		line = append(line, quoteToken(token))
	}
	line = appendQuotedArgs(line, c.Flags)
	for _, token := range c.Extra {
		line = append(line, quoteToken(token))
	}
	line = append(line, "--entrypoint", doubleQuote(c.Entrypoint), quoteToken(c.Image))
	line = appendQuotedArgs(line, c.EntrypointArgs)
	line = append(line, "--", doubleQuote(c.InitHooks))
	return strings.Join(line, " ")
}

// HasFlag reports whether the manager flags contain flag, optionally
// with the given value. Used by callers that inspect a plan.
func (c *ManagerCommand) HasFlag(flag string, value ...string) bool {
	for _, arg := range c.Flags {
		if arg.Flag != flag {
			continue
		}
		if len(value) == 0 || (arg.HasValue && arg.Value == value[0]) {
			return true
		}
	}
	return false
}

func appendArgs(tokens []string, args []Arg) []string {
	for _, arg := range args {
		tokens = append(tokens, arg.Flag)
		if arg.HasValue {
			tokens = append(tokens, arg.Value)
		}
	}
	return tokens
}

func appendQuotedArgs(line []string, args []Arg) []string {
	for _, arg := range args {
		if arg.HasValue {
			line = append(line, arg.Flag+" "+doubleQuote(arg.Value))
		} else {
			line = append(line, arg.Flag)
		}
	}
	return line
}

// doubleQuote wraps s in double quotes, escaping the characters the
// shell still interprets inside them.
func doubleQuote(s string) string {
	var builder strings.Builder
	builder.WriteByte('"')
	for _, char := range s {
		switch char {
		case '"', '\\', '$', '`':
			builder.WriteByte('\\')
		}
		builder.WriteRune(char)
	}
	builder.WriteByte('"')
	return builder.String()
}

// quoteToken returns s unchanged if it contains only shell-safe
// characters, otherwise double-quoted.
func quoteToken(s string) string {
	if s == "" {
		return `""`
	}
	for _, char := range s {
		if !isShellSafe(char) {
			return doubleQuote(s)
		}
	}
	return s
}

func isShellSafe(char rune) bool {
	switch {
	case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char >= '0' && char <= '9':
		return true
	}
	switch char {
	case '-', '_', '.', '/', ':', '=', '@', ',', '+', '%':
		return true
	}
	return false
}
