// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package box

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var (
	yesAnswers = []string{"y", "yes"}
	noAnswers  = []string{"n", "no"}
)

// Prompter asks the operator yes/no questions on a terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

// Confirm prints question with a "[Y/n]" suffix and reads one line.
// "y"/"yes" and "n"/"no" are accepted in any case; an empty line takes
// the default (yes). Anything else is an InvalidPromptInputError; the
// question is never asked twice.
//
// The read runs in its own goroutine so a cancelled ctx (Ctrl-C at the
// prompt) returns ctx.Err() immediately. The goroutine is abandoned
// blocked on In; the process is about to exit.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [Y/n]: ", question)

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	var line string
	select {
	case <-ctx.Done():
		fmt.Fprintln(p.Out)
		return false, ctx.Err()
	case result := <-answers:
		if result.err != nil && !errors.Is(result.err, io.EOF) {
			return false, fmt.Errorf("reading answer: %w", result.err)
		}
		if errors.Is(result.err, io.EOF) && result.line == "" {
			return false, &InvalidPromptInputError{Input: ""}
		}
		line = result.line
	}
	return ParseAnswer(line)
}

// ParseAnswer interprets a single prompt response. The prompt shows
// "[Y/n]", so an empty response is the capitalized default rather than
// invalid input.
func ParseAnswer(line string) (bool, error) {
	answer := strings.ToLower(strings.TrimSpace(line))
	switch {
	case answer == "":
		return true, nil
	case slices.Contains(yesAnswers, answer):
		return true, nil
	case slices.Contains(noAnswers, answer):
		return false, nil
	}
	return false, &InvalidPromptInputError{Input: strings.TrimSpace(line)}
}
