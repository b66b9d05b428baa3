// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"
)

// ErrAborted is returned when the user aborts a prompt with Ctrl-C.
var ErrAborted = errors.New("prompt aborted")

// LineReader is the console line editor the prompt functions read from.
// *liner.State satisfies it.
type LineReader interface {
	Prompt(p string) (string, error)
	PasswordPrompt(p string) (string, error)
	Close() error
}

// NewLineReader returns the line editor used by the prompt functions. It is a
// package variable so tests can substitute a scripted reader.
var NewLineReader = func() LineReader {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)

	return l
}

// Prompt asks for one line of free text. Empty input returns def.
func Prompt(name, def string) (string, error) {
	line := NewLineReader()
	defer line.Close() //nolint:errcheck

	text := name + ": "
	if def != "" {
		text = fmt.Sprintf("%s [%s]: ", name, def)
	}

	input, err := readLine(line.Prompt, text)
	if err != nil {
		return "", err
	}

	if input == "" {
		return def, nil
	}

	return input, nil
}

// Pass asks for a masked password entry.
func Pass(name string) (string, error) {
	line := NewLineReader()
	defer line.Close() //nolint:errcheck

	return readLine(line.PasswordPrompt, name+": ")
}

// Bool asks a yes/no question and reprompts until the answer is one of
// y/yes/t/true/1 or n/no/f/false/0, case-insensitively. Empty input returns
// def.
func Bool(name string, def bool) (bool, error) {
	line := NewLineReader()
	defer line.Close() //nolint:errcheck

	suffix := "[n]"
	if def {
		suffix = "[y]"
	}

	text := fmt.Sprintf("%s %s: ", name, suffix)

	for {
		input, err := readLine(line.Prompt, text)
		if err != nil {
			return false, err
		}

		if input == "" {
			return def, nil
		}

		switch strings.ToLower(input) {
		case "y", "yes", "t", "true", "1":
			return true, nil
		case "n", "no", "f", "false", "0":
			return false, nil
		}
	}
}

// Choices asks for one value out of choices, matching case-insensitively, and
// reprompts until a valid choice is entered. Empty input returns def.
func Choices(name string, choices []string, def string) (string, error) {
	line := NewLineReader()
	defer line.Close() //nolint:errcheck

	text := fmt.Sprintf("%s (%s)", name, strings.Join(choices, ", "))
	if def != "" {
		text = fmt.Sprintf("%s [%s]", text, def)
	}

	text += ": "

	for {
		input, err := readLine(line.Prompt, text)
		if err != nil {
			return "", err
		}

		if input == "" && def != "" {
			return def, nil
		}

		for _, c := range choices {
			if strings.EqualFold(c, input) {
				return c, nil
			}
		}
	}
}

func readLine(read func(string) (string, error), text string) (string, error) {
	input, err := read(text)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrAborted
	}

	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(input), nil
}
