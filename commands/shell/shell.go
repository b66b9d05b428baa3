// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/peterh/liner"
	script "github.com/smurfix/flask-script"
	"github.com/smurfix/flask-script/prompt"
)

// Command is the interactive shell. Each input line is tokenized and
// re-dispatched through the manager against the already resolved application,
// so every registered command is available without restarting the process.
type Command struct{}

// Register installs the command on m under the name "shell".
func Register(m *script.Manager) {
	m.AddCommand("shell", &Command{})
}

// Usage returns the one-line description for the command listing.
func (c *Command) Usage() string {
	return "Runs an interactive shell with the application preloaded"
}

// Run reads and dispatches lines until exit, quit, Ctrl-C or EOF.
func (c *Command) Run(ctx context.Context, inv *script.Invocation) error {
	line := prompt.NewLineReader()
	defer line.Close() //nolint:errcheck

	c.setupLiner(line, inv)

	w := inv.Writer()
	name := inv.App.Name

	fmt.Fprintf(w, "%s shell. Type a command, or `quit` or Ctrl+C to leave.\n", name)

	if len(inv.App.ShellContext) > 0 {
		fmt.Fprintf(w, "context: %s\n", strings.Join(contextKeys(inv.App), ", "))
	}

	for {
		input, err := line.Prompt(name + "> ")

		switch {
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			fmt.Fprintln(w)
			return nil
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "quit" || input == "exit" {
			return nil
		}

		if l, ok := line.(*liner.State); ok {
			l.AppendHistory(input)
		}

		if err := inv.Manager.Invoke(ctx, inv.App, strings.Fields(input)); err != nil {
			fmt.Fprintf(w, "error: %s\n", err)
		}
	}
}

// setupLiner enables command-name completion when the underlying line editor
// is a real liner instance.
func (c *Command) setupLiner(line prompt.LineReader, inv *script.Invocation) {
	l, ok := line.(*liner.State)
	if !ok {
		return
	}

	names := inv.Manager.CommandNames()

	l.SetCompleter(func(prefix string) []string {
		var out []string

		for _, n := range names {
			if strings.HasPrefix(n, prefix) {
				out = append(out, n)
			}
		}

		return out
	})
}

func contextKeys(app *script.App) []string {
	keys := make([]string, 0, len(app.ShellContext))
	for k := range app.ShellContext {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
