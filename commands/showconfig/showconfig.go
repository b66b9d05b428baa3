// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package showconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/TylerBrock/colorjson"
	script "github.com/smurfix/flask-script"
	"github.com/smurfix/flask-script/internal/color"
)

// ErrRenderConfig is returned when the configuration cannot be rendered.
var ErrRenderConfig = errors.New("failed to render configuration")

// Command prints the resolved application configuration as colored JSON.
type Command struct{}

// Register installs the command on m under the name "config".
func Register(m *script.Manager) {
	m.AddCommand("config", &Command{})
}

// Usage returns the one-line description for the command listing.
func (c *Command) Usage() string {
	return "Shows the resolved application configuration"
}

// Run renders the configuration to the invocation writer.
func (c *Command) Run(_ context.Context, inv *script.Invocation) error {
	if len(inv.App.Config) == 0 {
		fmt.Fprintln(inv.Writer(), "{}")
		return nil
	}

	formatter := colorjson.NewFormatter()
	formatter.Indent = 2
	formatter.DisabledColor = !color.Enabled()

	out, err := formatter.Marshal(inv.App.Config)
	if err != nil {
		return errors.Join(ErrRenderConfig, err)
	}

	fmt.Fprintln(inv.Writer(), string(out))

	return nil
}
