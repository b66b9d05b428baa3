// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"
	"github.com/smurfix/flask-script/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

// osExit is swapped out in tests.
var osExit = os.Exit

// Registrar installs one or more commands on a manager. Built-in command
// packages expose a Register function with this signature so a host binary
// can compose exactly the set it wants.
type Registrar func(m *Manager)

// Manager holds the ordered registry of named commands and dispatches the
// process's command line to one of them. It is built once before dispatch and
// must not be mutated afterwards.
type Manager struct {
	// Name of the program, defaults to the basename of os.Args[0].
	Name string
	// Usage is the one-line usage shown for sub-managers in their parent's
	// listing.
	Usage string
	// Description is printed above the command listing.
	Description string
	// Writer receives regular output, defaults to os.Stdout.
	Writer io.Writer
	// ErrWriter receives error output, defaults to os.Stderr.
	ErrWriter io.Writer

	app     *App
	factory Factory
	parent  *Manager

	names   []string
	entries map[string]*entry
	options []Option

	setupErrs *multierror.Error

	// per-dispatch state, root manager only
	preset   *App
	resolved *App
}

type entry struct {
	cmd   Command
	sub   *Manager
	usage string
}

// New creates a manager bound to an application instance.
func New(app *App, registrars ...Registrar) *Manager {
	m := &Manager{
		app:     app,
		entries: map[string]*entry{},
	}

	for _, r := range registrars {
		r(m)
	}

	return m
}

// NewWithFactory creates a manager whose application is constructed by f
// after the manager-level options have been parsed.
func NewWithFactory(f Factory, registrars ...Registrar) *Manager {
	m := &Manager{
		factory: f,
		entries: map[string]*entry{},
	}

	for _, r := range registrars {
		r(m)
	}

	return m
}

// AddCommand registers cmd under name. Insertion order determines the
// position in the command listing; registering an existing name replaces the
// command but keeps its position.
func (m *Manager) AddCommand(name string, cmd Command) {
	usage := ""
	if u, ok := cmd.(Usager); ok {
		usage = u.Usage()
	}

	if v, ok := cmd.(validator); ok {
		if err := v.validate(); err != nil {
			m.setupErrs = multierror.Append(m.setupErrs,
				fmt.Errorf("command %q: %w", name, err))
		}
	}

	if opts := optionsOf(cmd); opts != nil {
		if _, err := compileFlags(opts); err != nil {
			m.setupErrs = multierror.Append(m.setupErrs,
				fmt.Errorf("command %q: %w", name, err))
		}
	}

	e, ok := m.entries[name]
	if !ok {
		e = &entry{}
		m.entries[name] = e
		m.names = append(m.names, name)
	}

	e.cmd = cmd
	e.sub = nil
	e.usage = usage
}

// AddOption adds a manager-level option, parsed from the tokens before the
// command name and stripped from the remainder. The parsed values are handed
// to the application factory; when the manager was built around an
// application instance they are ignored.
func (m *Manager) AddOption(o Option) {
	if o.Positional {
		m.setupErrs = multierror.Append(m.setupErrs,
			fmt.Errorf("%w: manager option %q cannot be positional", ErrDerive, o.Name))

		return
	}

	if _, err := o.flag(); err != nil {
		m.setupErrs = multierror.Append(m.setupErrs, err)
		return
	}

	m.options = append(m.options, o)
}

// Sub creates a nested sub-manager exposed under name. Its commands are
// dispatched from the remainder tokens after the sub-manager's name, and it
// defers application creation to the root manager.
func (m *Manager) Sub(name, usage string) *Manager {
	sub := &Manager{
		Name:    name,
		Usage:   usage,
		parent:  m,
		entries: map[string]*entry{},
	}

	e, ok := m.entries[name]
	if !ok {
		e = &entry{}
		m.entries[name] = e
		m.names = append(m.names, name)
	}

	e.cmd = nil
	e.sub = sub
	e.usage = usage

	return sub
}

// CommandNames returns the registered command names in registration order.
func (m *Manager) CommandNames() []string {
	return slices.Clone(m.names)
}

// Run dispatches the given command line, where args includes the program name
// as its first element. With no command it writes the command listing; an
// unknown command name yields an error wrapping ErrUnknownCommand.
func (m *Manager) Run(ctx context.Context, args []string) error {
	return m.root().dispatch(ctx, args, nil)
}

// Invoke dispatches argv (without a program name) against an already resolved
// application. The interactive shell uses this to re-enter the dispatcher
// with the live app.
func (m *Manager) Invoke(ctx context.Context, app *App, argv []string) error {
	r := m.root()
	return r.dispatch(ctx, append([]string{r.name()}, argv...), app)
}

// Main runs the manager against os.Args and applies the exit-code policy: an
// InvalidCommandError prints its bare message and exits 1, argument errors
// print with a hint and exit 2, anything else is logged and exits 1.
func (m *Manager) Main(ctx context.Context) {
	err := m.Run(ctx, os.Args)
	if err == nil {
		return
	}

	var ice *InvalidCommandError

	switch {
	case errors.As(err, &ice):
		fmt.Fprintln(m.errWriter(), ice.Error())
	case ExitCode(err) == exitUsage:
		fmt.Fprintln(m.errWriter(), err.Error())
		fmt.Fprintf(m.errWriter(), "run %q for a list of commands\n", m.root().name())
	default:
		ctxlog.Logger(ctx).Error("command failed", "error", err)
	}

	osExit(ExitCode(err))
}

func (m *Manager) dispatch(ctx context.Context, args []string, preset *App) error {
	if err := m.setupError(); err != nil {
		return err
	}

	m.preset = preset
	m.resolved = nil

	defer func() { m.preset = nil }()

	root, err := m.build()
	if err != nil {
		return err
	}

	return root.Run(ctx, args)
}

func (m *Manager) root() *Manager {
	r := m
	for r.parent != nil {
		r = r.parent
	}

	return r
}

func (m *Manager) name() string {
	if m.Name != "" {
		return m.Name
	}

	return filepath.Base(os.Args[0])
}

func (m *Manager) writer() io.Writer {
	if m.Writer != nil {
		return m.Writer
	}

	return os.Stdout
}

func (m *Manager) errWriter() io.Writer {
	if m.ErrWriter != nil {
		return m.ErrWriter
	}

	return os.Stderr
}

// setupError aggregates registration-time failures of the manager and all of
// its sub-managers.
func (m *Manager) setupError() error {
	errs := m.setupErrs

	for _, name := range m.names {
		if sub := m.entries[name].sub; sub != nil {
			if err := sub.setupError(); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}

	return errs.ErrorOrNil()
}

// build compiles the manager into a urfave/cli command tree.
func (m *Manager) build() (*cli.Command, error) {
	node, err := m.node()
	if err != nil {
		return nil, err
	}

	node.Writer = m.writer()
	node.ErrWriter = m.errWriter()
	node.Version = fmt.Sprintf("%s (commit: %s)", Version, Commit)

	return node, nil
}

// node compiles this manager into a cli command. Manager-level options become
// the node's own flags, so a sub-manager's options are parsed from the tokens
// between its name and the command name and stay visible to the commands
// below it.
func (m *Manager) node() (*cli.Command, error) {
	cmds := make([]*cli.Command, 0, len(m.names))

	for _, name := range m.names {
		e := m.entries[name]

		if e.sub != nil {
			sub, err := e.sub.node()
			if err != nil {
				return nil, err
			}

			cmds = append(cmds, sub)

			continue
		}

		c, err := m.commandNode(name, e)
		if err != nil {
			return nil, err
		}

		cmds = append(cmds, c)
	}

	flags, err := compileFlags(m.options)
	if err != nil {
		return nil, err
	}

	return &cli.Command{
		Name:         m.name(),
		Usage:        m.Usage,
		Description:  m.Description,
		Flags:        flags,
		Commands:     cmds,
		Action:       m.fallbackAction,
		OnUsageError: wrapUsageError,
	}, nil
}

func (m *Manager) commandNode(name string, e *entry) (*cli.Command, error) {
	opts := optionsOf(e.cmd)

	flags, err := compileFlags(opts)
	if err != nil {
		return nil, err
	}

	return &cli.Command{
		Name:         name,
		Usage:        e.usage,
		ArgsUsage:    argsUsage(opts),
		Flags:        flags,
		OnUsageError: wrapUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := m.root().resolveApp(ctx, cmd.Root())
			if err != nil {
				return err
			}

			inv := &Invocation{
				App:     app,
				Manager: m,
				Args:    cmd.Args().Slice(),
				cmd:     cmd,
			}

			if pos := positionals(opts); len(inv.Args) < len(pos) {
				return usageErrorf("%s: missing required argument %q", name, pos[len(inv.Args)].Name)
			}

			return e.cmd.Run(ctx, inv)
		},
	}, nil
}

// wrapUsageError turns parse failures reported by urfave/cli, such as an
// unknown flag, into usage errors so they follow the usage exit-code policy
// instead of the generic failure path.
func wrapUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{msg: err.Error()}
}

// fallbackAction runs when no registered command matched: with no tokens it
// prints the command listing, otherwise the first token is an unknown
// command.
func (m *Manager) fallbackAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		m.writeList(cmd.Root().Writer)
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Args().First())
}

// writeList prints the registered commands with their one-line usage, in
// registration order.
func (m *Manager) writeList(w io.Writer) {
	if m.Description != "" {
		fmt.Fprintf(w, "%s\n\n", m.Description)
	}

	fmt.Fprintf(w, "usage: %s [options] <command> [command options] [arguments...]\n\nCommands:\n", m.name())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range m.names {
		fmt.Fprintf(tw, "  %s\t%s\n", name, m.entries[name].usage)
	}

	tw.Flush() //nolint:errcheck
}

// resolveApp returns the application instance for this dispatch, creating it
// from the factory on first use. Manager-level options are available to the
// factory through v.
func (m *Manager) resolveApp(ctx context.Context, v Values) (*App, error) {
	switch {
	case m.preset != nil:
		return m.preset, nil
	case m.resolved != nil:
		return m.resolved, nil
	case m.app != nil:
		return m.app, nil
	case m.factory == nil:
		return nil, ErrNoApp
	}

	app, err := m.factory(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	m.resolved = app

	return app, nil
}

func optionsOf(cmd Command) []Option {
	if p, ok := cmd.(OptionProvider); ok {
		return p.Options()
	}

	return nil
}
