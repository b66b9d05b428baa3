// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetArgs struct {
	Name     string `usage:"who to greet"`
	Verified bool   `default:"false" usage:"greet only verified users"`
}

func newTestManager(app *App) (*Manager, *bytes.Buffer) {
	buf := &bytes.Buffer{}

	m := New(app)
	m.Name = "manage"
	m.Writer = buf
	m.ErrWriter = buf

	return m, buf
}

func TestDispatch(t *testing.T) {
	t.Run("command receives parsed arguments", func(t *testing.T) {
		m, _ := newTestManager(&App{Name: "demo"})

		var got greetArgs

		m.AddCommand("greet", Func("Greets somebody", func(_ context.Context, _ *App, a greetArgs) error {
			got = a
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "greet", "--verified", "alice"})
		require.NoError(t, err)

		assert.Equal(t, "alice", got.Name)
		assert.True(t, got.Verified)
	})

	t.Run("toggle defaults to false when absent", func(t *testing.T) {
		m, _ := newTestManager(&App{})

		var got greetArgs

		m.AddCommand("greet", Func("", func(_ context.Context, _ *App, a greetArgs) error {
			got = a
			return nil
		}))

		require.NoError(t, m.Run(context.Background(), []string{"manage", "greet", "bob"}))
		assert.Equal(t, "bob", got.Name)
		assert.False(t, got.Verified)
	})

	t.Run("inverse flag forces toggle off", func(t *testing.T) {
		type serveArgs struct {
			Debug bool `default:"true"`
		}

		m, _ := newTestManager(&App{})

		var got serveArgs

		m.AddCommand("serve", Func("", func(_ context.Context, _ *App, a serveArgs) error {
			got = a
			return nil
		}))

		require.NoError(t, m.Run(context.Background(), []string{"manage", "serve", "--no-debug"}))
		assert.False(t, got.Debug)

		require.NoError(t, m.Run(context.Background(), []string{"manage", "serve"}))
		assert.True(t, got.Debug)
	})

	t.Run("missing required positional is a usage error", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		m.AddCommand("greet", Func("", func(_ context.Context, _ *App, _ greetArgs) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "greet"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
		assert.Equal(t, 2, ExitCode(err))
	})

	t.Run("extra positional arguments are rejected", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		m.AddCommand("greet", Func("", func(_ context.Context, _ *App, _ greetArgs) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "greet", "alice", "spurious"})
		require.Error(t, err)
		assert.Equal(t, 2, ExitCode(err))
	})

	t.Run("unknown flag is a usage error", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		m.AddCommand("greet", Func("", func(_ context.Context, _ *App, _ greetArgs) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "greet", "--bogus", "alice"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogus")
		assert.Equal(t, 2, ExitCode(err))
	})

	t.Run("unknown manager-level flag is a usage error", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		m.AddCommand("greet", Func("", func(_ context.Context, _ *App, _ greetArgs) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "--bogus", "greet", "alice"})
		require.Error(t, err)
		assert.Equal(t, 2, ExitCode(err))
	})

	t.Run("missing required flag is a usage error", func(t *testing.T) {
		m, _ := newTestManager(&App{})

		cmd := &tokenCommand{}
		m.AddCommand("push", cmd)

		err := m.Run(context.Background(), []string{"manage", "push"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token")
		assert.Equal(t, 2, ExitCode(err))

		require.NoError(t, m.Run(context.Background(), []string{"manage", "push", "--token", "s3cret"}))
		assert.Equal(t, "s3cret", cmd.got)
	})

	t.Run("no command prints the listing in registration order", func(t *testing.T) {
		m, buf := newTestManager(&App{})
		m.AddCommand("zeta", Func("The last letter", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))
		m.AddCommand("alpha", Func("The first letter", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))

		require.NoError(t, m.Run(context.Background(), []string{"manage"}))

		out := buf.String()
		assert.Contains(t, out, "zeta")
		assert.Contains(t, out, "alpha")
		assert.Contains(t, out, "The last letter")
		assert.Less(t, strings.Index(out, "zeta"), strings.Index(out, "alpha"))
	})

	t.Run("unknown command errors with the name", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		m.AddCommand("greet", Func("", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "frobnicate"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownCommand)
		assert.Contains(t, err.Error(), "frobnicate")
		assert.Equal(t, 2, ExitCode(err))
	})

	t.Run("invalid command error passes through undisturbed", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		m.AddCommand("fail", Func("", func(_ context.Context, _ *App, _ struct{}) error {
			return Invalid("the gizmo is not plugged in")
		}))

		err := m.Run(context.Background(), []string{"manage", "fail"})
		require.Error(t, err)

		var ice *InvalidCommandError

		require.ErrorAs(t, err, &ice)
		assert.Equal(t, "the gizmo is not plugged in", ice.Error())
		assert.Equal(t, 1, ExitCode(err))
	})

	t.Run("re-registration replaces but keeps position", func(t *testing.T) {
		m, buf := newTestManager(&App{})
		m.AddCommand("first", Func("Old usage", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))
		m.AddCommand("second", Func("", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))

		called := false

		m.AddCommand("first", Func("New usage", func(_ context.Context, _ *App, _ struct{}) error {
			called = true
			return nil
		}))

		require.NoError(t, m.Run(context.Background(), []string{"manage"}))
		assert.Less(t, strings.Index(buf.String(), "first"), strings.Index(buf.String(), "second"))
		assert.Contains(t, buf.String(), "New usage")

		require.NoError(t, m.Run(context.Background(), []string{"manage", "first"}))
		assert.True(t, called)
	})
}

func TestSubManager(t *testing.T) {
	t.Run("nested command dispatch", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		db := m.Sub("db", "Database maintenance commands")

		called := false

		db.AddCommand("init", Func("Creates the schema", func(_ context.Context, _ *App, _ struct{}) error {
			called = true
			return nil
		}))

		require.NoError(t, m.Run(context.Background(), []string{"manage", "db", "init"}))
		assert.True(t, called)
	})

	t.Run("sub-manager with no command prints its own listing", func(t *testing.T) {
		m, buf := newTestManager(&App{})
		db := m.Sub("db", "Database maintenance commands")
		db.AddCommand("init", Func("Creates the schema", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))

		require.NoError(t, m.Run(context.Background(), []string{"manage", "db"}))
		assert.Contains(t, buf.String(), "init")
		assert.Contains(t, buf.String(), "Creates the schema")
	})

	t.Run("unknown nested command errors", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		db := m.Sub("db", "")
		db.AddCommand("init", Func("", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "db", "destroy"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownCommand)
		assert.Contains(t, err.Error(), "destroy")
	})

	t.Run("sub-manager options are parsed and visible to its commands", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		db := m.Sub("db", "Database maintenance commands")
		db.AddOption(Option{Name: "dsn", Default: "sqlite://demo.db"})

		cmd := &dsnCommand{}
		db.AddCommand("init", cmd)

		require.NoError(t, m.Run(context.Background(), []string{"manage", "db", "--dsn", "postgres://live", "init"}))
		assert.Equal(t, "postgres://live", cmd.got)

		require.NoError(t, m.Run(context.Background(), []string{"manage", "db", "init"}))
		assert.Equal(t, "sqlite://demo.db", cmd.got)
	})

	t.Run("sub-manager appears in the parent listing", func(t *testing.T) {
		m, buf := newTestManager(&App{})
		m.Sub("db", "Database maintenance commands")

		require.NoError(t, m.Run(context.Background(), []string{"manage"}))
		assert.Contains(t, buf.String(), "db")
		assert.Contains(t, buf.String(), "Database maintenance commands")
	})
}

func TestFactory(t *testing.T) {
	t.Run("manager options reach the factory before the command runs", func(t *testing.T) {
		var seen string

		m := NewWithFactory(func(_ context.Context, v Values) (*App, error) {
			seen = v.String("config")
			return &App{Name: "from-factory"}, nil
		})
		m.Name = "manage"
		m.AddOption(Option{Name: "config", Short: "c", Default: ""})

		var gotApp *App

		m.AddCommand("whoami", Func("", func(_ context.Context, app *App, _ struct{}) error {
			gotApp = app
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "--config", "prod.yaml", "whoami"})
		require.NoError(t, err)

		assert.Equal(t, "prod.yaml", seen)
		require.NotNil(t, gotApp)
		assert.Equal(t, "from-factory", gotApp.Name)
	})

	t.Run("factory is not invoked for the listing", func(t *testing.T) {
		calls := 0

		m := NewWithFactory(func(_ context.Context, _ Values) (*App, error) {
			calls++
			return &App{}, nil
		})
		m.Name = "manage"
		m.Writer = &bytes.Buffer{}

		require.NoError(t, m.Run(context.Background(), []string{"manage"}))
		assert.Zero(t, calls)
	})

	t.Run("factory error aborts dispatch", func(t *testing.T) {
		m := NewWithFactory(func(_ context.Context, _ Values) (*App, error) {
			return nil, assert.AnError
		})
		m.Name = "manage"
		m.AddCommand("noop", Func("", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "noop"})
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("no app and no factory", func(t *testing.T) {
		m := NewWithFactory(nil)
		m.Name = "manage"
		m.AddCommand("noop", Func("", func(_ context.Context, _ *App, _ struct{}) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "noop"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoApp)
	})
}

func TestInvoke(t *testing.T) {
	t.Run("preset app bypasses the factory", func(t *testing.T) {
		calls := 0

		m := NewWithFactory(func(_ context.Context, _ Values) (*App, error) {
			calls++
			return &App{}, nil
		})
		m.Name = "manage"

		var gotApp *App

		m.AddCommand("whoami", Func("", func(_ context.Context, app *App, _ struct{}) error {
			gotApp = app
			return nil
		}))

		live := &App{Name: "live"}

		require.NoError(t, m.Invoke(context.Background(), live, []string{"whoami"}))
		assert.Zero(t, calls)
		assert.Same(t, live, gotApp)
	})
}

func TestSetupErrors(t *testing.T) {
	t.Run("broken derivation surfaces on run", func(t *testing.T) {
		type badArgs struct {
			Verbose bool // no default tag
		}

		m, _ := newTestManager(&App{})
		m.AddCommand("bad", Func("", func(_ context.Context, _ *App, _ badArgs) error {
			return nil
		}))

		err := m.Run(context.Background(), []string{"manage", "bad"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDerive)
		assert.Contains(t, err.Error(), `"bad"`)
	})

	t.Run("positional manager option is rejected", func(t *testing.T) {
		m, _ := newTestManager(&App{})
		m.AddOption(Option{Name: "oops", Positional: true})

		err := m.Run(context.Background(), []string{"manage"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDerive)
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(assert.AnError))
	assert.Equal(t, 1, ExitCode(Invalid("nope")))
	assert.Equal(t, 2, ExitCode(usageErrorf("missing")))
	assert.Equal(t, 2, ExitCode(ErrUnknownCommand))
	assert.Equal(t, 2, ExitCode(&requiredFlagsError{}))
}

// tokenCommand declares an explicit required flag.
type tokenCommand struct {
	got string
}

func (c *tokenCommand) Options() []Option {
	return []Option{{Name: "token", Usage: "access token", Required: true}}
}

func (c *tokenCommand) Run(_ context.Context, inv *Invocation) error {
	c.got = inv.String("token")
	return nil
}

// dsnCommand reads an option declared on the manager it is registered with.
type dsnCommand struct {
	got string
}

func (c *dsnCommand) Run(_ context.Context, inv *Invocation) error {
	c.got = inv.String("dsn")
	return nil
}

// requiredFlagsError has the shape of the parser's missing-required-flag
// error.
type requiredFlagsError struct{}

func (e *requiredFlagsError) Error() string { return "required flags missing" }

func (e *requiredFlagsError) HasRequiredFlags() []string { return []string{"token"} }
