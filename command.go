// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
)

// Command is a named, independently invocable unit of CLI behaviour. The
// parsed flag and argument values are delivered through the Invocation.
type Command interface {
	Run(ctx context.Context, inv *Invocation) error
}

// OptionProvider is implemented by commands that declare an explicit option
// spec. Explicit declarations always override derived ones.
type OptionProvider interface {
	Options() []Option
}

// Usager is implemented by commands that carry a one-line usage string shown
// in the command listing.
type Usager interface {
	Usage() string
}

// validator is implemented by commands whose construction may have failed;
// the error is surfaced when the command is registered.
type validator interface {
	validate() error
}

// Invocation carries everything a running command needs: the resolved
// application, the manager it was dispatched from, the leftover positional
// arguments and typed accessors for the parsed flag values.
type Invocation struct {
	// App is the application instance the command runs against.
	App *App
	// Manager is the manager the command was registered on.
	Manager *Manager
	// Args holds the positional arguments after flag parsing.
	Args []string

	cmd *cli.Command
}

// String returns the string value of the named flag.
func (inv *Invocation) String(name string) string { return inv.cmd.String(name) }

// Bool returns the boolean value of the named toggle.
func (inv *Invocation) Bool(name string) bool { return inv.cmd.Bool(name) }

// Int returns the integer value of the named flag.
func (inv *Invocation) Int(name string) int { return inv.cmd.Int(name) }

// Float returns the float value of the named flag.
func (inv *Invocation) Float(name string) float64 { return inv.cmd.Float(name) }

// Duration returns the duration value of the named flag.
func (inv *Invocation) Duration(name string) time.Duration { return inv.cmd.Duration(name) }

// Writer returns the output stream commands should write to.
func (inv *Invocation) Writer() io.Writer {
	if inv.cmd != nil && inv.cmd.Root().Writer != nil {
		return inv.cmd.Root().Writer
	}

	return io.Discard
}

// funcCommand adapts a plain function with a typed argument struct to the
// Command interface. Its option spec is derived from the struct by
// reflection; see deriveOptions for the rules.
type funcCommand[T any] struct {
	usage string
	fn    func(ctx context.Context, app *App, args T) error
	opts  []Option
	err   error
}

// Func wraps fn as a Command whose flags and positional arguments are derived
// from the fields of T. A derivation failure is reported when the command is
// registered with a manager.
func Func[T any](usage string, fn func(ctx context.Context, app *App, args T) error) Command {
	var zero T

	opts, err := deriveOptions(reflect.TypeOf(zero))

	return &funcCommand[T]{
		usage: usage,
		fn:    fn,
		opts:  opts,
		err:   err,
	}
}

func (c *funcCommand[T]) Usage() string     { return c.usage }
func (c *funcCommand[T]) Options() []Option { return c.opts }
func (c *funcCommand[T]) validate() error   { return c.err }

// Run populates a fresh argument struct from the invocation and calls the
// wrapped function.
func (c *funcCommand[T]) Run(ctx context.Context, inv *Invocation) error {
	if c.err != nil {
		return c.err
	}

	var args T
	if err := bindArgs(&args, c.opts, inv); err != nil {
		return err
	}

	return c.fn(ctx, inv.App, args)
}

// bindArgs fills the argument struct from parsed flag values and positional
// tokens. Options are aligned with the struct fields in declaration order.
func bindArgs(dst any, opts []Option, inv *Invocation) error {
	v := reflect.ValueOf(dst).Elem()

	var posIdx int

	optIdx := 0

	for i := range v.NumField() {
		if !v.Type().Field(i).IsExported() {
			continue
		}

		if optIdx >= len(opts) {
			break
		}

		o := opts[optIdx]
		optIdx++
		field := v.Field(i)

		if o.Positional {
			if posIdx >= len(inv.Args) {
				return usageErrorf("missing required argument %q", o.Name)
			}

			if err := setFromString(field, inv.Args[posIdx], o.Name); err != nil {
				return err
			}

			posIdx++

			continue
		}

		setFromFlag(field, o, inv)
	}

	if posIdx < len(inv.Args) {
		return usageErrorf("unexpected extra arguments: %v", inv.Args[posIdx:])
	}

	return nil
}

func setFromString(field reflect.Value, raw, name string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return usageErrorf("argument %q: %v is not an integer", name, raw)
		}

		field.SetInt(int64(n))
	default:
		return fmt.Errorf("%w: unsupported positional type %s", ErrDerive, field.Type())
	}

	return nil
}

func setFromFlag(field reflect.Value, o Option, inv *Invocation) {
	if field.Type() == durationType {
		field.SetInt(int64(inv.Duration(o.Name)))
		return
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(inv.String(o.Name))
	case reflect.Bool:
		field.SetBool(inv.Bool(o.Name))
	case reflect.Int:
		field.SetInt(int64(inv.Int(o.Name)))
	case reflect.Float64:
		field.SetFloat(inv.Float(o.Name))
	}
}
