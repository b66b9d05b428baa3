// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v3"
)

// Option describes one command-line flag or positional argument of a command:
// its name, optional one-letter short flag, help text, default value and
// required-ness. Options with a nil Default and Positional set are required
// positional arguments; everything else compiles to an optional flag.
type Option struct {
	// Name is the long flag name, or the positional argument name.
	Name string
	// Short is a one-letter alias for the flag. Derived options get the first
	// letter of the name that is not already taken; collisions are not
	// auto-resolved beyond that.
	Short string
	// Usage is the one-line help text.
	Usage string
	// Default is the value produced when the flag is absent. Its dynamic type
	// (string, bool, int, float64, time.Duration) selects the flag type.
	// Boolean defaults produce a --flag/--no-flag toggle pair.
	Default any
	// Positional marks a required positional argument rather than a flag.
	Positional bool
	// Required marks a flag that must be supplied. It is rejected for boolean
	// defaults, which always carry a value.
	Required bool
}

// flag compiles the option into a urfave/cli flag.
func (o Option) flag() (cli.Flag, error) {
	var aliases []string
	if o.Short != "" {
		aliases = []string{o.Short}
	}

	switch def := o.Default.(type) {
	case nil:
		return &cli.StringFlag{
			Name:     o.Name,
			Aliases:  aliases,
			Usage:    o.Usage,
			Required: o.Required,
		}, nil
	case string:
		return &cli.StringFlag{
			Name:     o.Name,
			Aliases:  aliases,
			Usage:    o.Usage,
			Value:    def,
			Required: o.Required,
		}, nil
	case bool:
		// A toggle always has a value, so requiring one makes no sense.
		if o.Required {
			return nil, fmt.Errorf("%w: option %q: a toggle cannot be required", ErrDerive, o.Name)
		}

		return &cli.BoolWithInverseFlag{
			Name:    o.Name,
			Aliases: aliases,
			Usage:   o.Usage,
			Value:   def,
		}, nil
	case int:
		return &cli.IntFlag{
			Name:     o.Name,
			Aliases:  aliases,
			Usage:    o.Usage,
			Value:    def,
			Required: o.Required,
		}, nil
	case float64:
		return &cli.FloatFlag{
			Name:     o.Name,
			Aliases:  aliases,
			Usage:    o.Usage,
			Value:    def,
			Required: o.Required,
		}, nil
	case time.Duration:
		return &cli.DurationFlag{
			Name:     o.Name,
			Aliases:  aliases,
			Usage:    o.Usage,
			Value:    def,
			Required: o.Required,
		}, nil
	default:
		return nil, fmt.Errorf("%w: option %q: unsupported default type %T", ErrDerive, o.Name, o.Default)
	}
}

// compileFlags turns the non-positional options into cli flags. Errors are
// aggregated so that every broken option is reported at once.
func compileFlags(opts []Option) ([]cli.Flag, error) {
	var (
		flags []cli.Flag
		errs  *multierror.Error
	)

	for _, o := range opts {
		if o.Positional {
			continue
		}

		f, err := o.flag()
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		flags = append(flags, f)
	}

	return flags, errs.ErrorOrNil()
}

// positionals returns the positional options in declaration order.
func positionals(opts []Option) []Option {
	var pos []Option

	for _, o := range opts {
		if o.Positional {
			pos = append(pos, o)
		}
	}

	return pos
}

// argsUsage renders the usage suffix for the positional arguments, e.g.
// "<name> <count>".
func argsUsage(opts []Option) string {
	pos := positionals(opts)
	if len(pos) == 0 {
		return ""
	}

	parts := make([]string, len(pos))
	for i, o := range pos {
		parts[i] = "<" + o.Name + ">"
	}

	return strings.Join(parts, " ")
}

// deriveOptions builds the option spec for a command function's argument
// struct. Exported fields without a default tag become required positional
// arguments in field order; fields with one become optional flags named after
// the field, with a short flag formed from the first unused letter of the
// name. Boolean fields always become a --flag/--no-flag toggle pair.
func deriveOptions(t reflect.Type) ([]Option, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: argument type %s is not a struct", ErrDerive, t)
	}

	var (
		opts  []Option
		errs  *multierror.Error
		taken = map[string]struct{}{}
	)

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			errs = multierror.Append(errs,
				fmt.Errorf("%w: field %s.%s is unexported", ErrDerive, t.Name(), f.Name))
			continue
		}

		name := optionName(f.Name)
		o := Option{
			Name:  name,
			Usage: f.Tag.Get("usage"),
		}

		defTag, hasDefault := f.Tag.Lookup("default")

		switch {
		case !hasDefault && f.Type.Kind() == reflect.Bool:
			// A toggle with no default makes no sense as a positional.
			errs = multierror.Append(errs,
				fmt.Errorf("%w: bool field %s.%s needs a default tag", ErrDerive, t.Name(), f.Name))

			continue
		case !hasDefault:
			o.Positional = true
			o.Required = true

			if err := checkPositionalKind(f.Type); err != nil {
				errs = multierror.Append(errs,
					fmt.Errorf("%w: field %s.%s: %v", ErrDerive, t.Name(), f.Name, err))

				continue
			}
		default:
			def, err := parseDefault(f.Type, defTag)
			if err != nil {
				errs = multierror.Append(errs,
					fmt.Errorf("%w: field %s.%s: %v", ErrDerive, t.Name(), f.Name, err))

				continue
			}

			o.Default = def

			if s, ok := f.Tag.Lookup("short"); ok {
				o.Short = s
			} else {
				o.Short = shortFor(name, taken)
			}

			if o.Short != "" {
				taken[o.Short] = struct{}{}
			}
		}

		opts = append(opts, o)
	}

	return opts, errs.ErrorOrNil()
}

// optionName converts an exported field name to its kebab-case flag name,
// e.g. "NoColor" becomes "no-color".
func optionName(field string) string {
	var sb strings.Builder

	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('-')
			}

			r += 'a' - 'A'
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

// shortFor picks the first letter of name that is not already taken as a
// short flag. Returns "" when every letter is in use.
func shortFor(name string, taken map[string]struct{}) string {
	for _, r := range name {
		if r == '-' {
			continue
		}

		s := string(r)
		if _, ok := taken[s]; !ok {
			return s
		}
	}

	return ""
}

var durationType = reflect.TypeOf(time.Duration(0))

func checkPositionalKind(t reflect.Type) error {
	switch t.Kind() {
	case reflect.String, reflect.Int:
		return nil
	default:
		return fmt.Errorf("unsupported positional type %s", t)
	}
}

// parseDefault converts the default tag value to the field's type.
func parseDefault(t reflect.Type, tag string) (any, error) {
	if t == durationType {
		d, err := time.ParseDuration(tag)
		if err != nil {
			return nil, fmt.Errorf("invalid duration default %q: %w", tag, err)
		}

		return d, nil
	}

	switch t.Kind() {
	case reflect.String:
		return tag, nil
	case reflect.Bool:
		b, err := strconv.ParseBool(tag)
		if err != nil {
			return nil, fmt.Errorf("invalid bool default %q: %w", tag, err)
		}

		return b, nil
	case reflect.Int:
		n, err := strconv.Atoi(tag)
		if err != nil {
			return nil, fmt.Errorf("invalid int default %q: %w", tag, err)
		}

		return n, nil
	case reflect.Float64:
		f, err := strconv.ParseFloat(tag, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float default %q: %w", tag, err)
		}

		return f, nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", t)
	}
}
