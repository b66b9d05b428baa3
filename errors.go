// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned when the first positional token does not
	// match any registered command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoApp is returned when a command is dispatched but the manager has
	// neither an application instance nor a factory.
	ErrNoApp = errors.New("no application instance or factory configured")
	// ErrDerive is returned when an option spec cannot be derived from a
	// command function's argument struct.
	ErrDerive = errors.New("cannot derive options")
)

// InvalidCommandError is an intentional, application-level validation failure
// raised by a command. At the top-level dispatch boundary it is printed as a
// plain one-line message without diagnostics and the process exits non-zero.
type InvalidCommandError struct {
	msg string
}

// Error implements the error interface for InvalidCommandError.
func (e *InvalidCommandError) Error() string {
	return e.msg
}

// Invalid creates an InvalidCommandError with a formatted message.
func Invalid(format string, args ...any) error {
	return &InvalidCommandError{msg: fmt.Sprintf(format, args...)}
}

// usageError marks argument errors detected during dispatch, such as a missing
// required positional. These exit with the parse-error code rather than the
// generic failure code.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// Exit codes applied by Manager.Main.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// ExitCode classifies an error returned by Manager.Run into a process exit
// code. Intentional validation failures and unexpected errors exit 1; unknown
// commands and argument errors exit 2. Missing required flags are reported by
// the parser with a dedicated error type carrying the flag names, matched
// here structurally.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var (
		ue *usageError
		rf interface{ HasRequiredFlags() []string }
	)

	if errors.Is(err, ErrUnknownCommand) || errors.As(err, &ue) || errors.As(err, &rf) {
		return exitUsage
	}

	return exitFailure
}
