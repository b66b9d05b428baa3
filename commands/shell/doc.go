// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell provides the interactive shell command: a line-edited REPL
// that dispatches registered commands against the live application.
package shell
