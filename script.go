// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package script provides a command registration and dispatch layer for web
// applications. A Manager holds an ordered registry of named commands, derives
// command-line flags from a command function's argument struct, and invokes
// the selected command against an application instance obtained directly or
// from a factory function.
package script

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)
