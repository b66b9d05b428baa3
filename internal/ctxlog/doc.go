// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware structured logger on top of slog,
// with a pretty console handler as the default output.
//
// The log level is read from an environment variable derived from the
// executable name: for a program named "manage" the variable is
// "MANAGE_LOG_LEVEL", with values "DEBUG", "INFO", "WARN" or "ERROR".
// Anything else defaults to "WARN".
package ctxlog
