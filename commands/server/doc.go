// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package server provides the runserver command: a thin wrapper that serves
// the application's HTTP handler with graceful shutdown.
package server
