// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"context"
	"net/http"
	"time"
)

// App is the handle on the host application that commands run against. The
// dispatch layer never inspects it beyond handing it to commands; the fields
// exist so the built-in commands have something to serve, list and print.
type App struct {
	// Name of the application, used in banners and log lines.
	Name string
	// Handler is served by the runserver command.
	Handler http.Handler
	// Config is the resolved application configuration.
	Config map[string]any
	// Routes are the URL routes the routes command lists.
	Routes []Route
	// ShellContext holds extra values preloaded into the interactive shell.
	ShellContext map[string]any
}

// Route describes one URL matching rule of the application.
type Route struct {
	Method   string
	Path     string
	Endpoint string
}

// Values is the read-only accessor over parsed manager-level options that a
// Factory receives. *cli.Command satisfies it.
type Values interface {
	String(name string) string
	Bool(name string) bool
	Int(name string) int
	Float(name string) float64
	Duration(name string) time.Duration
}

// Factory constructs the application instance. It runs after the
// manager-level options have been parsed, and before any command is invoked,
// so those options can select the application configuration.
type Factory func(ctx context.Context, v Values) (*App, error)
