// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is an example management script for a small demo web
// application. It shows the registry, derived options, manager-level options
// with a factory, sub-managers and the built-in commands.
package main

import (
	"context"
	"fmt"
	"net/http"

	script "github.com/smurfix/flask-script"
	"github.com/smurfix/flask-script/appconfig"
	"github.com/smurfix/flask-script/commands/routes"
	"github.com/smurfix/flask-script/commands/server"
	"github.com/smurfix/flask-script/commands/shell"
	"github.com/smurfix/flask-script/commands/showconfig"
	"github.com/smurfix/flask-script/internal/ctxlog"
	"github.com/smurfix/flask-script/internal/signalbroker"
	"github.com/smurfix/flask-script/prompt"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	m := script.NewWithFactory(newApp,
		server.Register,
		shell.Register,
		routes.Register,
		showconfig.Register,
	)
	m.Name = "manage"
	m.Description = "Management script for the demo application."

	m.AddOption(script.Option{
		Name:    "config",
		Short:   "c",
		Usage:   "path or URL of the YAML application configuration",
		Default: "",
	})

	m.AddCommand("hello", script.Func("Greets somebody", hello))

	db := m.Sub("db", "Database maintenance commands")
	db.AddCommand("init", script.Func("Creates the database schema", dbInit))
	db.AddCommand("drop", script.Func("Drops the database schema", dbDrop))

	m.Main(ctx)
}

type helloArgs struct {
	Name     string `usage:"who to greet"`
	Verified bool   `default:"false" usage:"greet only verified users"`
}

func hello(_ context.Context, _ *script.App, a helloArgs) error {
	if a.Verified {
		fmt.Printf("hello, verified %s\n", a.Name)
		return nil
	}

	fmt.Printf("hello, %s\n", a.Name)

	return nil
}

type dbInitArgs struct {
	Dsn string `default:"sqlite://demo.db" usage:"database connection string"`
}

func dbInit(ctx context.Context, _ *script.App, a dbInitArgs) error {
	ctxlog.Info(ctx, "creating schema", "dsn", a.Dsn)
	return nil
}

type dbDropArgs struct {
	Yes bool `default:"false" usage:"do not ask for confirmation"`
}

func dbDrop(ctx context.Context, _ *script.App, a dbDropArgs) error {
	if !a.Yes {
		ok, err := prompt.Bool("drop all tables?", false)
		if err != nil {
			return err
		}

		if !ok {
			return script.Invalid("aborted")
		}
	}

	ctxlog.Info(ctx, "dropping schema")

	return nil
}

// newApp builds the demo application. The --config manager option selects
// the configuration file; it is resolved before any command runs.
func newApp(ctx context.Context, v script.Values) (*script.App, error) {
	cfg := map[string]any{}

	if src := v.String("config"); src != "" {
		loaded, err := appconfig.Load(ctx, src)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "hello from the demo application")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &script.App{
		Name:    "demo",
		Handler: mux,
		Config:  cfg,
		Routes: []script.Route{
			{Method: http.MethodGet, Path: "/", Endpoint: "index"},
			{Method: http.MethodGet, Path: "/healthz", Endpoint: "health"},
		},
		ShellContext: map[string]any{
			"config": cfg,
		},
	}, nil
}
