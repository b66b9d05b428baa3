// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	script "github.com/smurfix/flask-script"
	"github.com/smurfix/flask-script/internal/ctxlog"
)

const (
	hostFlag  = "host"
	portFlag  = "port"
	debugFlag = "debug"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// ErrNoHandler is returned when the application exposes no HTTP handler.
var ErrNoHandler = errors.New("application has no HTTP handler to serve")

// Command runs the development HTTP server against the application's
// handler. The zero value is not usable; construct it with New.
type Command struct {
	host  string
	port  int
	debug bool
}

// New creates the runserver command with its default binding.
func New() *Command {
	return &Command{
		host:  "127.0.0.1",
		port:  5000,
		debug: true,
	}
}

// Register installs the command on m under the name "runserver".
func Register(m *script.Manager) {
	m.AddCommand("runserver", New())
}

// Usage returns the one-line description for the command listing.
func (c *Command) Usage() string {
	return "Runs the development HTTP server"
}

// Options declares the command's flags.
func (c *Command) Options() []script.Option {
	return []script.Option{
		{Name: hostFlag, Short: "t", Usage: "interface to bind to", Default: c.host},
		{Name: portFlag, Short: "p", Usage: "port to listen on", Default: c.port},
		{Name: debugFlag, Short: "d", Usage: "enable debug logging", Default: c.debug},
	}
}

// Run serves the application handler until the context is cancelled, then
// shuts the server down gracefully.
func (c *Command) Run(ctx context.Context, inv *script.Invocation) error {
	if inv.App == nil || inv.App.Handler == nil {
		return ErrNoHandler
	}

	if inv.Bool(debugFlag) {
		ctxlog.SetDebug()
	}

	addr := net.JoinHostPort(inv.String(hostFlag), strconv.Itoa(inv.Int(portFlag)))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return script.Invalid("cannot listen on %s: %v", addr, err)
	}

	srv := &http.Server{
		Handler:           inv.App.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Serve(ln)
	}()

	ctxlog.Info(ctx, "development server listening", "app", inv.App.Name, "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		<-errCh

		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}
