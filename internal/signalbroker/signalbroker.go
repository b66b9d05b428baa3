// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker provides a way to listen for OS signals and handle
// them gracefully. By default it listens for the usual termination signals.
//
// It also contains a watchdog function that watches the signal channel,
// cancelling a context on the first signal so running commands can shut down
// cleanly, and forcing the process to exit when the same signal arrives again.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/smurfix/flask-script/internal/ctxlog"
)

// osExit is swapped out in tests.
var osExit = os.Exit

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a signal channel subscribed to the given signals, or to the
// default termination set when none are given.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Watch monitors the signal channel. The first signal of a given type cancels
// the context so the running command can shut down gracefully; a second one of
// the same type exits the process immediately.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Info(ctx, "watchdog", "detail", "received second signal of type, terminating", "signal", sig.String())
			osExit(1)

			return
		}

		ctxlog.Info(ctx, "watchdog", "detail", "received signal, shutting down", "signal", sig.String())

		seen[sig] = struct{}{}

		cancel()
	}
}
