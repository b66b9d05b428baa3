// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package routes_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	script "github.com/smurfix/flask-script"
	"github.com/smurfix/flask-script/commands/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(app *script.App) (*script.Manager, *bytes.Buffer) {
	buf := &bytes.Buffer{}

	m := script.New(app, routes.Register)
	m.Name = "manage"
	m.Writer = buf
	m.ErrWriter = buf

	return m, buf
}

func demoApp() *script.App {
	return &script.App{
		Name: "demo",
		Routes: []script.Route{
			{Method: http.MethodGet, Path: "/users", Endpoint: "users"},
			{Method: http.MethodGet, Path: "/healthz", Endpoint: "health"},
			{Method: http.MethodPost, Path: "/users", Endpoint: "create_user"},
		},
	}
}

func TestRoutes(t *testing.T) {
	t.Run("prints the table sorted by path", func(t *testing.T) {
		m, buf := newTestManager(demoApp())

		require.NoError(t, m.Run(context.Background(), []string{"manage", "routes"}))

		out := buf.String()
		assert.Contains(t, out, "Method")
		assert.Contains(t, out, "/healthz")
		assert.Contains(t, out, "create_user")
		assert.Less(t, strings.Index(out, "/healthz"), strings.Index(out, "/users"))
	})

	t.Run("order by endpoint", func(t *testing.T) {
		m, buf := newTestManager(demoApp())

		require.NoError(t, m.Run(context.Background(), []string{"manage", "routes", "--order", "endpoint"}))

		out := buf.String()
		assert.Less(t, strings.Index(out, "create_user"), strings.Index(out, "health"))
		assert.Less(t, strings.Index(out, "health"), strings.Index(out, "users"))
	})

	t.Run("url filter narrows the table", func(t *testing.T) {
		m, buf := newTestManager(demoApp())

		require.NoError(t, m.Run(context.Background(), []string{"manage", "routes", "--url", "healthz"}))

		out := buf.String()
		assert.Contains(t, out, "/healthz")
		assert.NotContains(t, out, "/users")
	})

	t.Run("unknown sort order is an invalid command error", func(t *testing.T) {
		m, _ := newTestManager(demoApp())

		err := m.Run(context.Background(), []string{"manage", "routes", "--order", "color"})
		require.Error(t, err)

		var ice *script.InvalidCommandError

		assert.ErrorAs(t, err, &ice)
		assert.Equal(t, 1, script.ExitCode(err))
	})

	t.Run("no routes prints the header only", func(t *testing.T) {
		m, buf := newTestManager(&script.App{Name: "demo"})

		require.NoError(t, m.Run(context.Background(), []string{"manage", "routes"}))
		assert.Contains(t, buf.String(), "Method")
	})
}
