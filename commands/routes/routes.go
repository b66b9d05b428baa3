// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package routes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	script "github.com/smurfix/flask-script"
)

const (
	urlFlag   = "url"
	orderFlag = "order"

	orderByPath     = "path"
	orderByEndpoint = "endpoint"
)

// Command lists the application's URL matching rules.
type Command struct{}

// Register installs the command on m under the name "routes".
func Register(m *script.Manager) {
	m.AddCommand("routes", &Command{})
}

// Usage returns the one-line description for the command listing.
func (c *Command) Usage() string {
	return "Displays the application's URL routes"
}

// Options declares the command's flags.
func (c *Command) Options() []script.Option {
	return []script.Option{
		{Name: urlFlag, Short: "u", Usage: "only show routes whose path contains this value", Default: ""},
		{Name: orderFlag, Short: "o", Usage: "sort by 'path' or 'endpoint'", Default: orderByPath},
	}
}

// Run prints the route table.
func (c *Command) Run(_ context.Context, inv *script.Invocation) error {
	order := inv.String(orderFlag)
	if order != orderByPath && order != orderByEndpoint {
		return script.Invalid("unknown sort order %q, expected %q or %q", order, orderByPath, orderByEndpoint)
	}

	rules := filter(inv.App.Routes, inv.String(urlFlag))

	sort.SliceStable(rules, func(i, j int) bool {
		if order == orderByEndpoint {
			return rules[i].Endpoint < rules[j].Endpoint
		}

		return rules[i].Path < rules[j].Path
	})

	tw := tabwriter.NewWriter(inv.Writer(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Method\tPath\tEndpoint")

	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Method, r.Path, r.Endpoint)
	}

	return tw.Flush()
}

func filter(rules []script.Route, url string) []script.Route {
	if url == "" {
		out := make([]script.Route, len(rules))
		copy(out, rules)

		return out
	}

	var out []script.Route

	for _, r := range rules {
		if strings.Contains(r.Path, url) {
			out = append(out, r)
		}
	}

	return out
}
