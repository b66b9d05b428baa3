// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package routes provides the routes command, printing the application's URL
// matching rules as a table.
package routes
