// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package appconfig loads the YAML application configuration an application
// factory consumes. Sources are local files or go-getter URLs.
package appconfig
