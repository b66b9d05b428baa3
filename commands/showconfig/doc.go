// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package showconfig provides the config command, dumping the resolved
// application configuration as pretty-printed JSON.
package showconfig
