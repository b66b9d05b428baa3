// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color provides ANSI color codes for terminal output, honouring the
// NO_COLOR and FORCE_COLOR environment variables.
package color
