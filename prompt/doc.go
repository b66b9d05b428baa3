// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package prompt provides blocking console interactions: free-text input
// with an optional default, masked password entry, yes/no confirmation and a
// single choice from an enumerated list. Invalid input reprompts; there is no
// timeout behaviour.
package prompt
