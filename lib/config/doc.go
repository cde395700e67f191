// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the rolecall
// daemon.
//
// Configuration is loaded from a single file named by either a
// --config flag or the ROLECALL_CONFIG environment variable (see
// [Resolve]). There is no ~/.config discovery and no automatic file
// search.
//
// The file covers deployment concerns only: which homeserver and
// account to use, where the roster lives, where state and sockets go,
// and timing. The board's own settings (tracked roles, title, board
// location) are changed at runtime and live in the SQLite config store.
//
// Path fields support ${HOME}, ${ROLECALL_ROOT} and ${VAR:-default}
// expansion after loading. No other environment variables override
// config values.
package config
