// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint conventions shared by rolecall
// binaries: main calls run() error and hands a failure to Fatal.
package process
