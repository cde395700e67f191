// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// rolecall administers a running rolecall-service over its Unix
// socket: placing the board, choosing tracked roles, setting the title
// and forcing an update. "rolecall preview --roster FILE" renders a
// board from a JSONC roster file without contacting the service.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/rolecall/lib/process"
)

func main() {
	if err := run(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		process.Fatal(err)
	}
}

func run() error {
	return newRoot(os.Stdout, os.Stderr).Execute(os.Args[1:])
}

// exitError exits with Code without printing anything further.
type exitError struct {
	Code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.Code) }

func (e *exitError) ExitCode() int { return e.Code }
