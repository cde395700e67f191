// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/rolecall/lib/clock"
)

// SocketDir creates a short-named temporary directory in /tmp for Unix
// domain sockets. The directory is removed when the test completes.
func SocketDir(t *testing.T) string {
	t.Helper()
	directory, err := os.MkdirTemp("/tmp", "rolecall-test-*")
	if err != nil {
		t.Fatalf("creating socket directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(directory)
	})
	return directory
}

// SocketPath returns a path for a socket named name inside a fresh
// SocketDir.
func SocketPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(SocketDir(t), name)
}

// socketPollInterval is how often WaitForSocket re-checks the path.
const socketPollInterval = 5 * time.Millisecond

// WaitForSocket blocks until a Unix socket exists at path, failing the
// test if the test's context expires first. A regular file at path
// (a stale leftover the server has yet to remove) does not count.
func WaitForSocket(t *testing.T, path string) {
	t.Helper()
	poll := clock.Real()
	for {
		if info, err := os.Stat(path); err == nil && info.Mode()&os.ModeSocket != 0 {
			return
		}
		select {
		case <-t.Context().Done():
			t.Fatalf("socket %s did not appear before test context expired", path)
		case <-poll.After(socketPollInterval):
		}
	}
}
