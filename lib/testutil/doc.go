// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for rolecall packages.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets, whose paths are limited to 108 bytes (sun_path in
// sockaddr_un). t.TempDir() paths can exceed that. [WaitForSocket]
// blocks until a server has created its socket file.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests never block forever on a channel. They are the only
// place in the test suite where wall-clock timeouts are used; scheduler
// tests drive lib/clock's fake instead.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
