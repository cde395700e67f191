// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the slice of the Matrix client-server API that
// rolecall uses: reading a room's members and state, posting and editing
// the role board message, fetching it back, and redacting it.
//
// [Client] holds the homeserver URL, HTTP transport, and an optional
// request limiter shared by every session derived from it.
// [DirectSession] adds an access token held in a secret.Buffer; callers
// must Close it to release the protected memory. [Session] is the
// interface consumers accept, so tests can substitute fakes.
//
// All API errors are returned as [*MatrixError] carrying the Matrix
// error code and HTTP status. [IsMatrixError] tests for a specific code.
// Request URLs are built by string concatenation with url.PathEscape on
// each segment, since room and event IDs contain '!', '$' and ':'.
package messaging
