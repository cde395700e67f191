// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the Matrix event types and content structures
// rolecall reads and writes.
//
//   - [EventTypeRole] -- one state event per role in the roster room,
//     keyed by role ID.
//   - [RoleBoardKey] -- structured copy of the rendered role board,
//     carried alongside the human-readable body of the board message.
//
// This package depends only on lib/ref.
package schema
