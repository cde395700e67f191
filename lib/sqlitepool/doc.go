// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool wraps zombiezen.com/go/sqlite with the pragmas and
// transaction helpers rolecall's config store relies on.
//
// Every connection is prepared with:
//
//   - journal_mode=WAL so the CLI's read-only inspection never blocks
//     the service's writes.
//   - synchronous=NORMAL: committed settings survive a process crash.
//   - busy_timeout=5000 to wait for the write lock instead of failing.
//   - temp_store=MEMORY.
//
// followed by the caller's Schema statements, which must be idempotent
// (CREATE TABLE IF NOT EXISTS and similar).
//
// [Pool.Write] runs a function inside an IMMEDIATE transaction, taking
// the write lock up front so a multi-row save either lands completely
// or not at all. [Pool.Read] borrows a connection without a transaction.
package sqlitepool
