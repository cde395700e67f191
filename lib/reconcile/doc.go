// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile keeps the role board in step with the roster.
//
// A [Reconciler] runs a pass at startup and then every Interval
// (60 minutes by default). A pass confirms the board is live, fetches
// the roster, builds and renders the board, and pushes it. Passes are
// single-flight: a trigger that arrives while a pass holds the lock is
// coalesced (dropped) rather than queued, so two edits to the board
// never run at once. Pass failures are logged and reported as a
// lifecycle.Outcome; nothing escapes a pass as an error.
//
// The administrative operations persist their config change through
// configstore.Settings before triggering a pass, so a pass never sees
// a half-applied change. [Reconciler.Place] waits for the lock instead
// of being coalesced, since the caller expects the board to exist when
// it returns.
//
// Restart needs no special handling: a new Reconciler starts with an
// empty handle cache, so its first pass confirms the persisted pointer
// with a fetch like any other uncached pass.
package reconcile
