// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package lifecycle owns the board message: placing it, confirming it
// still exists, and pushing new content into it.
//
// The [Manager] finds the live board with a two-tier lookup: the
// cached [Handle] from the last confirmed fetch, create or edit, then
// the persisted pointer in configstore, checked with one host fetch.
// Host failures fall into four kinds:
//
//   - not found: the board is gone. The pointer is cleared and the
//     clearing persisted before the call returns ([ErrLost]).
//   - forbidden: the host denies access. The cached handle is dropped;
//     the pointer is kept ([ErrForbidden]).
//   - no pointer at all ([ErrUnbound]).
//   - anything else, including a call exceeding its timeout: transient.
//     Nothing is discarded.
//
// Only "not found" ever clears persisted state.
//
// A Manager is not safe for concurrent mutation; lib/reconcile runs
// every Place, EnsureLive and Push under its pass lock.
package lifecycle
