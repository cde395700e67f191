// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that the
// reconciler's schedule and the role board's "last updated" footer can
// be driven deterministically in tests.
//
// Production code holds a Clock field set to Real(). Tests use Fake(),
// which stands still until Advance is called:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go reconciler.Run(ctx)
//	fake.WaitForTimers(1)      // the run loop has created its ticker
//	fake.Advance(time.Hour)    // deliver exactly one tick
//
// WaitForTimers removes the race between a goroutine registering a
// ticker and the test advancing time past it.
package clock
