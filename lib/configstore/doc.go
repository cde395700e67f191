// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package configstore persists the reconciler's state: which roles are
// tracked, the board title, and the pointer to the live board message.
//
// A [Store] loads and saves a whole [Config]. [SQLiteStore] keeps one
// row per key with a JSON value and merges stored keys over [Default]
// on load, so keys added in later releases take their defaults.
//
// [Settings] is the single in-process owner of the current Config.
// Every mutation goes through [Settings.Update], which applies the
// change to a copy, saves the copy, and only then swaps it in. A
// failed save leaves the in-memory config untouched.
package configstore
