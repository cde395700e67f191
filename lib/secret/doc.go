// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret keeps the service account's Matrix access token out of
// the Go heap.
//
// A [Buffer] is an anonymous mmap region, locked against swap and
// excluded from core dumps. Close zeroes and unmaps it. The token is
// read once at startup by [ReadFile] and handed to messaging, which
// converts it to a string only when building an Authorization header.
package secret
