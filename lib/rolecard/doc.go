// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rolecard renders a roster snapshot into the role board
// document.
//
// [Render] is pure. One section per bucket, in snapshot order, labeled
// "<role> (<n> members)". A section body is the newline-joined handle
// list, hard-capped at [MaxSectionBody] runes: a longer body keeps its
// first 997 runes and gains a "..." marker. The footer timestamp comes
// from the snapshot, never the wall clock, so identical inputs render
// to identical documents.
//
// A [Document] serializes three ways: [Document.Markdown] for the
// Matrix body, [Document.HTML] for formatted_body (goldmark with GFM),
// and [Document.Board] for the structured copy.
package rolecard
