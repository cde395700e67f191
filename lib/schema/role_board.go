// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

// RoleBoardKey is the content key under which a board message carries
// [RoleBoardContent]. Clients that understand it can render the board
// natively instead of parsing the fallback body.
const RoleBoardKey = "m.bureau.role_board"

// RoleBoardContent is the structured form of a rendered role board.
type RoleBoardContent struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Sections    []RoleBoardSection `json:"sections"`
	Footer      string             `json:"footer"`

	// GeneratedAt is the roster snapshot time in Unix milliseconds.
	GeneratedAt int64 `json:"generated_at"`
}

// RoleBoardSection is one role's entry on the board.
type RoleBoardSection struct {
	Name string `json:"name"`
	Body string `json:"body"`
}
