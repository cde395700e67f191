// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"context"
	"strings"
	"time"

	"github.com/bureau-foundation/rolecall/lib/ref"
)

// Role is one role defined in the roster.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// Outranks reports whether r sorts before other on the board.
func (r Role) Outranks(other Role) bool {
	if r.Rank != other.Rank {
		return r.Rank > other.Rank
	}
	return r.ID < other.ID
}

// Member is one member and the IDs of every role they hold.
type Member struct {
	UserID ref.UserID `json:"user_id"`

	// Handle is how the member is shown on the board. Empty or
	// whitespace-only means the user ID.
	Handle string `json:"handle,omitempty"`

	RoleIDs []string `json:"roles"`
}

// DisplayHandle returns Handle with surrounding whitespace removed, or
// the user ID when that leaves nothing.
func (m Member) DisplayHandle() string {
	if handle := strings.TrimSpace(m.Handle); handle != "" {
		return handle
	}
	return m.UserID.String()
}

// Roster is a full read of one room's roles and members.
type Roster struct {
	Roles     []Role    `json:"roles"`
	Members   []Member  `json:"members"`
	FetchedAt time.Time `json:"fetched_at"`
}

// RoleByID returns the role with the given ID.
func (r Roster) RoleByID(id string) (Role, bool) {
	for _, role := range r.Roles {
		if role.ID == id {
			return role, true
		}
	}
	return Role{}, false
}

// Source fetches a fresh roster. Implementations must not cache across
// calls; every reconciliation pass sees current membership.
type Source interface {
	Fetch(ctx context.Context) (Roster, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Roster, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) (Roster, error) {
	return f(ctx)
}
