// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/rolecall/lib/ref"
)

// EventTypeRole describes one role in a roster room: its display name,
// its rank, and the users holding it. Higher rank outranks lower.
//
// State key: role ID (e.g., "moderators")
// Room: the roster room
const EventTypeRole = "m.bureau.role"

// RoleContent is the content of an [EventTypeRole] state event.
// A role whose content is {} (the usual way to retire a state event)
// is treated as deleted.
type RoleContent struct {
	Name    string       `json:"name"`
	Rank    int          `json:"rank"`
	Members []ref.UserID `json:"members,omitempty"`
}

// IsDeleted reports whether the content is the empty retirement form.
func (c RoleContent) IsDeleted() bool {
	return c.Name == "" && c.Rank == 0 && len(c.Members) == 0
}

// Validate checks that a live role is well formed.
func (c RoleContent) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	seen := make(map[ref.UserID]bool, len(c.Members))
	for _, member := range c.Members {
		if member.IsZero() {
			errs = append(errs, errors.New("members contains an empty user ID"))
			continue
		}
		if seen[member] {
			errs = append(errs, fmt.Errorf("member %s listed twice", member))
		}
		seen[member] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("schema: invalid role: %w", errors.Join(errs...))
	}
	return nil
}
