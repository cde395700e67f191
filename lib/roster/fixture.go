// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Parse reads a roster from JSONC: JSON with comments and trailing
// commas, in the same shape Roster marshals to.
//
//	{
//	  // Highest rank first on the board.
//	  "roles": [{"id": "admins", "name": "Admins", "rank": 100}],
//	  "members": [{"user_id": "@alice:example.org", "roles": ["admins"]}],
//	}
func Parse(data []byte) (Roster, error) {
	var roster Roster
	if err := json.Unmarshal(jsonc.ToJSON(data), &roster); err != nil {
		return Roster{}, fmt.Errorf("parsing roster: %w", err)
	}
	if err := roster.Validate(); err != nil {
		return Roster{}, err
	}
	return roster, nil
}

// ReadFile reads and parses a JSONC roster file.
func ReadFile(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("reading %s: %w", path, err)
	}
	roster, err := Parse(data)
	if err != nil {
		return Roster{}, fmt.Errorf("%s: %w", path, err)
	}
	return roster, nil
}

// Validate checks that role IDs are present and unique and that every
// member is identifiable.
func (r Roster) Validate() error {
	var errs []error
	roleIDs := make(map[string]bool, len(r.Roles))
	for index, role := range r.Roles {
		if role.ID == "" {
			errs = append(errs, fmt.Errorf("roles[%d]: id is required", index))
			continue
		}
		if roleIDs[role.ID] {
			errs = append(errs, fmt.Errorf("roles[%d]: duplicate id %q", index, role.ID))
		}
		roleIDs[role.ID] = true
	}
	for index, member := range r.Members {
		if member.UserID.IsZero() && strings.TrimSpace(member.Handle) == "" {
			errs = append(errs, fmt.Errorf("members[%d]: user_id or handle is required", index))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid roster: %w", errors.Join(errs...))
	}
	return nil
}
