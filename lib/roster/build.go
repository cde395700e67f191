// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Bucket is one trackable role and the handles assigned to it, sorted
// ascending.
type Bucket struct {
	Role    Role
	Handles []string
}

// Snapshot is the role-to-members grouping for one pass.
type Snapshot struct {
	// Buckets are ordered by rank descending, then role ID ascending.
	Buckets []Bucket

	// MissingRoleIDs are tracked IDs absent from the roster, sorted.
	MissingRoleIDs []string

	// Dynamic is true when no roles were tracked and every role with
	// members was used instead.
	Dynamic bool

	TakenAt time.Time
}

// Build groups roster members under their highest-ranked trackable
// role.
func Build(roster Roster, tracked []string) Snapshot {
	roles := make(map[string]Role, len(roster.Roles))
	for _, role := range roster.Roles {
		roles[role.ID] = role
	}

	snapshot := Snapshot{TakenAt: roster.FetchedAt}
	trackable := make(map[string]Role)

	if len(tracked) == 0 {
		snapshot.Dynamic = true
		for _, member := range roster.Members {
			for _, roleID := range member.RoleIDs {
				if role, ok := roles[roleID]; ok {
					trackable[roleID] = role
				}
			}
		}
	} else {
		missing := make(map[string]bool)
		for _, roleID := range tracked {
			if role, ok := roles[roleID]; ok {
				trackable[roleID] = role
			} else {
				missing[roleID] = true
			}
		}
		for roleID := range missing {
			snapshot.MissingRoleIDs = append(snapshot.MissingRoleIDs, roleID)
		}
		sort.Strings(snapshot.MissingRoleIDs)
	}

	assigned := make(map[string][]string, len(trackable))
	seen := make(map[string]bool, len(roster.Members))
	for _, member := range roster.Members {
		key := member.UserID.String()
		if key == "" {
			key = member.Handle
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		best, ok := highestTrackable(member.RoleIDs, trackable)
		if !ok {
			continue
		}
		assigned[best.ID] = append(assigned[best.ID], member.DisplayHandle())
	}

	snapshot.Buckets = make([]Bucket, 0, len(trackable))
	for roleID, role := range trackable {
		handles := assigned[roleID]
		sort.Strings(handles)
		snapshot.Buckets = append(snapshot.Buckets, Bucket{Role: role, Handles: handles})
	}
	slices.SortFunc(snapshot.Buckets, func(a, b Bucket) int {
		switch {
		case a.Role.Outranks(b.Role):
			return -1
		case b.Role.Outranks(a.Role):
			return 1
		}
		return strings.Compare(a.Role.ID, b.Role.ID)
	})
	return snapshot
}

func highestTrackable(roleIDs []string, trackable map[string]Role) (Role, bool) {
	var best Role
	found := false
	for _, roleID := range roleIDs {
		role, ok := trackable[roleID]
		if !ok {
			continue
		}
		if !found || role.Outranks(best) {
			best = role
			found = true
		}
	}
	return best, found
}

// MemberCount returns the number of distinct members across buckets.
func (s Snapshot) MemberCount() int {
	count := 0
	for _, bucket := range s.Buckets {
		count += len(bucket.Handles)
	}
	return count
}
