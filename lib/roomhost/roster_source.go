// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomhost

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/rolecall/lib/clock"
	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/roster"
	"github.com/bureau-foundation/rolecall/lib/schema"
	"github.com/bureau-foundation/rolecall/messaging"
)

// RosterSource reads roles and members from one roster room.
type RosterSource struct {
	session messaging.Session
	roomID  ref.RoomID
	clock   clock.Clock
	logger  *slog.Logger
}

var _ roster.Source = (*RosterSource)(nil)

// NewRosterSource returns a source for roomID. clock stamps FetchedAt;
// nil means clock.Real().
func NewRosterSource(session messaging.Session, roomID ref.RoomID, clk clock.Clock, logger *slog.Logger) *RosterSource {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RosterSource{session: session, roomID: roomID, clock: clk, logger: logger}
}

// Fetch reads the room's current roles and joined members. A role's
// members are kept only while they are joined to the room, and are
// shown by display name when they have one. Malformed role events are
// logged and skipped.
func (s *RosterSource) Fetch(ctx context.Context) (roster.Roster, error) {
	fetchedAt := s.clock.Now()

	state, err := s.session.GetRoomState(ctx, s.roomID)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("roomhost: reading roster room state: %w", err)
	}
	members, err := s.session.GetRoomMembers(ctx, s.roomID)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("roomhost: reading roster room members: %w", err)
	}

	// Joined members and their display names.
	joined := make(map[ref.UserID]string, len(members))
	for _, member := range members {
		if member.Membership == messaging.MembershipJoin {
			joined[member.UserID] = member.DisplayName
		}
	}

	result := roster.Roster{FetchedAt: fetchedAt}
	memberRoles := make(map[ref.UserID][]string)
	var memberOrder []ref.UserID

	for _, event := range state {
		if event.Type != schema.EventTypeRole || event.StateKey == nil || *event.StateKey == "" {
			continue
		}
		roleID := *event.StateKey

		var content schema.RoleContent
		if err := json.Unmarshal(event.Content, &content); err != nil {
			s.logger.Warn("skipping unparseable role", "room_id", s.roomID, "role_id", roleID, "error", err)
			continue
		}
		if content.IsDeleted() {
			continue
		}
		if err := content.Validate(); err != nil {
			s.logger.Warn("skipping invalid role", "room_id", s.roomID, "role_id", roleID, "error", err)
			continue
		}

		result.Roles = append(result.Roles, roster.Role{ID: roleID, Name: content.Name, Rank: content.Rank})
		for _, userID := range content.Members {
			if _, ok := joined[userID]; !ok {
				continue
			}
			if _, seen := memberRoles[userID]; !seen {
				memberOrder = append(memberOrder, userID)
			}
			memberRoles[userID] = append(memberRoles[userID], roleID)
		}
	}

	for _, userID := range memberOrder {
		result.Members = append(result.Members, roster.Member{
			UserID:  userID,
			Handle:  joined[userID],
			RoleIDs: memberRoles[userID],
		})
	}
	return result, nil
}
