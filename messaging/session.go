// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/secret"
)

// Session is the set of Matrix operations rolecall performs.
// *DirectSession is the production implementation.
type Session interface {
	// UserID returns the session's fully-qualified user ID.
	UserID() ref.UserID

	// WhoAmI validates the access token and returns the user ID.
	WhoAmI(ctx context.Context) (ref.UserID, error)

	// GetRoomMembers returns every member event of a room, any membership.
	GetRoomMembers(ctx context.Context, roomID ref.RoomID) ([]RoomMember, error)

	// GetRoomState returns all current state events of a room.
	GetRoomState(ctx context.Context, roomID ref.RoomID) ([]Event, error)

	// SendMessage sends an m.room.message and returns its event ID.
	SendMessage(ctx context.Context, roomID ref.RoomID, content any) (ref.EventID, error)

	// SendEvent sends a timeline event of any type.
	SendEvent(ctx context.Context, roomID ref.RoomID, eventType string, content any) (ref.EventID, error)

	// GetEvent fetches a single event. Missing or invisible events
	// return a *MatrixError with M_NOT_FOUND.
	GetEvent(ctx context.Context, roomID ref.RoomID, eventID ref.EventID) (*Event, error)

	// RedactEvent redacts an event and returns the redaction's event ID.
	RedactEvent(ctx context.Context, roomID ref.RoomID, eventID ref.EventID, reason string) (ref.EventID, error)
}

// DirectSession is an authenticated session talking straight to the
// homeserver. It owns its access token buffer.
type DirectSession struct {
	client      *Client
	accessToken *secret.Buffer
	userID      ref.UserID
}

var _ Session = (*DirectSession)(nil)

// UserID returns the session's user ID.
func (s *DirectSession) UserID() ref.UserID {
	return s.userID
}

// Close releases the access token memory. Idempotent.
func (s *DirectSession) Close() error {
	if s.accessToken != nil {
		return s.accessToken.Close()
	}
	return nil
}

// WhoAmI validates the access token and returns the user ID.
func (s *DirectSession) WhoAmI(ctx context.Context) (ref.UserID, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", s.accessToken, nil)
	if err != nil {
		return ref.UserID{}, fmt.Errorf("messaging: whoami failed: %w", err)
	}
	var response WhoAmIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.UserID{}, fmt.Errorf("messaging: parsing whoami response: %w", err)
	}
	return response.UserID, nil
}

// GetRoomMembers returns the members of a room.
func (s *DirectSession) GetRoomMembers(ctx context.Context, roomID ref.RoomID) ([]RoomMember, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/members", url.PathEscape(roomID.String()))
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get room members for %s failed: %w", roomID, err)
	}

	var response RoomMembersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: parsing room members response: %w", err)
	}

	members := make([]RoomMember, 0, len(response.Chunk))
	for _, event := range response.Chunk {
		userID, err := ref.ParseUserID(event.StateKey)
		if err != nil {
			s.client.logger.Warn("skipping member event with invalid state key",
				"room_id", roomID,
				"state_key", event.StateKey,
				"error", err,
			)
			continue
		}
		members = append(members, RoomMember{
			UserID:      userID,
			DisplayName: event.Content.DisplayName,
			Membership:  event.Content.Membership,
		})
	}
	return members, nil
}

// GetRoomState fetches all current state events from a room.
func (s *DirectSession) GetRoomState(ctx context.Context, roomID ref.RoomID) ([]Event, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state", url.PathEscape(roomID.String()))
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get room state for %s failed: %w", roomID, err)
	}

	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("messaging: parsing room state response: %w", err)
	}
	return events, nil
}

// SendMessage sends an m.room.message event.
func (s *DirectSession) SendMessage(ctx context.Context, roomID ref.RoomID, content any) (ref.EventID, error) {
	return s.SendEvent(ctx, roomID, EventTypeMessage, content)
}

// SendEvent sends a timeline event using the idempotent PUT form.
func (s *DirectSession) SendEvent(ctx context.Context, roomID ref.RoomID, eventType string, content any) (ref.EventID, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/%s/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventType),
		url.PathEscape(nextTransactionID()),
	)
	body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, content)
	if err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: send %s to %s failed: %w", eventType, roomID, err)
	}

	var response SendEventResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: parsing send response: %w", err)
	}
	if response.EventID.IsZero() {
		return ref.EventID{}, fmt.Errorf("messaging: send %s to %s: response has no event_id", eventType, roomID)
	}
	return response.EventID, nil
}

// GetEvent fetches a single event by ID.
func (s *DirectSession) GetEvent(ctx context.Context, roomID ref.RoomID, eventID ref.EventID) (*Event, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/event/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventID.String()),
	)
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get event %s in %s failed: %w", eventID, roomID, err)
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("messaging: parsing event response: %w", err)
	}
	return &event, nil
}

// RedactEvent redacts eventID in roomID.
func (s *DirectSession) RedactEvent(ctx context.Context, roomID ref.RoomID, eventID ref.EventID, reason string) (ref.EventID, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/redact/%s/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventID.String()),
		url.PathEscape(nextTransactionID()),
	)
	body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, RedactRequest{Reason: reason})
	if err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: redact %s in %s failed: %w", eventID, roomID, err)
	}

	var response SendEventResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: parsing redact response: %w", err)
	}
	return response.EventID, nil
}

// nextTransactionID returns an ID unique across restarts, so a retried
// PUT after a crash is never deduplicated against an older send.
func nextTransactionID() string {
	return "rolecall-" + uuid.NewString()
}
