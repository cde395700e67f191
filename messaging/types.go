// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"strings"

	"github.com/bureau-foundation/rolecall/lib/ref"
)

// Message types, formats and relation types used by rolecall.
const (
	EventTypeMessage = "m.room.message"
	EventTypeMember  = "m.room.member"

	MsgTypeText   = "m.text"
	MsgTypeNotice = "m.notice"

	FormatHTML = "org.matrix.custom.html"

	RelTypeReplace = "m.replace"

	MembershipJoin = "join"
)

// MessageContent is the content of an m.room.message event.
type MessageContent struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`

	// NewContent is set on edits and carries the replacement content.
	// It is typed any so that callers can attach extra keys to the
	// replacement alongside the standard message fields.
	NewContent any `json:"m.new_content,omitempty"`

	RelatesTo *RelatesTo `json:"m.relates_to,omitempty"`
}

// RelatesTo expresses a relationship to another event.
type RelatesTo struct {
	RelType string      `json:"rel_type"`
	EventID ref.EventID `json:"event_id"`
}

// NewNotice returns an m.notice with a plain body and an HTML body.
// An empty html leaves the message plain.
func NewNotice(body, html string) MessageContent {
	content := MessageContent{MsgType: MsgTypeNotice, Body: body}
	if html != "" {
		content.Format = FormatHTML
		content.FormattedBody = html
	}
	return content
}

// NewReplacement builds an edit of original. Clients that understand
// edits show content; older clients show the "* "-prefixed fallback.
func NewReplacement(original ref.EventID, content MessageContent) MessageContent {
	replacement := MessageContent{
		MsgType:    content.MsgType,
		Body:       "* " + content.Body,
		NewContent: content,
		RelatesTo:  &RelatesTo{RelType: RelTypeReplace, EventID: original},
	}
	if content.FormattedBody != "" {
		replacement.Format = content.Format
		replacement.FormattedBody = "* " + content.FormattedBody
	}
	return replacement
}

// Event is a Matrix event as returned by the server.
type Event struct {
	EventID        ref.EventID     `json:"event_id"`
	Type           string          `json:"type"`
	Sender         ref.UserID      `json:"sender"`
	OriginServerTS int64           `json:"origin_server_ts"`
	Content        json.RawMessage `json:"content"`
	RoomID         ref.RoomID      `json:"room_id,omitempty"`
	StateKey       *string         `json:"state_key,omitempty"`
	Unsigned       *EventUnsigned  `json:"unsigned,omitempty"`
}

// EventUnsigned holds server-attached data.
type EventUnsigned struct {
	Age             int64           `json:"age,omitempty"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	RedactedBecause json.RawMessage `json:"redacted_because,omitempty"`
}

// Redacted reports whether the server has stripped the event. Servers
// mark this with unsigned.redacted_because; an m.room.message whose
// content was emptied is treated the same way.
func (e Event) Redacted() bool {
	if e.Unsigned != nil && len(e.Unsigned.RedactedBecause) > 0 {
		return true
	}
	if e.Type == EventTypeMessage {
		switch strings.Join(strings.Fields(string(e.Content)), "") {
		case "", "{}", "null":
			return true
		}
	}
	return false
}

// SendEventResponse is returned by SendMessage, SendEvent and RedactEvent.
type SendEventResponse struct {
	EventID ref.EventID `json:"event_id"`
}

// WhoAmIResponse is returned by WhoAmI.
type WhoAmIResponse struct {
	UserID   ref.UserID `json:"user_id"`
	DeviceID string     `json:"device_id,omitempty"`
}

// RoomMember is a member of a room as seen by rolecall.
type RoomMember struct {
	UserID      ref.UserID `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Membership  string     `json:"membership"`
}

// RoomMembersResponse is returned by the /members endpoint.
type RoomMembersResponse struct {
	Chunk []RoomMemberEvent `json:"chunk"`
}

// RoomMemberEvent is an m.room.member state event.
type RoomMemberEvent struct {
	Type     string            `json:"type"`
	StateKey string            `json:"state_key"`
	Sender   ref.UserID        `json:"sender"`
	Content  RoomMemberContent `json:"content"`
}

// RoomMemberContent is the content of an m.room.member state event.
type RoomMemberContent struct {
	Membership  string `json:"membership"`
	DisplayName string `json:"displayname,omitempty"`
}

// RedactRequest is the body of a redaction.
type RedactRequest struct {
	Reason string `json:"reason,omitempty"`
}
