// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomhost

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/rolecall/lib/configstore"
	"github.com/bureau-foundation/rolecall/lib/lifecycle"
	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/rolecard"
	"github.com/bureau-foundation/rolecall/lib/roster"
	"github.com/bureau-foundation/rolecall/messaging"
)

const boardRoom = "!board:bureau.local"

func testDocument(title string) rolecard.Document {
	snapshot := roster.Build(roster.Roster{
		Roles: []roster.Role{{ID: "lead", Name: "Lead", Rank: 2}},
		Members: []roster.Member{
			{UserID: ref.MustParseUserID("@ada:bureau.local"), Handle: "ada", RoleIDs: []string{"lead"}},
		},
		FetchedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, []string{"lead"})
	return rolecard.Render(snapshot, title)
}

// decodeBoard parses a posted message into its standard fields and
// structured board copy.
func decodeBoard(t *testing.T, raw json.RawMessage) boardMessage {
	t.Helper()
	var message boardMessage
	if err := json.Unmarshal(raw, &message); err != nil {
		t.Fatalf("decoding board message: %v", err)
	}
	return message
}

func createBoard(t *testing.T, host *Host) configstore.Pointer {
	t.Helper()
	roomID := ref.MustParseRoomID(boardRoom)
	eventID, err := host.Create(context.Background(), roomID, testDocument("Roles"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return configstore.Pointer{RoomID: roomID, EventID: eventID}
}

func TestCreatePostsNotice(t *testing.T) {
	server := newFakeHomeserver()
	host := NewHost(server.session(t), nil)

	pointer := createBoard(t, host)

	message := decodeBoard(t, server.content(pointer.EventID.String()))
	if message.MsgType != messaging.MsgTypeNotice {
		t.Errorf("msgtype = %q, want %q", message.MsgType, messaging.MsgTypeNotice)
	}
	if !strings.HasPrefix(message.Body, "## Roles") {
		t.Errorf("body does not start with the title heading: %q", message.Body)
	}
	if message.Format != messaging.FormatHTML || message.FormattedBody == "" {
		t.Errorf("missing HTML body: format=%q formatted_body=%q", message.Format, message.FormattedBody)
	}
	if message.RoleBoard == nil {
		t.Fatal("missing structured board")
	}
	if message.RoleBoard.Title != "Roles" || len(message.RoleBoard.Sections) != 1 {
		t.Errorf("structured board = %+v", message.RoleBoard)
	}
	if got := message.RoleBoard.Sections[0].Name; got != "Lead (1 members)" {
		t.Errorf("section name = %q", got)
	}
}

func TestFetch(t *testing.T) {
	server := newFakeHomeserver()
	host := NewHost(server.session(t), nil)
	pointer := createBoard(t, host)

	if err := host.Fetch(context.Background(), pointer); err != nil {
		t.Fatalf("Fetch live board: %v", err)
	}

	server.redact(pointer.EventID.String())
	if err := host.Fetch(context.Background(), pointer); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("Fetch redacted board = %v, want ErrNotFound", err)
	}

	unknown := configstore.Pointer{RoomID: pointer.RoomID, EventID: ref.MustParseEventID("$missing")}
	if err := host.Fetch(context.Background(), unknown); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("Fetch unknown board = %v, want ErrNotFound", err)
	}
}

func TestForbiddenMapsToErrForbidden(t *testing.T) {
	server := newFakeHomeserver()
	host := NewHost(server.session(t), nil)
	pointer := createBoard(t, host)
	server.setForbidden(boardRoom)

	err := host.Fetch(context.Background(), pointer)
	if !errors.Is(err, lifecycle.ErrForbidden) {
		t.Fatalf("Fetch = %v, want ErrForbidden", err)
	}
	if !messaging.IsMatrixError(err, messaging.ErrCodeForbidden) {
		t.Error("underlying MatrixError not preserved")
	}
	if lifecycle.Classify(err) != lifecycle.OutcomeForbidden {
		t.Errorf("Classify = %s, want forbidden", lifecycle.Classify(err))
	}
}

func TestEditSendsReplacement(t *testing.T) {
	server := newFakeHomeserver()
	host := NewHost(server.session(t), nil)
	pointer := createBoard(t, host)

	if err := host.Edit(context.Background(), pointer, testDocument("Renamed")); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	edits := server.editsOf(pointer.EventID.String())
	if len(edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(edits))
	}
	var replacement struct {
		Body       string              `json:"body"`
		RelatesTo  messaging.RelatesTo `json:"m.relates_to"`
		NewContent json.RawMessage     `json:"m.new_content"`
	}
	if err := json.Unmarshal(edits[0], &replacement); err != nil {
		t.Fatalf("decoding edit: %v", err)
	}
	if replacement.RelatesTo.RelType != messaging.RelTypeReplace || replacement.RelatesTo.EventID != pointer.EventID {
		t.Errorf("relation = %+v", replacement.RelatesTo)
	}
	if !strings.HasPrefix(replacement.Body, "* ## Renamed") {
		t.Errorf("fallback body = %q", replacement.Body)
	}
	newContent := decodeBoard(t, replacement.NewContent)
	if !strings.HasPrefix(newContent.Body, "## Renamed") {
		t.Errorf("new body = %q", newContent.Body)
	}
	if newContent.RoleBoard == nil || newContent.RoleBoard.Title != "Renamed" {
		t.Errorf("new structured board = %+v", newContent.RoleBoard)
	}
	if newContent.RelatesTo != nil {
		t.Error("m.new_content must not carry a relation")
	}
}

func TestEditRedactedBoardIsNotFound(t *testing.T) {
	server := newFakeHomeserver()
	host := NewHost(server.session(t), nil)
	pointer := createBoard(t, host)
	server.redact(pointer.EventID.String())

	err := host.Edit(context.Background(), pointer, testDocument("Roles"))
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("Edit = %v, want ErrNotFound", err)
	}
	if edits := server.editsOf(pointer.EventID.String()); len(edits) != 0 {
		t.Errorf("edits sent to a redacted board: %d", len(edits))
	}
}

func TestDelete(t *testing.T) {
	server := newFakeHomeserver()
	host := NewHost(server.session(t), nil)
	pointer := createBoard(t, host)

	if err := host.Delete(context.Background(), pointer); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !server.isRedacted(pointer.EventID.String()) {
		t.Error("board not redacted")
	}

	unknown := configstore.Pointer{RoomID: pointer.RoomID, EventID: ref.MustParseEventID("$missing")}
	if err := host.Delete(context.Background(), unknown); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("Delete unknown = %v, want ErrNotFound", err)
	}
}

func TestManagerOverMatrix(t *testing.T) {
	ctx := context.Background()
	server := newFakeHomeserver()
	host := NewHost(server.session(t), nil)

	store := configstore.NewMemoryStore()
	settings, err := configstore.Load(ctx, store)
	if err != nil {
		t.Fatalf("configstore.Load: %v", err)
	}
	manager, err := lifecycle.NewManager(lifecycle.Config{Host: host, Settings: settings})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	first, err := manager.Place(ctx, ref.MustParseRoomID(boardRoom), testDocument("Roles"))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	second, err := manager.Place(ctx, ref.MustParseRoomID(boardRoom), testDocument("Roles"))
	if err != nil {
		t.Fatalf("second Place: %v", err)
	}
	if !server.isRedacted(first.EventID.String()) {
		t.Error("first board not redacted by the second placement")
	}
	if err := manager.Push(ctx, testDocument("Roles")); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(server.editsOf(second.EventID.String())) != 1 {
		t.Error("Push did not edit the current board")
	}

	// The cached handle hides the redaction until the next edit fetches.
	server.redact(second.EventID.String())
	if err := manager.Push(ctx, testDocument("Roles")); !errors.Is(err, lifecycle.ErrLost) {
		t.Fatalf("Push after redaction = %v, want ErrLost", err)
	}
	if edits := len(server.editsOf(second.EventID.String())); edits != 1 {
		t.Errorf("edits of redacted board = %d, want 1 (no replacement after redaction)", edits)
	}
	if pointer := settings.Current().Pointer; pointer != nil {
		t.Errorf("pointer = %+v, want cleared", pointer)
	}
}
