// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomhost

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/secret"
	"github.com/bureau-foundation/rolecall/messaging"
)

// fakeHomeserver is a minimal in-memory Matrix server covering the
// endpoints Host and RosterSource use.
type fakeHomeserver struct {
	mutex sync.Mutex

	nextEvent int
	events    map[string]*storedEvent
	edits     map[string][]json.RawMessage

	state   map[string][]map[string]any
	members map[string][]map[string]any

	// forbidden rooms answer every request with M_FORBIDDEN.
	forbidden map[string]bool
}

type storedEvent struct {
	room     string
	content  json.RawMessage
	redacted bool
}

func newFakeHomeserver() *fakeHomeserver {
	return &fakeHomeserver{
		events:    make(map[string]*storedEvent),
		edits:     make(map[string][]json.RawMessage),
		state:     make(map[string][]map[string]any),
		members:   make(map[string][]map[string]any),
		forbidden: make(map[string]bool),
	}
}

func (f *fakeHomeserver) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /_matrix/client/v3/rooms/{room}/send/{type}/{txn}", f.handleSend)
	mux.HandleFunc("GET /_matrix/client/v3/rooms/{room}/event/{event}", f.handleGetEvent)
	mux.HandleFunc("PUT /_matrix/client/v3/rooms/{room}/redact/{event}/{txn}", f.handleRedact)
	mux.HandleFunc("GET /_matrix/client/v3/rooms/{room}/state", f.handleState)
	mux.HandleFunc("GET /_matrix/client/v3/rooms/{room}/members", f.handleMembers)
	return mux
}

func (f *fakeHomeserver) session(t *testing.T) *messaging.DirectSession {
	t.Helper()
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	client, err := messaging.NewClient(messaging.ClientConfig{HomeserverURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	token, err := secret.NewFromBytes([]byte("test-token"))
	if err != nil {
		t.Fatalf("secret.NewFromBytes: %v", err)
	}
	session, err := client.SessionFromToken(ref.MustParseUserID("@rolecall:bureau.local"), token)
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func (f *fakeHomeserver) denied(writer http.ResponseWriter, room string) bool {
	if f.forbidden[room] {
		writeMatrixError(writer, http.StatusForbidden, messaging.ErrCodeForbidden, "not allowed")
		return true
	}
	return false
}

func (f *fakeHomeserver) handleSend(writer http.ResponseWriter, request *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	room := request.PathValue("room")
	if f.denied(writer, room) {
		return
	}
	var content json.RawMessage
	if err := json.NewDecoder(request.Body).Decode(&content); err != nil {
		writeMatrixError(writer, http.StatusBadRequest, messaging.ErrCodeBadJSON, err.Error())
		return
	}

	var relation struct {
		RelatesTo *messaging.RelatesTo `json:"m.relates_to"`
	}
	json.Unmarshal(content, &relation)
	if relation.RelatesTo != nil && relation.RelatesTo.RelType == messaging.RelTypeReplace {
		original := relation.RelatesTo.EventID.String()
		f.edits[original] = append(f.edits[original], content)
	}

	f.nextEvent++
	eventID := fmt.Sprintf("$event-%d", f.nextEvent)
	f.events[eventID] = &storedEvent{room: room, content: content}
	writeJSON(writer, map[string]string{"event_id": eventID})
}

func (f *fakeHomeserver) handleGetEvent(writer http.ResponseWriter, request *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	room := request.PathValue("room")
	if f.denied(writer, room) {
		return
	}
	eventID := request.PathValue("event")
	stored, ok := f.events[eventID]
	if !ok || stored.room != room {
		writeMatrixError(writer, http.StatusNotFound, messaging.ErrCodeNotFound, "event not found")
		return
	}
	event := map[string]any{
		"event_id": eventID,
		"type":     messaging.EventTypeMessage,
		"sender":   "@rolecall:bureau.local",
		"room_id":  room,
		"content":  stored.content,
	}
	if stored.redacted {
		event["content"] = map[string]any{}
		event["unsigned"] = map[string]any{"redacted_because": map[string]any{"type": "m.room.redaction"}}
	}
	writeJSON(writer, event)
}

func (f *fakeHomeserver) handleRedact(writer http.ResponseWriter, request *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	room := request.PathValue("room")
	if f.denied(writer, room) {
		return
	}
	stored, ok := f.events[request.PathValue("event")]
	if !ok || stored.room != room {
		writeMatrixError(writer, http.StatusNotFound, messaging.ErrCodeNotFound, "event not found")
		return
	}
	stored.redacted = true
	f.nextEvent++
	writeJSON(writer, map[string]string{"event_id": fmt.Sprintf("$redaction-%d", f.nextEvent)})
}

func (f *fakeHomeserver) handleState(writer http.ResponseWriter, request *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	room := request.PathValue("room")
	if f.denied(writer, room) {
		return
	}
	state := f.state[room]
	if state == nil {
		state = []map[string]any{}
	}
	writeJSON(writer, state)
}

func (f *fakeHomeserver) handleMembers(writer http.ResponseWriter, request *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	room := request.PathValue("room")
	if f.denied(writer, room) {
		return
	}
	writeJSON(writer, map[string]any{"chunk": f.members[room]})
}

func (f *fakeHomeserver) addRole(room, roleID string, content map[string]any) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.state[room] = append(f.state[room], map[string]any{
		"type":      "m.bureau.role",
		"state_key": roleID,
		"sender":    "@admin:bureau.local",
		"event_id":  "$role-" + roleID,
		"content":   content,
	})
}

func (f *fakeHomeserver) addMember(room, userID, displayName, membership string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	content := map[string]any{"membership": membership}
	if displayName != "" {
		content["displayname"] = displayName
	}
	f.members[room] = append(f.members[room], map[string]any{
		"type":      messaging.EventTypeMember,
		"state_key": userID,
		"sender":    userID,
		"content":   content,
	})
}

func (f *fakeHomeserver) setForbidden(room string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.forbidden[room] = true
}

func (f *fakeHomeserver) redact(eventID string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.events[eventID].redacted = true
}

func (f *fakeHomeserver) isRedacted(eventID string) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	stored, ok := f.events[eventID]
	return ok && stored.redacted
}

func (f *fakeHomeserver) content(eventID string) json.RawMessage {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.events[eventID].content
}

func (f *fakeHomeserver) editsOf(eventID string) []json.RawMessage {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]json.RawMessage(nil), f.edits[eventID]...)
}

func writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(value)
}

func writeMatrixError(writer http.ResponseWriter, status int, code, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(map[string]string{"errcode": code, "error": message})
}
