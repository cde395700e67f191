// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomhost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/rolecall/lib/configstore"
	"github.com/bureau-foundation/rolecall/lib/lifecycle"
	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/rolecard"
	"github.com/bureau-foundation/rolecall/lib/schema"
	"github.com/bureau-foundation/rolecall/messaging"
)

// redactReason accompanies redactions of replaced boards.
const redactReason = "role board replaced"

// boardMessage is a board's message content: the standard message
// fields plus the structured copy.
type boardMessage struct {
	messaging.MessageContent
	RoleBoard *schema.RoleBoardContent `json:"m.bureau.role_board,omitempty"`
}

// Host is a lifecycle.Host backed by a Matrix session.
type Host struct {
	session messaging.Session
	logger  *slog.Logger
}

var _ lifecycle.Host = (*Host)(nil)

// NewHost returns a Host posting as session's user.
func NewHost(session messaging.Session, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Host{session: session, logger: logger}
}

func newBoardMessage(document rolecard.Document) (boardMessage, error) {
	html, err := document.HTML()
	if err != nil {
		return boardMessage{}, err
	}
	board := document.Board()
	return boardMessage{
		MessageContent: messaging.NewNotice(document.Markdown(), html),
		RoleBoard:      &board,
	}, nil
}

// Create posts a new board in roomID.
func (h *Host) Create(ctx context.Context, roomID ref.RoomID, document rolecard.Document) (ref.EventID, error) {
	message, err := newBoardMessage(document)
	if err != nil {
		return ref.EventID{}, err
	}
	eventID, err := h.session.SendMessage(ctx, roomID, message)
	if err != nil {
		return ref.EventID{}, classify(err)
	}
	return eventID, nil
}

// Fetch confirms the board exists and has not been redacted.
func (h *Host) Fetch(ctx context.Context, pointer configstore.Pointer) error {
	event, err := h.session.GetEvent(ctx, pointer.RoomID, pointer.EventID)
	if err != nil {
		return classify(err)
	}
	if event.Redacted() {
		return fmt.Errorf("roomhost: board %s was redacted: %w", pointer.EventID, lifecycle.ErrNotFound)
	}
	return nil
}

// Edit replaces the board's content. Homeservers accept edits to
// redacted events, so the board is fetched first.
func (h *Host) Edit(ctx context.Context, pointer configstore.Pointer, document rolecard.Document) error {
	if err := h.Fetch(ctx, pointer); err != nil {
		return err
	}

	message, err := newBoardMessage(document)
	if err != nil {
		return err
	}
	replacement := boardMessage{
		MessageContent: messaging.NewReplacement(pointer.EventID, message.MessageContent),
		RoleBoard:      message.RoleBoard,
	}
	replacement.NewContent = message

	if _, err := h.session.SendMessage(ctx, pointer.RoomID, replacement); err != nil {
		return classify(err)
	}
	return nil
}

// Delete redacts the board.
func (h *Host) Delete(ctx context.Context, pointer configstore.Pointer) error {
	if _, err := h.session.RedactEvent(ctx, pointer.RoomID, pointer.EventID, redactReason); err != nil {
		return classify(err)
	}
	return nil
}

// classify wraps Matrix errors in the lifecycle sentinels.
func classify(err error) error {
	var matrixErr *messaging.MatrixError
	if !errors.As(err, &matrixErr) {
		return err
	}
	switch matrixErr.Code {
	case messaging.ErrCodeNotFound:
		return fmt.Errorf("%w: %w", lifecycle.ErrNotFound, err)
	case messaging.ErrCodeForbidden:
		return fmt.Errorf("%w: %w", lifecycle.ErrForbidden, err)
	default:
		return err
	}
}
