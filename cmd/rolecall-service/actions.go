// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/rolecall/lib/codec"
	"github.com/bureau-foundation/rolecall/lib/reconcile"
	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/schema"
	"github.com/bureau-foundation/rolecall/lib/service"
)

// registerActions maps socket actions onto the reconciler's
// administrative operations.
func registerActions(server *service.SocketServer, reconciler *reconcile.Reconciler) {
	actions := &adminActions{reconciler: reconciler}
	server.Handle("status", actions.handleStatus)
	server.Handle("place", actions.handlePlace)
	server.Handle("add_role", actions.handleAddRole)
	server.Handle("remove_role", actions.handleRemoveRole)
	server.Handle("set_title", actions.handleSetTitle)
	server.Handle("list_roles", actions.handleListRoles)
	server.Handle("update_now", actions.handleUpdateNow)
	server.Handle("preview", actions.handlePreview)
}

type adminActions struct {
	reconciler *reconcile.Reconciler
}

type placeRequest struct {
	RoomID string `cbor:"room_id"`
}

type placeResponse struct {
	RoomID  ref.RoomID  `cbor:"room_id"`
	EventID ref.EventID `cbor:"event_id"`
}

type roleRequest struct {
	RoleID string `cbor:"role_id"`
}

type titleRequest struct {
	Title string `cbor:"title"`
}

type previewResponse struct {
	// Markdown is the board's plain body as it would be posted.
	Markdown string                  `cbor:"markdown"`
	Board    schema.RoleBoardContent `cbor:"board"`
}

func decodeRequest(raw []byte, request any) error {
	if err := codec.Unmarshal(raw, request); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func (a *adminActions) handleStatus(ctx context.Context, raw []byte) (any, error) {
	return a.reconciler.Status(), nil
}

func (a *adminActions) handlePlace(ctx context.Context, raw []byte) (any, error) {
	var request placeRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	roomID, err := ref.ParseRoomID(request.RoomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrInvalidInput, err)
	}
	pointer, err := a.reconciler.Place(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return placeResponse{RoomID: pointer.RoomID, EventID: pointer.EventID}, nil
}

func (a *adminActions) handleAddRole(ctx context.Context, raw []byte) (any, error) {
	var request roleRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	return a.reconciler.AddTrackedRole(ctx, request.RoleID)
}

func (a *adminActions) handleRemoveRole(ctx context.Context, raw []byte) (any, error) {
	var request roleRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	return a.reconciler.RemoveTrackedRole(ctx, request.RoleID)
}

func (a *adminActions) handleSetTitle(ctx context.Context, raw []byte) (any, error) {
	var request titleRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	return a.reconciler.SetTitle(ctx, request.Title)
}

func (a *adminActions) handleListRoles(ctx context.Context, raw []byte) (any, error) {
	return a.reconciler.ListTrackedRoles(ctx)
}

func (a *adminActions) handleUpdateNow(ctx context.Context, raw []byte) (any, error) {
	return a.reconciler.TriggerManual(ctx)
}

func (a *adminActions) handlePreview(ctx context.Context, raw []byte) (any, error) {
	document, err := a.reconciler.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return previewResponse{Markdown: document.Markdown(), Board: document.Board()}, nil
}
