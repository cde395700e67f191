// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/bureau-foundation/rolecall/lib/configstore"
	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/rolecard"
)

// Host operation names, for MemoryHost failure injection and counters.
const (
	OpCreate = "create"
	OpFetch  = "fetch"
	OpEdit   = "edit"
	OpDelete = "delete"
)

// MemoryHost is an in-memory Host for tests and dry runs. Boards are
// numbered $board-1, $board-2, ... in creation order.
type MemoryHost struct {
	mu         sync.Mutex
	boards     map[configstore.Pointer]rolecard.Document
	created    int
	failures   map[string][]error
	calls      map[string]int
	editing    int
	maxEditing int
	editGate   chan struct{}

	// EditStarted, if non-nil, receives a value whenever an Edit begins.
	EditStarted chan struct{}
}

// NewMemoryHost returns an empty MemoryHost.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		boards:   make(map[configstore.Pointer]rolecard.Document),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

// FailNext queues err as the result of the next call to operation.
// Queued errors are consumed in order.
func (h *MemoryHost) FailNext(operation string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[operation] = append(h.failures[operation], err)
}

// Remove deletes a board out of band, as a room moderator might.
func (h *MemoryHost) Remove(pointer configstore.Pointer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.boards, pointer)
}

// Document returns the current content of a board.
func (h *MemoryHost) Document(pointer configstore.Pointer) (rolecard.Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	document, ok := h.boards[pointer]
	return document, ok
}

// Boards returns the number of live boards.
func (h *MemoryHost) Boards() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.boards)
}

// Calls returns how many times operation has been invoked.
func (h *MemoryHost) Calls(operation string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[operation]
}

// MaxConcurrentEdits returns the most Edit calls ever in flight at once.
func (h *MemoryHost) MaxConcurrentEdits() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEditing
}

// HoldEdits makes every later Edit block until release is called or
// its context ends.
func (h *MemoryHost) HoldEdits() (release func()) {
	gate := make(chan struct{})
	h.mu.Lock()
	h.editGate = gate
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.editGate = nil
			h.mu.Unlock()
			close(gate)
		})
	}
}

// begin records a call and pops any queued failure.
func (h *MemoryHost) begin(operation string) error {
	h.calls[operation]++
	queue := h.failures[operation]
	if len(queue) == 0 {
		return nil
	}
	h.failures[operation] = queue[1:]
	return queue[0]
}

// Create implements Host.
func (h *MemoryHost) Create(ctx context.Context, roomID ref.RoomID, document rolecard.Document) (ref.EventID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.begin(OpCreate); err != nil {
		return ref.EventID{}, err
	}
	h.created++
	eventID := ref.MustParseEventID(fmt.Sprintf("$board-%d", h.created))
	h.boards[configstore.Pointer{RoomID: roomID, EventID: eventID}] = document
	return eventID, nil
}

// Fetch implements Host.
func (h *MemoryHost) Fetch(ctx context.Context, pointer configstore.Pointer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.begin(OpFetch); err != nil {
		return err
	}
	if _, ok := h.boards[pointer]; !ok {
		return fmt.Errorf("fetch %s: %w", pointer.EventID, ErrNotFound)
	}
	return nil
}

// Edit implements Host.
func (h *MemoryHost) Edit(ctx context.Context, pointer configstore.Pointer, document rolecard.Document) error {
	h.mu.Lock()
	h.editing++
	if h.editing > h.maxEditing {
		h.maxEditing = h.editing
	}
	gate := h.editGate
	started := h.EditStarted
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.editing--
		h.mu.Unlock()
	}()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.begin(OpEdit); err != nil {
		return err
	}
	if _, ok := h.boards[pointer]; !ok {
		return fmt.Errorf("edit %s: %w", pointer.EventID, ErrNotFound)
	}
	h.boards[pointer] = document
	return nil
}

// Delete implements Host.
func (h *MemoryHost) Delete(ctx context.Context, pointer configstore.Pointer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.begin(OpDelete); err != nil {
		return err
	}
	if _, ok := h.boards[pointer]; !ok {
		return fmt.Errorf("delete %s: %w", pointer.EventID, ErrNotFound)
	}
	delete(h.boards, pointer)
	return nil
}
