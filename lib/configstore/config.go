// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package configstore

import (
	"context"
	"slices"

	"github.com/bureau-foundation/rolecall/lib/ref"
)

// DefaultTitle is the board title until an administrator sets one.
const DefaultTitle = "Role Member Tracker"

// Pointer locates the managed board message.
type Pointer struct {
	RoomID  ref.RoomID  `json:"room_id"`
	EventID ref.EventID `json:"event_id"`
}

// Config is the reconciler's persisted state.
type Config struct {
	// TrackedRoles are role IDs in insertion order. Empty means every
	// role with members.
	TrackedRoles []string

	Title string

	// Pointer is nil when no board is placed.
	Pointer *Pointer
}

// Default returns the config used before anything is saved.
func Default() Config {
	return Config{Title: DefaultTitle}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	clone := Config{
		TrackedRoles: slices.Clone(c.TrackedRoles),
		Title:        c.Title,
	}
	if c.Pointer != nil {
		pointer := *c.Pointer
		clone.Pointer = &pointer
	}
	return clone
}

// Tracks reports whether roleID is in TrackedRoles.
func (c Config) Tracks(roleID string) bool {
	return slices.Contains(c.TrackedRoles, roleID)
}

// Store loads and saves a whole Config.
type Store interface {
	Load(ctx context.Context) (Config, error)
	Save(ctx context.Context, config Config) error
}
