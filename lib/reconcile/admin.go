// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bureau-foundation/rolecall/lib/configstore"
	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/rolecard"
)

// Administrative errors.
var (
	// ErrNotPlaced rejects a manual update while no board is placed.
	ErrNotPlaced = errors.New("no board placed; place one first")

	// ErrInvalidInput rejects malformed administrative arguments.
	ErrInvalidInput = errors.New("invalid input")
)

// AdminResult reports the effect of a config-changing operation.
type AdminResult struct {
	// Changed is false when the request was a no-op.
	Changed bool   `json:"changed"`
	Message string `json:"message"`

	// Pass is the pass triggered by the change, if any.
	Pass *PassResult `json:"pass,omitempty"`
}

// TrackedRole is one entry of ListTrackedRoles.
type TrackedRole struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// TrackedRoles is the result of ListTrackedRoles.
type TrackedRoles struct {
	// Dynamic is true when nothing is tracked and the board shows every
	// role with members.
	Dynamic bool          `json:"dynamic"`
	Roles   []TrackedRole `json:"roles"`
}

// Status is a point-in-time view of the reconciler.
type Status struct {
	Title        string               `json:"title"`
	TrackedRoles []string             `json:"tracked_roles"`
	Pointer      *configstore.Pointer `json:"pointer,omitempty"`
	ConfirmedAt  *time.Time           `json:"confirmed_at,omitempty"`
	Interval     time.Duration        `json:"interval"`
	Passes       int                  `json:"passes"`
	LastPass     *PassResult          `json:"last_pass,omitempty"`
	PassRunning  bool                 `json:"pass_running"`
	StartedAt    time.Time            `json:"started_at"`
}

// Place creates the board in roomID, replacing any existing one. It
// waits for a running pass to finish rather than being coalesced.
func (r *Reconciler) Place(ctx context.Context, roomID ref.RoomID) (configstore.Pointer, error) {
	if roomID.IsZero() {
		return configstore.Pointer{}, fmt.Errorf("reconcile: room ID is required: %w", ErrInvalidInput)
	}
	if err := r.acquire(ctx); err != nil {
		return configstore.Pointer{}, fmt.Errorf("reconcile: waiting for running pass: %w", err)
	}
	defer r.unlock()
	defer r.updateBoundGauge()

	document, err := r.render(ctx)
	if err != nil {
		return configstore.Pointer{}, err
	}
	pointer, err := r.manager.Place(ctx, roomID, document)
	if err != nil {
		return configstore.Pointer{}, err
	}
	r.logger.Info("board placed by administrator", "room_id", pointer.RoomID, "event_id", pointer.EventID)
	return pointer, nil
}

// AddTrackedRole starts tracking roleID.
func (r *Reconciler) AddTrackedRole(ctx context.Context, roleID string) (AdminResult, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return AdminResult{}, fmt.Errorf("reconcile: role ID is required: %w", ErrInvalidInput)
	}
	return r.mutate(ctx,
		fmt.Sprintf("Now tracking role %s.", roleID),
		fmt.Sprintf("Role %s is already being tracked.", roleID),
		func(config *configstore.Config) bool {
			if config.Tracks(roleID) {
				return false
			}
			config.TrackedRoles = append(config.TrackedRoles, roleID)
			return true
		})
}

// RemoveTrackedRole stops tracking roleID.
func (r *Reconciler) RemoveTrackedRole(ctx context.Context, roleID string) (AdminResult, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return AdminResult{}, fmt.Errorf("reconcile: role ID is required: %w", ErrInvalidInput)
	}
	return r.mutate(ctx,
		fmt.Sprintf("Stopped tracking role %s.", roleID),
		fmt.Sprintf("Role %s is not being tracked.", roleID),
		func(config *configstore.Config) bool {
			index := slices.Index(config.TrackedRoles, roleID)
			if index < 0 {
				return false
			}
			config.TrackedRoles = slices.Delete(config.TrackedRoles, index, index+1)
			return true
		})
}

// SetTitle changes the board title.
func (r *Reconciler) SetTitle(ctx context.Context, title string) (AdminResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return AdminResult{}, fmt.Errorf("reconcile: title is required: %w", ErrInvalidInput)
	}
	return r.mutate(ctx,
		fmt.Sprintf("Title set to %q.", title),
		fmt.Sprintf("Title is already %q.", title),
		func(config *configstore.Config) bool {
			if config.Title == title {
				return false
			}
			config.Title = title
			return true
		})
}

// mutate persists a config change, then triggers a pass if a board is
// placed. apply reports whether it changed anything.
func (r *Reconciler) mutate(ctx context.Context, changed, unchanged string, apply func(*configstore.Config) bool) (AdminResult, error) {
	updated, err := r.settings.Update(ctx, func(config *configstore.Config) error {
		if !apply(config) {
			return configstore.ErrNoChange
		}
		return nil
	})
	if errors.Is(err, configstore.ErrNoChange) {
		return AdminResult{Message: unchanged}, nil
	}
	if err != nil {
		return AdminResult{}, fmt.Errorf("reconcile: saving config: %w", err)
	}

	result := AdminResult{Changed: true, Message: changed}
	if updated.Pointer != nil {
		pass := r.Trigger(ctx, TriggerConfig)
		result.Pass = &pass
	}
	return result, nil
}

// ListTrackedRoles returns the tracked role IDs with names resolved
// against the current roster.
func (r *Reconciler) ListTrackedRoles(ctx context.Context) (TrackedRoles, error) {
	config := r.settings.Current()
	result := TrackedRoles{
		Dynamic: len(config.TrackedRoles) == 0,
		Roles:   make([]TrackedRole, 0, len(config.TrackedRoles)),
	}
	if result.Dynamic {
		return result, nil
	}

	current, err := r.fetchRoster(ctx)
	if err != nil {
		return TrackedRoles{}, err
	}
	for _, roleID := range config.TrackedRoles {
		entry := TrackedRole{ID: roleID, Name: fmt.Sprintf("Unknown Role (ID: %s)", roleID)}
		if role, ok := current.RoleByID(roleID); ok {
			entry.Name = role.Name
			entry.Found = true
		}
		result.Roles = append(result.Roles, entry)
	}
	return result, nil
}

// TriggerManual runs a pass now. It fails with ErrNotPlaced when no
// board is placed; a pass already running coalesces it.
func (r *Reconciler) TriggerManual(ctx context.Context) (PassResult, error) {
	if r.settings.Current().Pointer == nil {
		return PassResult{}, fmt.Errorf("reconcile: %w", ErrNotPlaced)
	}
	return r.Trigger(ctx, TriggerManual), nil
}

// Preview renders the board from the current roster without touching
// the host.
func (r *Reconciler) Preview(ctx context.Context) (rolecard.Document, error) {
	return r.render(ctx)
}

// Status reports the reconciler's current state.
func (r *Reconciler) Status() Status {
	config := r.settings.Current()
	status := Status{
		Title:        config.Title,
		TrackedRoles: config.TrackedRoles,
		Pointer:      config.Pointer,
		Interval:     r.interval,
		PassRunning:  len(r.lock) > 0,
		StartedAt:    r.startedAt,
	}
	if handle, ok := r.manager.CachedHandle(); ok {
		confirmed := handle.ConfirmedAt
		status.ConfirmedAt = &confirmed
	}

	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	status.Passes = r.passes
	if r.lastPass != nil {
		last := *r.lastPass
		status.LastPass = &last
	}
	return status
}
