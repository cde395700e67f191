// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/rolecall/lib/clock"
	"github.com/bureau-foundation/rolecall/lib/configstore"
	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/rolecard"
)

// DefaultCallTimeout bounds each host call.
const DefaultCallTimeout = 30 * time.Second

// Host is where the board lives. Errors wrap ErrNotFound or
// ErrForbidden when the host says so definitively.
type Host interface {
	Create(ctx context.Context, roomID ref.RoomID, document rolecard.Document) (ref.EventID, error)
	Fetch(ctx context.Context, pointer configstore.Pointer) error
	Edit(ctx context.Context, pointer configstore.Pointer, document rolecard.Document) error
	Delete(ctx context.Context, pointer configstore.Pointer) error
}

// Handle is the cached reference to a board known to be live.
type Handle struct {
	Pointer     configstore.Pointer
	ConfirmedAt time.Time
}

// Config holds a Manager's collaborators.
type Config struct {
	Host     Host
	Settings *configstore.Settings

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// CallTimeout defaults to DefaultCallTimeout.
	CallTimeout time.Duration

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Manager mediates every host operation on the board.
type Manager struct {
	host        Host
	settings    *configstore.Settings
	clock       clock.Clock
	callTimeout time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	handle *Handle
}

// NewManager validates config and returns a Manager with an empty
// handle cache.
func NewManager(config Config) (*Manager, error) {
	if config.Host == nil {
		return nil, errors.New("lifecycle: Host is required")
	}
	if config.Settings == nil {
		return nil, errors.New("lifecycle: Settings is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = DefaultCallTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		host:        config.Host,
		settings:    config.Settings,
		clock:       config.Clock,
		callTimeout: config.CallTimeout,
		logger:      config.Logger,
	}, nil
}

// CachedHandle returns the cached handle, if any.
func (m *Manager) CachedHandle() (Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return Handle{}, false
	}
	return *m.handle, true
}

func (m *Manager) setHandle(handle *Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handle = handle
}

// Place replaces whatever board is bound with a new one in roomID. The
// old board is deleted on a best-effort basis: a confirmed deletion (or
// one the host reports as already gone) clears the old pointer, while a
// failed deletion is logged and the old pointer stays until the new
// board is created and recorded.
func (m *Manager) Place(ctx context.Context, roomID ref.RoomID, document rolecard.Document) (configstore.Pointer, error) {
	m.setHandle(nil)

	if previous := m.settings.Current().Pointer; previous != nil {
		err := m.call(ctx, func(ctx context.Context) error {
			return m.host.Delete(ctx, *previous)
		})
		switch {
		case err == nil || errors.Is(err, ErrNotFound):
			if clearErr := m.clearPointer(ctx, *previous); clearErr != nil {
				return configstore.Pointer{}, clearErr
			}
			m.logger.Info("removed previous board",
				"room_id", previous.RoomID,
				"event_id", previous.EventID,
			)
		default:
			m.logger.Warn("could not remove previous board",
				"room_id", previous.RoomID,
				"event_id", previous.EventID,
				"error", err,
			)
		}
	}

	var eventID ref.EventID
	err := m.call(ctx, func(ctx context.Context) error {
		var createErr error
		eventID, createErr = m.host.Create(ctx, roomID, document)
		return createErr
	})
	if err != nil {
		return configstore.Pointer{}, fmt.Errorf("lifecycle: creating board in %s: %w", roomID, err)
	}

	pointer := configstore.Pointer{RoomID: roomID, EventID: eventID}
	_, err = m.settings.Update(ctx, func(config *configstore.Config) error {
		config.Pointer = &pointer
		return nil
	})
	if err != nil {
		// An unrecorded board would never be updated or cleaned up.
		deleteErr := m.call(context.WithoutCancel(ctx), func(ctx context.Context) error {
			return m.host.Delete(ctx, pointer)
		})
		if deleteErr != nil {
			m.logger.Error("orphaned board after failed save",
				"room_id", roomID,
				"event_id", eventID,
				"error", deleteErr,
			)
		}
		return configstore.Pointer{}, fmt.Errorf("lifecycle: recording board %s: %w", eventID, err)
	}

	m.setHandle(&Handle{Pointer: pointer, ConfirmedAt: m.clock.Now()})
	m.logger.Info("placed board", "room_id", roomID, "event_id", eventID)
	return pointer, nil
}

// EnsureLive returns a handle to the live board: the cached one if
// present, otherwise the persisted pointer after one successful fetch.
func (m *Manager) EnsureLive(ctx context.Context) (Handle, error) {
	pointer := m.settings.Current().Pointer
	if pointer == nil {
		m.setHandle(nil)
		return Handle{}, ErrUnbound
	}
	if handle, ok := m.CachedHandle(); ok && handle.Pointer == *pointer {
		return handle, nil
	}

	err := m.call(ctx, func(ctx context.Context) error {
		return m.host.Fetch(ctx, *pointer)
	})
	if err != nil {
		return Handle{}, m.failed(ctx, *pointer, "fetch", err)
	}

	handle := Handle{Pointer: *pointer, ConfirmedAt: m.clock.Now()}
	m.setHandle(&handle)
	return handle, nil
}

// Push writes document into the live board.
func (m *Manager) Push(ctx context.Context, document rolecard.Document) error {
	handle, err := m.EnsureLive(ctx)
	if err != nil {
		return err
	}

	err = m.call(ctx, func(ctx context.Context) error {
		return m.host.Edit(ctx, handle.Pointer, document)
	})
	if err != nil {
		return m.failed(ctx, handle.Pointer, "edit", err)
	}

	handle.ConfirmedAt = m.clock.Now()
	m.setHandle(&handle)
	return nil
}

// failed classifies a host error for pointer and applies its state
// change.
func (m *Manager) failed(ctx context.Context, pointer configstore.Pointer, operation string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		m.setHandle(nil)
		if clearErr := m.clearPointer(ctx, pointer); clearErr != nil {
			return fmt.Errorf("lifecycle: board %s is gone: %w", pointer.EventID, clearErr)
		}
		m.logger.Warn("board lost, pointer cleared",
			"room_id", pointer.RoomID,
			"event_id", pointer.EventID,
			"operation", operation,
		)
		return fmt.Errorf("lifecycle: %s %s: %w", operation, pointer.EventID, ErrLost)
	case errors.Is(err, ErrForbidden):
		m.setHandle(nil)
		return fmt.Errorf("lifecycle: %s %s: %w", operation, pointer.EventID, err)
	default:
		return fmt.Errorf("lifecycle: %s %s: %w", operation, pointer.EventID, err)
	}
}

// clearPointer removes pointer from the persisted config, unless the
// config has since moved on to a different board.
func (m *Manager) clearPointer(ctx context.Context, pointer configstore.Pointer) error {
	_, err := m.settings.Update(ctx, func(config *configstore.Config) error {
		if config.Pointer == nil || *config.Pointer != pointer {
			return configstore.ErrNoChange
		}
		config.Pointer = nil
		return nil
	})
	if err != nil && !errors.Is(err, configstore.ErrNoChange) {
		return fmt.Errorf("clearing pointer: %w", err)
	}
	return nil
}

// call runs one host operation under the per-call timeout.
func (m *Manager) call(ctx context.Context, operation func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()
	return operation(callCtx)
}
