// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package configstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNoChange may be returned from an Update function to skip the save
// without reporting failure.
var ErrNoChange = errors.New("configstore: no change")

// Settings owns the current Config and serializes every
// read-modify-persist sequence against it.
type Settings struct {
	store Store

	mu      sync.Mutex
	current Config
}

// Load reads the stored config and returns Settings owning it.
func Load(ctx context.Context, store Store) (*Settings, error) {
	config, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Settings{store: store, current: config}, nil
}

// Current returns a deep copy of the current config.
func (s *Settings) Current() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Update applies mutate to a copy of the config, saves it, and commits
// it in memory. If mutate returns an error nothing is saved; ErrNoChange
// is passed through so callers can tell a no-op from a failure.
func (s *Settings) Update(ctx context.Context, mutate func(*Config) error) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	if err := mutate(&next); err != nil {
		return s.current.Clone(), err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return s.current.Clone(), err
	}
	s.current = next
	return next.Clone(), nil
}

// MemoryStore is a Store kept in memory, for tests and offline tools.
type MemoryStore struct {
	mu     sync.Mutex
	config Config
	saved  bool
	fail   error
}

// NewMemoryStore returns a MemoryStore holding Default().
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{config: Default()}
}

// Load returns the stored config.
func (m *MemoryStore) Load(ctx context.Context) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config.Clone(), nil
}

// Save stores a copy of config.
func (m *MemoryStore) Save(ctx context.Context, config Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.config = config.Clone()
	m.saved = true
	return nil
}

// Saved returns the last saved config and whether any save happened.
func (m *MemoryStore) Saved() (Config, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config.Clone(), m.saved
}

// FailSaves makes every later Save return err. A nil err restores
// normal behaviour.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}
