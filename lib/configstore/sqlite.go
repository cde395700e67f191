// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package configstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/rolecall/lib/sqlitepool"
)

// Keys under which Config fields are stored.
const (
	KeyTrackedRoles    = "tracked_roles"
	KeyTitle           = "title"
	KeyArtifactPointer = "artifact_pointer"
)

// Schema creates the config table.
const Schema = `CREATE TABLE IF NOT EXISTS config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore is a Store backed by a sqlitepool.Pool opened with Schema.
type SQLiteStore struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Open opens (creating if needed) the config database at path.
func Open(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Schema: []string{Schema},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("configstore: %w", err)
	}
	return &SQLiteStore{pool: pool, logger: logger}, nil
}

// Close closes the underlying pool.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

// Load reads every stored key and merges it over Default. Unknown keys
// are ignored. A value that does not decode is an error rather than a
// silent fallback, since it would otherwise discard a placed pointer.
func (s *SQLiteStore) Load(ctx context.Context) (Config, error) {
	stored := make(map[string]string)
	err := s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT key, value FROM config", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stored[stmt.ColumnText(0)] = stmt.ColumnText(1)
				return nil
			},
		})
	})
	if err != nil {
		return Config{}, fmt.Errorf("configstore: loading: %w", err)
	}

	config := Default()
	for key, value := range stored {
		var target any
		switch key {
		case KeyTrackedRoles:
			target = &config.TrackedRoles
		case KeyTitle:
			target = &config.Title
		case KeyArtifactPointer:
			target = &config.Pointer
		default:
			s.logger.Debug("ignoring unknown config key", "key", key)
			continue
		}
		if err := json.Unmarshal([]byte(value), target); err != nil {
			return Config{}, fmt.Errorf("configstore: decoding %s: %w", key, err)
		}
	}
	if config.Pointer != nil && (config.Pointer.RoomID.IsZero() || config.Pointer.EventID.IsZero()) {
		return Config{}, fmt.Errorf("configstore: %s is incomplete", KeyArtifactPointer)
	}
	return config, nil
}

// Save upserts every key in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, config Config) error {
	trackedRoles := config.TrackedRoles
	if trackedRoles == nil {
		trackedRoles = []string{}
	}
	values := map[string]any{
		KeyTrackedRoles:    trackedRoles,
		KeyTitle:           config.Title,
		KeyArtifactPointer: config.Pointer,
	}

	encoded := make(map[string]string, len(values))
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("configstore: encoding %s: %w", key, err)
		}
		encoded[key] = string(data)
	}

	err := s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		for _, key := range []string{KeyTrackedRoles, KeyTitle, KeyArtifactPointer} {
			err := sqlitex.Execute(conn,
				`INSERT INTO config (key, value) VALUES (?, ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
				&sqlitex.ExecOptions{Args: []any{key, encoded[key]}})
			if err != nil {
				return fmt.Errorf("upserting %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("configstore: saving: %w", err)
	}
	return nil
}
