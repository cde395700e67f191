// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Config holds the parameters for opening a Pool.
type Config struct {
	// Path is the database file. Its parent directory must exist.
	Path string

	// PoolSize defaults to 2: one writer plus one reader is all a
	// single reconciler needs.
	PoolSize int

	// Schema statements run on every new connection after the pragmas.
	Schema []string

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Pool is a fixed-size pool of prepared SQLite connections. It is safe
// for concurrent use; individual connections are not.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

var standardPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

// Open creates the pool. Connections are prepared lazily on first use.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlitepool: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 2
	}

	schema := append([]string(nil), cfg.Schema...)
	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepare(conn, schema)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "pool_size", poolSize)
	return &Pool{inner: inner, logger: logger, path: cfg.Path}, nil
}

func prepare(conn *sqlite.Conn, schema []string) error {
	for _, statement := range standardPragmas {
		if err := sqlitex.ExecuteTransient(conn, statement, nil); err != nil {
			return fmt.Errorf("sqlitepool: %s: %w", statement, err)
		}
	}
	for _, statement := range schema {
		if err := sqlitex.ExecuteScript(conn, statement, nil); err != nil {
			return fmt.Errorf("sqlitepool: applying schema: %w", err)
		}
	}
	return nil
}

// take borrows a connection, blocking until one is free or ctx ends.
// Every successful take must be paired with put.
func (p *Pool) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// put returns a connection to the pool.
func (p *Pool) put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Read runs fn with a borrowed connection outside any transaction.
func (p *Pool) Read(ctx context.Context, fn func(*sqlite.Conn) error) error {
	conn, err := p.take(ctx)
	if err != nil {
		return err
	}
	defer p.put(conn)
	return fn(conn)
}

// Write runs fn inside an IMMEDIATE transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (p *Pool) Write(ctx context.Context, fn func(*sqlite.Conn) error) (err error) {
	conn, err := p.take(ctx)
	if err != nil {
		return err
	}
	defer p.put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("sqlitepool: begin: %w", err)
	}
	defer endTransaction(&err)
	return fn(conn)
}

// Close closes every connection, waiting for borrowed ones to return.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("sqlite pool close failed", "path", p.path, "error", err)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}
