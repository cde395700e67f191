// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/rolecall/lib/sqlitepool"
)

const testSchema = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`

func openTestPool(t *testing.T) *sqlitepool.Pool {
	t.Helper()
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   filepath.Join(t.TempDir(), "test.db"),
		Schema: []string{testSchema},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return pool
}

func countRows(t *testing.T, pool *sqlitepool.Pool) int {
	t.Helper()
	var count int
	err := pool.Read(context.Background(), func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT COUNT(*) FROM kv", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				count = stmt.ColumnInt(0)
				return nil
			},
		})
	})
	if err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	return count
}

func TestPragmasApplied(t *testing.T) {
	pool := openTestPool(t)

	var journalMode string
	err := pool.Read(context.Background(), func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "PRAGMA journal_mode", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				journalMode = stmt.ColumnText(0)
				return nil
			},
		})
	})
	if err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}
}

func TestWriteCommits(t *testing.T) {
	pool := openTestPool(t)

	err := pool.Write(context.Background(), func(conn *sqlite.Conn) error {
		for _, key := range []string{"a", "b"} {
			if err := sqlitex.Execute(conn, "INSERT INTO kv (key, value) VALUES (?, ?)", &sqlitex.ExecOptions{
				Args: []any{key, "1"},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := countRows(t, pool); got != 2 {
		t.Errorf("rows = %d, want 2", got)
	}
}

func TestWriteRollsBackOnError(t *testing.T) {
	pool := openTestPool(t)
	failure := errors.New("abort")

	err := pool.Write(context.Background(), func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, "INSERT INTO kv (key, value) VALUES ('a', '1')", nil); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Write error = %v, want %v", err, failure)
	}
	if got := countRows(t, pool); got != 0 {
		t.Errorf("rows after rollback = %d, want 0", got)
	}
}

func TestEmptyPathRejected(t *testing.T) {
	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func TestReadHonoursCancelledContext(t *testing.T) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     filepath.Join(t.TempDir(), "cancel.db"),
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The outer Read holds the only connection, so the inner one can
	// only return through its cancelled context.
	err = pool.Read(context.Background(), func(*sqlite.Conn) error {
		if err := pool.Read(ctx, func(*sqlite.Conn) error { return nil }); err == nil {
			t.Error("expected error from cancelled context")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("outer Read: %v", err)
	}
}
