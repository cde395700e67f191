// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.jsonc")
	content := `{
	// Staff roles for the preview.
	"roles": [
		{"id": "admins", "name": "Admins", "rank": 100},
		/* block comments are allowed too */
		{"id": "mods", "name": "Moderators", "rank": 50},
	],
	"members": [
		{"user_id": "@alice:bureau.local", "roles": ["admins", "mods"]},
		{"user_id": "@bob:bureau.local", "roles": ["mods"]},
	],
	"fetched_at": "2026-03-01T12:00:00Z",
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	roster, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(roster.Roles) != 2 || len(roster.Members) != 2 {
		t.Fatalf("roster = %+v", roster)
	}
	if roster.FetchedAt.IsZero() {
		t.Error("fetched_at not parsed")
	}

	snapshot := Build(roster, nil)
	if len(snapshot.Buckets) != 2 || snapshot.Buckets[0].Role.ID != "admins" {
		t.Errorf("snapshot = %+v", snapshot)
	}
}

func TestParseRejectsInvalidRosters(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "malformed", content: `{"roles": [`, want: "parsing roster"},
		{name: "duplicate role", content: `{"roles": [{"id": "a"}, {"id": "a"}]}`, want: "duplicate id"},
		{name: "missing role id", content: `{"roles": [{"name": "x"}]}`, want: "id is required"},
		{name: "anonymous member", content: `{"members": [{"roles": ["a"]}]}`, want: "user_id or handle"},
		{name: "bad user id", content: `{"members": [{"user_id": "alice"}]}`, want: "parsing roster"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.content))
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Parse error = %v, want containing %q", err, test.want)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
