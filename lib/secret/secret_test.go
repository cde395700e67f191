// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromBytesZeroesSource(t *testing.T) {
	source := []byte("syt_token")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if buffer.String() != "syt_token" {
		t.Errorf("String() = %q, want syt_token", buffer.String())
	}
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source[%d] = %d, want 0", index, value)
		}
	}
}

func TestNewFromBytesRejectsEmpty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestCloseIsIdempotentAndBlocksReads(t *testing.T) {
	buffer, err := NewFromBytes([]byte("secret"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if buffer.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", buffer.Len())
	}

	defer func() {
		if recover() == nil {
			t.Error("Bytes() after Close did not panic")
		}
	}()
	buffer.Bytes()
}

func TestReadFile(t *testing.T) {
	directory := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "plain", content: "syt_abc", want: "syt_abc"},
		{name: "trailing newline", content: "syt_abc\n", want: "syt_abc"},
		{name: "surrounding whitespace", content: "  syt_abc \n", want: "syt_abc"},
		{name: "whitespace only", content: " \n\t", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(directory, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0o600); err != nil {
				t.Fatalf("writing token file: %v", err)
			}

			buffer, err := ReadFile(path)
			if test.wantErr {
				if err == nil {
					buffer.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			defer buffer.Close()
			if buffer.String() != test.want {
				t.Errorf("ReadFile = %q, want %q", buffer.String(), test.want)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
