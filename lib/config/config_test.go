// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// identityConfig has the required fields except token_file, so tests
// can supply their own path.
const identityConfig = `
homeserver_url: https://matrix.example.org
user_id: "@rolecall:example.org"
roster_room: "!roster:example.org"
`

const minimalConfig = identityConfig + `token_file: /etc/rolecall/token
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rolecall.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	config := Default()
	if config.Interval != 60*time.Minute {
		t.Errorf("interval = %s, want 60m", config.Interval)
	}
	if config.CallTimeout != 30*time.Second || config.FetchTimeout != 30*time.Second {
		t.Errorf("timeouts = %s/%s, want 30s/30s", config.CallTimeout, config.FetchTimeout)
	}
	if config.MetricsAddress != "" {
		t.Errorf("metrics should be disabled by default, got %q", config.MetricsAddress)
	}
	if config.RateLimit.RequestsPerSecond != 5 || config.RateLimit.Burst != 10 {
		t.Errorf("rate limit = %+v", config.RateLimit)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	path := writeConfig(t, minimalConfig+`
metrics_address: 127.0.0.1:9464
interval: 15m
call_timeout: 10s
rate_limit:
  requests_per_second: 2.5
log_level: debug
`)

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if config.Interval != 15*time.Minute {
		t.Errorf("interval = %s, want 15m", config.Interval)
	}
	if config.CallTimeout != 10*time.Second {
		t.Errorf("call_timeout = %s, want 10s", config.CallTimeout)
	}
	if config.FetchTimeout != 30*time.Second {
		t.Errorf("fetch_timeout = %s, want default 30s", config.FetchTimeout)
	}
	if config.RateLimit.RequestsPerSecond != 2.5 || config.RateLimit.Burst != 10 {
		t.Errorf("rate_limit = %+v, want 2.5 with default burst", config.RateLimit)
	}
	if config.MetricsAddress != "127.0.0.1:9464" {
		t.Errorf("metrics_address = %q", config.MetricsAddress)
	}
	if config.DatabasePath != "/home/test/.local/state/rolecall/rolecall.db" {
		t.Errorf("database_path = %q", config.DatabasePath)
	}
	if level, _ := config.Level(); level != slog.LevelDebug {
		t.Errorf("level = %s, want DEBUG", level)
	}

	userID, roomID, err := config.Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if userID.String() != "@rolecall:example.org" || roomID.String() != "!roster:example.org" {
		t.Errorf("identity = %s in %s", userID, roomID)
	}
}

func TestLoadFileExpandsRoot(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	t.Setenv("ROLECALL_SOCKET_DIR", "")
	path := writeConfig(t, identityConfig+`
root: ${HOME}/rolecall
socket_path: ${ROLECALL_SOCKET_DIR:-/run/rolecall}/admin.sock
token_file: ${ROLECALL_ROOT}/token
`)

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if config.Root != "/home/test/rolecall" {
		t.Errorf("root = %q", config.Root)
	}
	if config.DatabasePath != "/home/test/rolecall/rolecall.db" {
		t.Errorf("database_path = %q", config.DatabasePath)
	}
	if config.SocketPath != "/run/rolecall/admin.sock" {
		t.Errorf("socket_path = %q", config.SocketPath)
	}
	if config.TokenFile != "/home/test/rolecall/token" {
		t.Errorf("token_file = %q", config.TokenFile)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFile(writeConfig(t, "interval: [not a duration")); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, err := LoadFile(writeConfig(t, "interval: soon")); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")
	if _, err := Resolve(""); err == nil || !strings.Contains(err.Error(), EnvironmentVariable) {
		t.Errorf("Resolve with nothing set = %v, want error naming %s", err, EnvironmentVariable)
	}

	t.Setenv(EnvironmentVariable, "/etc/rolecall/env.yaml")
	if path, err := Resolve(""); err != nil || path != "/etc/rolecall/env.yaml" {
		t.Errorf("Resolve from environment = %q, %v", path, err)
	}
	if path, err := Resolve("/etc/rolecall/flag.yaml"); err != nil || path != "/etc/rolecall/flag.yaml" {
		t.Errorf("flag should win over environment, got %q, %v", path, err)
	}
}

func TestLoadUsesEnvironment(t *testing.T) {
	t.Setenv(EnvironmentVariable, writeConfig(t, minimalConfig))
	config, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.HomeserverURL != "https://matrix.example.org" {
		t.Errorf("homeserver_url = %q", config.HomeserverURL)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		config := Default()
		config.HomeserverURL = "https://matrix.example.org"
		config.UserID = "@rolecall:example.org"
		config.TokenFile = "/etc/rolecall/token"
		config.RosterRoom = "!roster:example.org"
		return config
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing identity",
			mutate:  func(c *Config) { c.HomeserverURL, c.UserID, c.RosterRoom, c.TokenFile = "", "", "", "" },
			wantErr: []string{"homeserver_url is required", "user_id is required", "roster_room is required", "token_file is required"},
		},
		{
			name:    "bad homeserver scheme",
			mutate:  func(c *Config) { c.HomeserverURL = "ftp://matrix.example.org" },
			wantErr: []string{"must be an http or https URL"},
		},
		{
			name:    "malformed IDs",
			mutate:  func(c *Config) { c.UserID, c.RosterRoom = "rolecall", "#alias:example.org" },
			wantErr: []string{"user_id:", "roster_room:"},
		},
		{
			name:    "non-positive timing",
			mutate:  func(c *Config) { c.Interval, c.CallTimeout, c.FetchTimeout = 0, -time.Second, 0 },
			wantErr: []string{"interval must be positive", "call_timeout must be positive", "fetch_timeout must be positive"},
		},
		{
			name:    "bad rate limit",
			mutate:  func(c *Config) { c.RateLimit = RateLimitConfig{} },
			wantErr: []string{"requests_per_second must be positive", "burst must be at least 1"},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: []string{"log_level"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := valid()
			test.mutate(config)
			err := config.Validate()
			if len(test.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range test.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	root := t.TempDir()
	config := Default()
	config.DatabasePath = filepath.Join(root, "state", "rolecall.db")
	config.SocketPath = filepath.Join(root, "run", "rolecall.sock")

	if err := config.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths: %v", err)
	}
	for _, directory := range []string{"state", "run"} {
		info, err := os.Stat(filepath.Join(root, directory))
		if err != nil {
			t.Fatalf("stat %s: %v", directory, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", directory)
		}
	}
}
