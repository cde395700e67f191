// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/rolecall/lib/ref"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "ROLECALL_CONFIG"

// Config is the daemon's deployment configuration.
type Config struct {
	// HomeserverURL is the Matrix homeserver base URL. Required.
	HomeserverURL string `yaml:"homeserver_url"`

	// UserID is the service account, e.g. "@rolecall:example.org".
	// Required.
	UserID string `yaml:"user_id"`

	// TokenFile holds the service account's access token. Required.
	TokenFile string `yaml:"token_file"`

	// RosterRoom is the room whose m.bureau.role state events and
	// members make up the roster. Required.
	RosterRoom string `yaml:"roster_room"`

	// Root is the base directory for rolecall state. Other path defaults
	// are relative to it.
	// Default: ${HOME}/.local/state/rolecall
	Root string `yaml:"root"`

	// DatabasePath is the SQLite config store.
	// Default: ${ROLECALL_ROOT}/rolecall.db
	DatabasePath string `yaml:"database_path"`

	// SocketPath is the administrative Unix socket.
	// Default: ${ROLECALL_ROOT}/rolecall.sock
	SocketPath string `yaml:"socket_path"`

	// MetricsAddress is the TCP address for the Prometheus endpoint.
	// Empty disables it.
	MetricsAddress string `yaml:"metrics_address"`

	// Interval is the time between scheduled passes. Default: 60m.
	Interval time.Duration `yaml:"interval"`

	// CallTimeout bounds each homeserver call made for the board.
	// Default: 30s.
	CallTimeout time.Duration `yaml:"call_timeout"`

	// FetchTimeout bounds each roster read. Default: 30s.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// RateLimit throttles requests to the homeserver.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// RateLimitConfig configures the token bucket in front of the
// homeserver client.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. Default: 5.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the bucket size. Default: 10.
	Burst int `yaml:"burst"`
}

// Default returns the configuration every file is merged over. The
// Matrix identity fields have no defaults.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Root:         filepath.Join(homeDir, ".local", "state", "rolecall"),
		DatabasePath: "${ROLECALL_ROOT}/rolecall.db",
		SocketPath:   "${ROLECALL_ROOT}/rolecall.sock",
		Interval:     60 * time.Minute,
		CallTimeout:  30 * time.Second,
		FetchTimeout: 30 * time.Second,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
		LogLevel: "info",
	}
}

// Resolve returns the config file path: flagPath when set, otherwise
// $ROLECALL_CONFIG. It fails when neither is set.
func Resolve(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if path := os.Getenv(EnvironmentVariable); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("config: %s environment variable not set; "+
		"set it to the path of your rolecall.yaml config file, or use --config", EnvironmentVariable)
}

// Load resolves the config path from flagPath or the environment and
// loads it.
func Load(flagPath string) (*Config, error) {
	path, err := Resolve(flagPath)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the file at path over Default and expands path
// variables. The result is not validated; call Validate.
func LoadFile(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	config.expandVariables()
	return config, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Root = expandVars(c.Root, vars)
	vars["ROLECALL_ROOT"] = c.Root

	c.TokenFile = expandVars(c.TokenFile, vars)
	c.DatabasePath = expandVars(c.DatabasePath, vars)
	c.SocketPath = expandVars(c.SocketPath, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, preferring vars over
// the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.HomeserverURL == "" {
		errs = append(errs, errors.New("homeserver_url is required"))
	} else if parsed, err := url.Parse(c.HomeserverURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("homeserver_url %q must be an http or https URL", c.HomeserverURL))
	}

	if c.UserID == "" {
		errs = append(errs, errors.New("user_id is required"))
	} else if _, err := ref.ParseUserID(c.UserID); err != nil {
		errs = append(errs, fmt.Errorf("user_id: %w", err))
	}

	if c.RosterRoom == "" {
		errs = append(errs, errors.New("roster_room is required"))
	} else if _, err := ref.ParseRoomID(c.RosterRoom); err != nil {
		errs = append(errs, fmt.Errorf("roster_room: %w", err))
	}

	if c.TokenFile == "" {
		errs = append(errs, errors.New("token_file is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if c.SocketPath == "" {
		errs = append(errs, errors.New("socket_path is required"))
	}

	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("call_timeout must be positive, got %s", c.CallTimeout))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive, got %v", c.RateLimit.RequestsPerSecond))
	}
	if c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1, got %d", c.RateLimit.Burst))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}

// Identity returns the parsed service account and roster room.
func (c *Config) Identity() (ref.UserID, ref.RoomID, error) {
	userID, err := ref.ParseUserID(c.UserID)
	if err != nil {
		return ref.UserID{}, ref.RoomID{}, fmt.Errorf("config: user_id: %w", err)
	}
	roomID, err := ref.ParseRoomID(c.RosterRoom)
	if err != nil {
		return ref.UserID{}, ref.RoomID{}, fmt.Errorf("config: roster_room: %w", err)
	}
	return userID, roomID, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// EnsurePaths creates the directories holding the database and socket.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.DatabasePath, c.SocketPath} {
		if path == "" {
			continue
		}
		directory := filepath.Dir(path)
		if err := os.MkdirAll(directory, 0o700); err != nil {
			return fmt.Errorf("config: creating %s: %w", directory, err)
		}
	}
	return nil
}
