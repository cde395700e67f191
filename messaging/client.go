// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/secret"
)

// maxResponseBytes bounds how much of a response body is read. Room
// state for a large roster room is the biggest payload rolecall sees.
const maxResponseBytes = 32 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// HomeserverURL is the base URL (e.g., "https://matrix.example.org").
	HomeserverURL string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Limiter, when set, gates every request. The homeserver enforces
	// its own limits too; this keeps a burst of admin actions from
	// tripping them.
	Limiter *rate.Limiter

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is an unauthenticated Matrix client shared by sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.HomeserverURL == "" {
		return nil, errors.New("messaging: HomeserverURL is required")
	}
	parsed, err := url.Parse(config.HomeserverURL)
	if err != nil {
		return nil, fmt.Errorf("messaging: invalid HomeserverURL %q: %w", config.HomeserverURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("messaging: HomeserverURL %q must be http or https", config.HomeserverURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.HomeserverURL, "/"),
		httpClient: httpClient,
		limiter:    config.Limiter,
		logger:     logger,
	}, nil
}

// SessionFromToken wraps an existing access token. The session takes
// ownership of accessToken and closes it on Close.
func (c *Client) SessionFromToken(userID ref.UserID, accessToken *secret.Buffer) (*DirectSession, error) {
	if userID.IsZero() {
		return nil, errors.New("messaging: user ID is required")
	}
	if accessToken == nil || accessToken.Len() == 0 {
		return nil, errors.New("messaging: access token is required")
	}
	return &DirectSession{
		client:      c,
		accessToken: accessToken,
		userID:      userID,
	}, nil
}

// doRequest performs a JSON request. On a non-2xx response it returns a
// *MatrixError, or a plain error when the body is not a Matrix error.
func (c *Client) doRequest(ctx context.Context, method, path string, accessToken *secret.Buffer, requestBody any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("messaging: waiting for request slot: %w", err)
		}
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("messaging: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("messaging: creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if accessToken != nil {
		request.Header.Set("Authorization", "Bearer "+accessToken.String())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("messaging: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("messaging: reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	var matrixErr MatrixError
	if jsonErr := json.Unmarshal(responseBody, &matrixErr); jsonErr != nil || matrixErr.Code == "" {
		return nil, fmt.Errorf("messaging: unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	matrixErr.StatusCode = response.StatusCode
	if matrixErr.Code == ErrCodeLimitExceeded {
		c.logger.Warn("homeserver rate limited request",
			"method", method,
			"path", path,
			"retry_after", matrixErr.RetryAfter(),
		)
	}
	return nil, &matrixErr
}
