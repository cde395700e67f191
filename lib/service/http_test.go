// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bureau-foundation/rolecall/lib/testutil"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	response, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", url, err)
	}
	return response.StatusCode, string(body)
}

func TestHTTPServerLifecycle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprintf(writer, "ok")
	})

	server := NewHTTPServer(HTTPServerConfig{
		Address:         "127.0.0.1:0",
		Handler:         handler,
		ShutdownTimeout: 2 * time.Second,
		Logger:          logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "http server ready")

	status, body := get(t, "http://"+server.Addr().String()+"/test")
	if status != http.StatusOK || body != "ok" {
		t.Errorf("GET /test = %d %q, want 200 \"ok\"", status, body)
	}

	cancel()
	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "http server shutdown"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}

func TestHTTPServerPanicsOnMissingConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	tests := []struct {
		name   string
		config HTTPServerConfig
	}{
		{name: "missing_address", config: HTTPServerConfig{Handler: handler, Logger: logger}},
		{name: "missing_handler", config: HTTPServerConfig{Address: ":0", Logger: logger}},
		{name: "missing_logger", config: HTTPServerConfig{Address: ":0", Handler: handler}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("NewHTTPServer did not panic")
				}
			}()
			NewHTTPServer(tt.config)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "rolecall_test_total",
		Help: "Test counter.",
	}).Add(3)

	server := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: NewMetricsHandler(registry),
		Logger:  slog.New(slog.DiscardHandler),
	})
	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()
	defer func() {
		cancel()
		testutil.RequireReceive(t, serveDone, 5*time.Second, "http server shutdown")
	}()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "http server ready")

	base := "http://" + server.Addr().String()
	status, body := get(t, base+"/metrics")
	if status != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", status)
	}
	if !strings.Contains(body, "rolecall_test_total 3") {
		t.Errorf("metrics body missing counter:\n%s", body)
	}

	if status, body := get(t, base+"/healthz"); status != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Errorf("GET /healthz = %d %q", status, body)
	}
}
