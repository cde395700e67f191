// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// rolecall-service keeps a role-membership board in a Matrix room up
// to date. It reads m.bureau.role state events from a roster room,
// renders the tracked roles and their members, and edits a single
// board message in place once per interval or on demand.
//
// Administration happens over a CBOR Unix socket (see the rolecall
// CLI). Prometheus metrics are served when metrics_address is set.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/rolecall/lib/clock"
	"github.com/bureau-foundation/rolecall/lib/config"
	"github.com/bureau-foundation/rolecall/lib/configstore"
	"github.com/bureau-foundation/rolecall/lib/lifecycle"
	"github.com/bureau-foundation/rolecall/lib/process"
	"github.com/bureau-foundation/rolecall/lib/reconcile"
	"github.com/bureau-foundation/rolecall/lib/roomhost"
	"github.com/bureau-foundation/rolecall/lib/secret"
	"github.com/bureau-foundation/rolecall/lib/service"
	"github.com/bureau-foundation/rolecall/lib/version"
	"github.com/bureau-foundation/rolecall/messaging"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("rolecall-service", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to rolecall.yaml (default: $"+config.EnvironmentVariable+")")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		version.Print("rolecall-service")
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger)
}

// serve wires the daemon and blocks until ctx is cancelled or a
// component fails.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	userID, rosterRoom, err := cfg.Identity()
	if err != nil {
		return err
	}

	token, err := secret.ReadFile(cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("reading access token: %w", err)
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.HomeserverURL,
		Limiter:       rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst),
		Logger:        logger,
	})
	if err != nil {
		token.Close()
		return err
	}
	session, err := client.SessionFromToken(userID, token)
	if err != nil {
		token.Close()
		return err
	}
	defer session.Close()

	whoami, err := session.WhoAmI(ctx)
	if err != nil {
		return fmt.Errorf("validating access token: %w", err)
	}
	if whoami != userID {
		return fmt.Errorf("access token belongs to %s, not the configured user_id %s", whoami, userID)
	}
	logger.Info("matrix session valid", "user_id", userID)

	store, err := configstore.Open(cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	settings, err := configstore.Load(ctx, store)
	if err != nil {
		return err
	}

	clk := clock.Real()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	manager, err := lifecycle.NewManager(lifecycle.Config{
		Host:        roomhost.NewHost(session, logger),
		Settings:    settings,
		Clock:       clk,
		CallTimeout: cfg.CallTimeout,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	reconciler, err := reconcile.New(reconcile.Config{
		Settings:     settings,
		Manager:      manager,
		Source:       roomhost.NewRosterSource(session, rosterRoom, clk, logger),
		Clock:        clk,
		Interval:     cfg.Interval,
		FetchTimeout: cfg.FetchTimeout,
		Metrics:      reconcile.NewMetrics(registry),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	socketServer := service.NewSocketServer(cfg.SocketPath, logger)
	registerActions(socketServer, reconciler)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return reconciler.Run(groupCtx) })
	group.Go(func() error { return socketServer.Serve(groupCtx) })
	if cfg.MetricsAddress != "" {
		metricsServer := service.NewHTTPServer(service.HTTPServerConfig{
			Address: cfg.MetricsAddress,
			Handler: service.NewMetricsHandler(registry),
			Logger:  logger,
		})
		group.Go(func() error { return metricsServer.Serve(groupCtx) })
	}

	logger.Info("rolecall service running",
		"roster_room", rosterRoom,
		"socket", cfg.SocketPath,
		"interval", cfg.Interval,
		"version", version.Info(),
	)

	err = group.Wait()
	logger.Info("shutting down")
	return err
}
