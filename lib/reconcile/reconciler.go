// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/rolecall/lib/clock"
	"github.com/bureau-foundation/rolecall/lib/configstore"
	"github.com/bureau-foundation/rolecall/lib/lifecycle"
	"github.com/bureau-foundation/rolecall/lib/rolecard"
	"github.com/bureau-foundation/rolecall/lib/roster"
)

// Defaults.
const (
	DefaultInterval     = 60 * time.Minute
	DefaultFetchTimeout = 30 * time.Second
)

// Trigger reasons, used in logs and metric labels.
const (
	TriggerInterval = "interval"
	TriggerManual   = "manual"
	TriggerConfig   = "config"
)

// OutcomeCoalesced reports a trigger dropped because a pass was running.
const OutcomeCoalesced lifecycle.Outcome = "coalesced"

// PassResult describes one trigger's effect.
type PassResult struct {
	Trigger  string            `json:"trigger"`
	Outcome  lifecycle.Outcome `json:"outcome"`
	Started  time.Time         `json:"started"`
	Duration time.Duration     `json:"duration"`

	// Error is the failure message for unsuccessful passes.
	Error string `json:"error,omitempty"`
}

// Config holds a Reconciler's collaborators.
type Config struct {
	Settings *configstore.Settings
	Manager  *lifecycle.Manager
	Source   roster.Source

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Interval defaults to DefaultInterval.
	Interval time.Duration

	// FetchTimeout bounds each roster fetch. Defaults to
	// DefaultFetchTimeout.
	FetchTimeout time.Duration

	// Metrics defaults to unregistered collectors.
	Metrics *Metrics

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// Reconciler drives passes and serves administrative operations.
type Reconciler struct {
	settings     *configstore.Settings
	manager      *lifecycle.Manager
	source       roster.Source
	clock        clock.Clock
	interval     time.Duration
	fetchTimeout time.Duration
	metrics      *Metrics
	logger       *slog.Logger
	startedAt    time.Time

	// lock is the single-flight pass lock: a send acquires it.
	lock chan struct{}

	statusMu sync.Mutex
	lastPass *PassResult
	passes   int

	// passHook, when set, observes every completed pass.
	passHook func(PassResult)
}

// New validates config and returns a Reconciler.
func New(config Config) (*Reconciler, error) {
	var errs []error
	if config.Settings == nil {
		errs = append(errs, errors.New("Settings is required"))
	}
	if config.Manager == nil {
		errs = append(errs, errors.New("Manager is required"))
	}
	if config.Source == nil {
		errs = append(errs, errors.New("Source is required"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("reconcile: %w", errors.Join(errs...))
	}

	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	if config.Metrics == nil {
		config.Metrics = NewMetrics(nil)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	reconciler := &Reconciler{
		settings:     config.Settings,
		manager:      config.Manager,
		source:       config.Source,
		clock:        config.Clock,
		interval:     config.Interval,
		fetchTimeout: config.FetchTimeout,
		metrics:      config.Metrics,
		logger:       config.Logger,
		startedAt:    config.Clock.Now(),
		lock:         make(chan struct{}, 1),
	}
	reconciler.updateBoundGauge()
	return reconciler, nil
}

// Run passes immediately, then once per interval, until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.Info("reconciler started", "interval", r.interval)
	r.Trigger(ctx, TriggerInterval)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return nil
		case <-ticker.C:
			r.Trigger(ctx, TriggerInterval)
		}
	}
}

// Trigger runs a pass unless one is already running, in which case the
// trigger is coalesced and nothing runs.
func (r *Reconciler) Trigger(ctx context.Context, reason string) PassResult {
	select {
	case r.lock <- struct{}{}:
	default:
		r.metrics.TriggersCoalesced.WithLabelValues(reason).Inc()
		r.logger.Debug("trigger coalesced into running pass", "trigger", reason)
		return PassResult{Trigger: reason, Outcome: OutcomeCoalesced, Started: r.clock.Now()}
	}
	defer r.unlock()
	return r.pass(ctx, reason)
}

func (r *Reconciler) acquire(ctx context.Context) error {
	select {
	case r.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) unlock() {
	<-r.lock
}

// pass runs one reconciliation. The caller holds the lock.
func (r *Reconciler) pass(ctx context.Context, reason string) PassResult {
	started := r.clock.Now()
	err := r.reconcile(ctx)

	result := PassResult{
		Trigger:  reason,
		Outcome:  lifecycle.Classify(err),
		Started:  started,
		Duration: r.clock.Now().Sub(started),
	}
	if err != nil {
		result.Error = err.Error()
	}

	attributes := []any{"trigger", reason, "outcome", result.Outcome, "duration", result.Duration}
	switch result.Outcome {
	case lifecycle.OutcomeUpdated:
		r.logger.Info("board updated", attributes...)
	case lifecycle.OutcomeUnbound:
		r.logger.Info("no board placed, skipping pass", attributes...)
	case lifecycle.OutcomeLost:
		r.logger.Warn("board lost, place it again to resume updates", append(attributes, "error", err)...)
	default:
		r.logger.Error("reconciliation pass failed", append(attributes, "error", err)...)
	}

	r.metrics.Passes.WithLabelValues(reason, string(result.Outcome)).Inc()
	r.metrics.PassDuration.Observe(result.Duration.Seconds())
	r.updateBoundGauge()

	r.statusMu.Lock()
	r.lastPass = &result
	r.passes++
	hook := r.passHook
	r.statusMu.Unlock()
	if hook != nil {
		hook(result)
	}
	return result
}

func (r *Reconciler) reconcile(ctx context.Context) error {
	if _, err := r.manager.EnsureLive(ctx); err != nil {
		return err
	}
	document, err := r.render(ctx)
	if err != nil {
		return err
	}
	return r.manager.Push(ctx, document)
}

// render fetches the roster and renders the board for the current config.
func (r *Reconciler) render(ctx context.Context) (rolecard.Document, error) {
	current, err := r.fetchRoster(ctx)
	if err != nil {
		return rolecard.Document{}, err
	}
	config := r.settings.Current()
	snapshot := roster.Build(current, config.TrackedRoles)
	return rolecard.Render(snapshot, config.Title), nil
}

func (r *Reconciler) fetchRoster(ctx context.Context) (roster.Roster, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()
	current, err := r.source.Fetch(fetchCtx)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("reconcile: fetching roster: %w", err)
	}
	return current, nil
}

func (r *Reconciler) updateBoundGauge() {
	if r.settings.Current().Pointer != nil {
		r.metrics.ArtifactBound.Set(1)
	} else {
		r.metrics.ArtifactBound.Set(0)
	}
}
