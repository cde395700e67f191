// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the reconciler's Prometheus collectors.
//
//   - rolecall_passes_total{trigger,outcome}
//   - rolecall_pass_duration_seconds
//   - rolecall_triggers_coalesced_total{trigger}
//   - rolecall_artifact_bound (1 while a board is placed)
type Metrics struct {
	Passes            *prometheus.CounterVec
	PassDuration      prometheus.Histogram
	TriggersCoalesced *prometheus.CounterVec
	ArtifactBound     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with registerer.
// A nil registerer creates unregistered collectors.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Passes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolecall_passes_total",
				Help: "Reconciliation passes run, by trigger and outcome.",
			},
			[]string{"trigger", "outcome"},
		),
		PassDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rolecall_pass_duration_seconds",
				Help:    "Wall time of reconciliation passes.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		TriggersCoalesced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolecall_triggers_coalesced_total",
				Help: "Triggers dropped because a pass was already running.",
			},
			[]string{"trigger"},
		),
		ArtifactBound: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rolecall_artifact_bound",
				Help: "1 while a board message is placed, 0 otherwise.",
			},
		),
	}
}
