// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics holds the Prometheus collectors of the sync server.
//
// A nil *Recorder is valid and records nothing, so services and handlers can
// be built without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tripkeeper"

// Outcomes of a pushed change.
const (
	OutcomeApplied  = "applied"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Outcomes of a migrated record.
const (
	OutcomeImported = "imported"
)

// Recorder owns a registry and the collectors registered on it.
type Recorder struct {
	registry *prometheus.Registry

	syncChanges      *prometheus.CounterVec
	migrationRecords *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// NewRecorder creates a registry with the sync collectors plus the Go
// runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		syncChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "changes_total",
			Help:      "Pushed changes by entity type, action and outcome.",
		}, []string{"entity_type", "action", "outcome"}),
		migrationRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "migration",
			Name:      "records_total",
			Help:      "Migrated records by entity type and outcome.",
		}, []string{"entity_type", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method, route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	r.registry.MustRegister(
		r.syncChanges,
		r.migrationRecords,
		r.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func (r *Recorder) ObserveChange(entityType, action, outcome string) {
	if r == nil {
		return
	}
	r.syncChanges.WithLabelValues(entityType, action, outcome).Inc()
}

func (r *Recorder) ObserveMigrationRecord(entityType, outcome string) {
	if r == nil {
		return
	}
	r.migrationRecords.WithLabelValues(entityType, outcome).Inc()
}

func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
