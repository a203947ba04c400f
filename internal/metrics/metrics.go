// Package metrics exposes prometheus instrumentation for the review
// session's command surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the counters the handlers increment. A private registry
// keeps the scrape output limited to application metrics.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted     prometheus.Counter
	SessionsEnded       prometheus.Counter
	TranscriptEntries   prometheus.Counter
	SuggestionsResolved *prometheus.CounterVec
	SnapshotsSaved      prometheus.Counter
	SessionsImported    prometheus.Counter
}

// New creates and registers all application metrics.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.SessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "osce_sessions_started_total",
		Help: "Number of examination sessions started",
	})
	m.SessionsEnded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "osce_sessions_ended_total",
		Help: "Number of examination sessions ended",
	})
	m.TranscriptEntries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "osce_transcript_entries_total",
		Help: "Number of transcript entries appended",
	})
	m.SuggestionsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "osce_suggestions_resolved_total",
		Help: "Number of rubric suggestions resolved, by outcome",
	}, []string{"outcome"})
	m.SnapshotsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "osce_snapshots_saved_total",
		Help: "Number of snapshot images saved",
	})
	m.SessionsImported = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "osce_sessions_imported_total",
		Help: "Number of saved sessions restored from a document",
	})

	m.registry.MustRegister(
		m.SessionsStarted,
		m.SessionsEnded,
		m.TranscriptEntries,
		m.SuggestionsResolved,
		m.SnapshotsSaved,
		m.SessionsImported,
	)
	return m
}

// Handler returns the scrape endpoint for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
