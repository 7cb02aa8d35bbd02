package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for each file.
const (
	OutcomeMoved   = "moved"
	OutcomeSkipped = "skipped"
)

// RunMetrics collects the metrics of organization runs in a private registry.
type RunMetrics struct {
	registry *prometheus.Registry

	filesTotal             *prometheus.CounterVec
	classificationDuration *prometheus.HistogramVec
	runsTotal              *prometheus.CounterVec
	runDuration            prometheus.Gauge
	lastRunTimestamp       prometheus.Gauge
}

// New builds a metrics set labelled with the provider in use.
func New(provider string) *RunMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"provider": provider}

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "filesort",
			Subsystem:   "organizer",
			Name:        "files_total",
			Help:        "Files processed by category and outcome.",
			ConstLabels: constLabels,
		},
		[]string{"category", "outcome"},
	)
	classificationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "filesort",
			Subsystem:   "classifier",
			Name:        "request_duration_seconds",
			Help:        "Time spent waiting for the provider to classify a file.",
			ConstLabels: constLabels,
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"category"},
	)
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "filesort",
			Subsystem:   "organizer",
			Name:        "runs_total",
			Help:        "Organization runs by terminal state.",
			ConstLabels: constLabels,
		},
		[]string{"state"},
	)
	runDuration := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "filesort",
			Subsystem:   "organizer",
			Name:        "last_run_duration_seconds",
			Help:        "Wall time of the most recent run.",
			ConstLabels: constLabels,
		},
	)
	lastRunTimestamp := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "filesort",
			Subsystem:   "organizer",
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the most recent run finished.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(filesTotal, classificationDuration, runsTotal, runDuration, lastRunTimestamp)

	return &RunMetrics{
		registry:               registry,
		filesTotal:             filesTotal,
		classificationDuration: classificationDuration,
		runsTotal:              runsTotal,
		runDuration:            runDuration,
		lastRunTimestamp:       lastRunTimestamp,
	}
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *RunMetrics) ObserveClassification(category string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	m.classificationDuration.WithLabelValues(category).Observe(duration.Seconds())
}

func (m *RunMetrics) FileMoved(category string) {
	m.filesTotal.WithLabelValues(category, OutcomeMoved).Inc()
}

// FileSkipped counts a file that could not be moved. The category is empty
// when the failure happened before classification.
func (m *RunMetrics) FileSkipped(category string) {
	if category == "" {
		category = "unclassified"
	}
	m.filesTotal.WithLabelValues(category, OutcomeSkipped).Inc()
}

func (m *RunMetrics) RunFinished(state string, duration time.Duration, finishedAt time.Time) {
	m.runsTotal.WithLabelValues(state).Inc()
	m.runDuration.Set(duration.Seconds())
	m.lastRunTimestamp.Set(float64(finishedAt.Unix()))
}

// WriteTextfile atomically writes the registry to path in the Prometheus text
// exposition format.
func (m *RunMetrics) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
