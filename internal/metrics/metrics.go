// Package metrics exposes Prometheus collectors for the pipeline's
// per-stage timings and outcome counters, grounded on iluha78-FD's
// internal/observability.metrics.go (promauto package vars, namespaced
// counter/histogram/gauge sets).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageDuration records how long each pipeline stage (C1-C5) takes
	// per frame, labeled by stage name. Matching (C6) is not timed here.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "iris",
		Name:      "stage_duration_seconds",
		Help:      "Duration of one pipeline stage pass",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"stage"})

	// FramesAnalyzed counts frames reaching a given outcome during live
	// detection or burst collection.
	FramesAnalyzed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iris",
		Name:      "frames_analyzed_total",
		Help:      "Total frames analyzed, by outcome",
	}, []string{"outcome"})

	// BurstsCompleted counts completed bursts by session mode and result.
	BurstsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iris",
		Name:      "bursts_completed_total",
		Help:      "Total bursts completed, by mode and result",
	}, []string{"mode", "result"})

	// MatchDistance observes the Hamming distance of every verification
	// decision, regardless of zone.
	MatchDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "iris",
		Name:      "match_distance",
		Help:      "Fractional Hamming distance of verification decisions",
		Buckets:   prometheus.LinearBuckets(0, 0.05, 21),
	})

	// EnrolledSubjects tracks the current enrolled population size.
	EnrolledSubjects = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "iris",
		Name:      "enrolled_subjects",
		Help:      "Number of subjects currently enrolled",
	})

	// StatusPushConnections tracks active WebSocket clients.
	StatusPushConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "iris",
		Name:      "statuspush_connections",
		Help:      "Number of active status-push WebSocket connections",
	})
)
