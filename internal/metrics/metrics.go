// Package metrics defines Prometheus metrics for catwatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catwatch"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last liveness probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last readiness probe succeeded, 0 otherwise.",
	})
)

// Reconciliation metrics.
var (
	UpsertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upserts_total",
		Help:      "Total get-or-create calls by entity kind and outcome (created or found).",
	}, []string{"entity", "outcome"})

	CategoryFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_fallbacks_total",
		Help:      "Total category resolutions that fell back to the Unknown category.",
	})
)

// Link metrics.
var (
	ConfidenceComputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "confidence_computed_total",
		Help:      "Total confidence computations (at most one per link lifetime).",
	})

	ConfidenceDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "confidence_distribution",
		Help:      "Distribution of computed link confidence scores.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11), // 0.0, 0.1, ..., 1.0
	})
)

// Watch metrics.
var (
	WatchesArmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watches_armed_total",
		Help:      "Total watch set operations (creations and re-arms).",
	})

	WatchesClearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watches_cleared_total",
		Help:      "Total watch clear operations that removed a watch.",
	})
)

// Analytics metrics.
var (
	SalesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_detected_total",
		Help:      "Total observations flagged as sale events.",
	})

	ZeroDeltaObservationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "zero_delta_observations_total",
		Help:      "Total sale checks skipped because consecutive observations shared a timestamp.",
	})
)

// Snapshot gauges, refreshed by the engine snapshot job.
var (
	ListingsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "listings_total",
		Help:      "Current number of listings.",
	})

	ListsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "lists_total",
		Help:      "Current number of lists.",
	})

	LinksTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "links_total",
		Help:      "Current number of product links.",
	})

	LinksScoredTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "links_scored_total",
		Help:      "Current number of product links with cached confidence.",
	})

	WatchesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "watches_total",
		Help:      "Current number of recorded watches.",
	})

	ObservationsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "observations_total",
		Help:      "Current number of rank history observations.",
	})
)
