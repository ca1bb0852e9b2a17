// Package metrics provides Prometheus metrics for the extraction pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kharcha"

var (
	// ExtractionsTotal counts finished extractions.
	// Labels: method (rule-based, ai-powered, fallback, none), status (accepted, rejected, retry_suggested)
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "total",
			Help:      "Total number of extractions by winning method and final status",
		},
		[]string{"method", "status"},
	)

	// ExtractionErrors counts rejected extractions by error kind.
	ExtractionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "errors_total",
			Help:      "Total number of rejected extractions by error kind",
		},
		[]string{"kind"},
	)

	// StageDuration tracks how long each pipeline stage takes.
	// Labels: stage (rule, ai, fallback)
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "stage_duration_seconds",
			Help:      "Duration of extraction stages in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 15},
		},
		[]string{"stage"},
	)

	// Confidence tracks the confidence of returned candidates.
	Confidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "confidence",
			Help:      "Confidence of extracted candidates by method",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"method"},
	)

	// ProviderErrors counts failed AI provider calls.
	// Labels: kind (ProviderUnavailable, ProviderTimeout, MalformedProviderResponse, ...)
	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Total number of AI provider failures by error kind",
		},
		[]string{"kind"},
	)

	// LocaleReloads counts locale pack reloads.
	// Labels: result (success, error)
	LocaleReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "locale",
			Name:      "reloads_total",
			Help:      "Total number of locale pack reload attempts",
		},
		[]string{"result"},
	)
)

// ObserveStage records the duration of one pipeline stage.
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordExtraction records the outcome of one extraction. Rejections carry
// an error kind; accepted and retry-suggested results carry a confidence.
func RecordExtraction(method, status, kind string, confidence float64) {
	ExtractionsTotal.WithLabelValues(method, status).Inc()
	if kind != "" {
		ExtractionErrors.WithLabelValues(kind).Inc()
		return
	}
	Confidence.WithLabelValues(method).Observe(confidence)
}

// RecordProviderError counts a failed provider call.
func RecordProviderError(kind string) {
	ProviderErrors.WithLabelValues(kind).Inc()
}

// RecordLocaleReload records the outcome of a locale pack reload.
func RecordLocaleReload(success bool) {
	if success {
		LocaleReloads.WithLabelValues("success").Inc()
	} else {
		LocaleReloads.WithLabelValues("error").Inc()
	}
}
