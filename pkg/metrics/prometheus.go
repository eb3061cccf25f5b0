// Package metrics provides Prometheus metrics for the standings validation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion
	submissionsEnqueued  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsDropped   prometheus.Counter
	ingestQueueSize      prometheus.Gauge

	// Batching
	batchesClosed prometheus.Counter
	batchSize     prometheus.Histogram

	// Classification
	classificationRejected prometheus.Counter
	classificationBypassed prometheus.Counter

	// Extraction
	extractionAttempts  prometheus.Counter
	extractionRetries   prometheus.Counter
	extractionFailures  *prometheus.CounterVec
	extractionLatency   prometheus.Histogram
	extractionsInFlight prometheus.Gauge

	// Structuring and matching
	structuringErrors prometheus.Counter
	matchResults      *prometheus.CounterVec

	// Validation
	validationResults   *prometheus.CounterVec
	aggregateConfidence prometheus.Histogram

	// Persistence and notification
	persistenceErrors prometheus.Counter
	notifyErrors      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gal",
		subsystem:        "standings",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissionsEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_enqueued_total",
		Help:      "Total number of submissions accepted at the ingestion boundary",
	})

	m.submissionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_duplicate_total",
		Help:      "Total number of duplicate submission ids seen at ingestion",
	})

	m.submissionsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_dropped_total",
		Help:      "Total number of submissions dropped due to ingest backpressure",
	})

	m.ingestQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_queue_size",
		Help:      "Current number of submissions buffered ahead of the batch scheduler",
	})

	m.batchesClosed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batches_closed_total",
		Help:      "Total number of batch windows closed with at least one submission",
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_size",
		Help:      "Distribution of submissions per closed batch",
		Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 24, 32},
	})

	m.classificationRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_rejected_total",
		Help:      "Total number of submissions rejected by the admissibility classifier",
	})

	m.classificationBypassed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_bypassed_total",
		Help:      "Total number of submissions that skipped classification (disabled for origin)",
	})

	m.extractionAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_attempts_total",
		Help:      "Total number of calls made to the recognition service",
	})

	m.extractionRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_retries_total",
		Help:      "Total number of retried recognition calls",
	})

	m.extractionFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_failures_total",
		Help:      "Total number of extractions that exhausted retries, by failure kind",
	}, []string{"kind"})

	m.extractionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_latency_milliseconds",
		Help:      "Histogram of recognition service call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.extractionsInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extractions_in_flight",
		Help:      "Number of recognition calls currently holding a semaphore slot",
	})

	m.structuringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "structuring_errors_total",
		Help:      "Total number of duplicate or missing rank findings during structuring",
	})

	m.matchResults = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_results_total",
		Help:      "Total number of roster match outcomes, by method",
	}, []string{"method"})

	m.validationResults = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_results_total",
		Help:      "Total number of validation verdicts, by status",
	}, []string{"status"})

	m.aggregateConfidence = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregate_confidence",
		Help:      "Distribution of aggregate submission confidence",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
	})

	m.persistenceErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_errors_total",
		Help:      "Total number of failed validation result writes",
	})

	m.notifyErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_errors_total",
		Help:      "Total number of failed batch summary notifications",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordSubmissionEnqueued increments the enqueued submissions counter.
func RecordSubmissionEnqueued() {
	globalManager.submissionsEnqueued.Inc()
}

// RecordSubmissionDuplicate increments the duplicate submissions counter.
func RecordSubmissionDuplicate() {
	globalManager.submissionsDuplicate.Inc()
}

// RecordSubmissionDropped increments the dropped submissions counter.
func RecordSubmissionDropped() {
	globalManager.submissionsDropped.Inc()
}

// UpdateIngestQueueSize sets the current ingest queue size.
func UpdateIngestQueueSize(size int) {
	globalManager.ingestQueueSize.Set(float64(size))
}

// RecordBatchClosed records a closed batch and its size.
func RecordBatchClosed(size int) {
	globalManager.batchesClosed.Inc()
	globalManager.batchSize.Observe(float64(size))
}

// RecordClassificationRejected increments the classifier rejection counter.
func RecordClassificationRejected() {
	globalManager.classificationRejected.Inc()
}

// RecordClassificationBypassed increments the classifier bypass counter.
func RecordClassificationBypassed() {
	globalManager.classificationBypassed.Inc()
}

// RecordExtractionAttempt increments the recognition call counter.
func RecordExtractionAttempt() {
	globalManager.extractionAttempts.Inc()
}

// RecordExtractionRetry increments the recognition retry counter.
func RecordExtractionRetry() {
	globalManager.extractionRetries.Inc()
}

// RecordExtractionFailure increments the exhausted-retries counter for kind.
func RecordExtractionFailure(kind string) {
	globalManager.extractionFailures.WithLabelValues(kind).Inc()
}

// RecordExtractionLatency records recognition call latency in milliseconds.
func RecordExtractionLatency(latencyMs float64) {
	globalManager.extractionLatency.Observe(latencyMs)
}

// UpdateExtractionsInFlight sets the in-flight extraction gauge.
func UpdateExtractionsInFlight(n int) {
	globalManager.extractionsInFlight.Set(float64(n))
}

// RecordStructuringError increments the structuring findings counter.
func RecordStructuringError() {
	globalManager.structuringErrors.Inc()
}

// RecordMatchResult increments the match outcome counter for method.
func RecordMatchResult(method string) {
	globalManager.matchResults.WithLabelValues(method).Inc()
}

// RecordValidationResult increments the verdict counter and records the
// aggregate confidence for a finished submission.
func RecordValidationResult(status string, confidence float64) {
	globalManager.validationResults.WithLabelValues(status).Inc()
	globalManager.aggregateConfidence.Observe(confidence)
}

// RecordPersistenceError increments the persistence failure counter.
func RecordPersistenceError() {
	globalManager.persistenceErrors.Inc()
}

// RecordNotifyError increments the notification failure counter.
func RecordNotifyError() {
	globalManager.notifyErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry for serving /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
