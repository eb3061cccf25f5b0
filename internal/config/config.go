// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. A batch's behavior is fully
// determined by the configuration snapshot it was created with; stage
// toggles live here rather than as scattered flags.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// IngestQueueSize bounds the in-memory submission queue ahead of the
	// batch scheduler.
	IngestQueueSize int `koanf:"ingest_queue_size"`

	// DedupeSize bounds the submission-id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// BatchWindowSeconds is how long a per-origin batch window stays open
	// after its first submission arrives.
	BatchWindowSeconds int `koanf:"batch_window_seconds"`

	// ClassificationEnabled toggles the admissibility classifier. When
	// disabled every submission passes with confidence 1.0.
	ClassificationEnabled bool `koanf:"classification_enabled"`

	// ClassificationThreshold rejects submissions scoring below it.
	ClassificationThreshold float64 `koanf:"classification_threshold"`

	// MaxConcurrentExtractions caps simultaneously in-flight recognition
	// service calls.
	MaxConcurrentExtractions int `koanf:"max_concurrent_extractions"`

	// ExtractionTimeoutSeconds bounds each recognition call.
	ExtractionTimeoutSeconds int `koanf:"extraction_timeout_seconds"`

	// ExtractionMaxRetries bounds retries after the initial attempt.
	ExtractionMaxRetries int `koanf:"extraction_max_retries"`

	// RecognitionURL is the base URL of the external recognition service.
	RecognitionURL string `koanf:"recognition_url"`

	// MatchTieMarginPercent declares two roster candidates ambiguous when
	// their scores differ by less than this many percentage points.
	MatchTieMarginPercent float64 `koanf:"match_tie_margin_percent"`

	// MatchMinFloor is the minimum similarity for a fuzzy match to count.
	MatchMinFloor float64 `koanf:"match_min_floor"`

	// AutoApproveConfidenceThreshold gates auto-approval on aggregate
	// confidence.
	AutoApproveConfidenceThreshold float64 `koanf:"auto_approve_confidence_threshold"`

	// RosterPath points at the JSON roster snapshot file.
	RosterPath string `koanf:"roster_path"`

	// RosterRefreshSeconds is the roster snapshot refresh interval.
	RosterRefreshSeconds int `koanf:"roster_refresh_seconds"`

	// DatabasePath is the SQLite file for validation results.
	DatabasePath string `koanf:"database_path"`

	// NotifyWebhookURL, when set, receives batch summaries as JSON posts.
	// Empty means summaries are only logged.
	NotifyWebhookURL string `koanf:"notify_webhook_url"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                       "info",
		Addr:                           ":9080",
		IngestQueueSize:                10_000,
		DedupeSize:                     100_000,
		BatchWindowSeconds:             30,
		ClassificationEnabled:          true,
		ClassificationThreshold:        0.5,
		MaxConcurrentExtractions:       runtime.NumCPU() * 2,
		ExtractionTimeoutSeconds:       15,
		ExtractionMaxRetries:           3,
		RecognitionURL:                 "http://localhost:9090",
		MatchTieMarginPercent:          2,
		MatchMinFloor:                  0.6,
		AutoApproveConfidenceThreshold: 0.85,
		RosterPath:                     "roster.json",
		RosterRefreshSeconds:           300,
		DatabasePath:                   "standings.db",
		NotifyWebhookURL:               "",
	}
}
