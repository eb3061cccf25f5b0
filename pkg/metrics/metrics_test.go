package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerRegistersOnCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(WithNamespace("test"), WithSubsystem("standings"), WithPrometheusRegistry(reg))
	if m == nil {
		t.Fatal("expected manager")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// Counters are not exported until first increment, so just make sure the
	// registry gather works and histograms/gauges show up.
	found := false
	for _, f := range families {
		if f.GetName() == "test_standings_ingest_queue_size" {
			found = true
		}
	}
	if !found {
		t.Error("expected ingest queue gauge to be registered")
	}
}

func TestGlobalHelpersDoNotPanic(t *testing.T) {
	RecordSubmissionEnqueued()
	RecordSubmissionDuplicate()
	RecordSubmissionDropped()
	UpdateIngestQueueSize(3)
	RecordBatchClosed(4)
	RecordClassificationRejected()
	RecordClassificationBypassed()
	RecordExtractionAttempt()
	RecordExtractionRetry()
	RecordExtractionFailure("timeout")
	RecordExtractionLatency(12.5)
	UpdateExtractionsInFlight(2)
	RecordStructuringError()
	RecordMatchResult("exact")
	RecordValidationResult("auto_approved", 0.97)
	RecordPersistenceError()
	RecordNotifyError()
	RecordHTTPRequest("submissions", "POST", "202")
	RecordHTTPRequestDuration("submissions", "POST", "202", 1.2)

	if GetRegistry() == nil {
		t.Fatal("expected registry")
	}
}
