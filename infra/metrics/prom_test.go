package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/acdcgrid/ghds/core/metrics"
)

func TestPromSink_RecordEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordRun(coremetrics.RunEvent{RunID: "r1", Duration: 2 * time.Second, Timesteps: 24, Success: true}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := sink.RecordProbe(coremetrics.ProbeEvent{Probes: 31, FeasibleLoadMW: 1300}); err != nil {
		t.Fatalf("record probe: %v", err)
	}
	if err := sink.RecordFetch(coremetrics.FetchEvent{Feed: "actual_load", Attempts: 2, Success: true}); err != nil {
		t.Fatalf("record fetch: %v", err)
	}
	if got := testutil.ToFloat64(sink.runs.WithLabelValues("true")); got != 1 {
		t.Errorf("runs counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sink.oracleLoad); got != 1300 {
		t.Errorf("feasible load gauge = %v, want 1300", got)
	}
	if got := testutil.ToFloat64(sink.fetches.WithLabelValues("actual_load", "true")); got != 2 {
		t.Errorf("fetch counter = %v, want 2", got)
	}
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
