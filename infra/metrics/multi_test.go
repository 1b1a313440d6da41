package metrics

import (
	"testing"

	coremetrics "github.com/acdcgrid/ghds/core/metrics"
	"github.com/acdcgrid/ghds/core/model"
)

type recordSink struct {
	runs   int
	probes int
}

func (r *recordSink) RecordRun(coremetrics.RunEvent) error     { return incr(&r.runs) }
func (r *recordSink) RecordProbe(coremetrics.ProbeEvent) error { return incr(&r.probes) }

func incr(n *int) error { *n++; return nil }

// runOnlySink does not implement ProbeRecorder.
type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordRun(coremetrics.RunEvent) error { return incr(&r.runs) }

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnlySink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(coremetrics.RunEvent{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordProbe(coremetrics.ProbeEvent{}); err != nil {
		t.Fatalf("record probe: %v", err)
	}
	if err := m.RecordScenario(model.DispatchScenario{}); err != nil {
		t.Fatalf("record scenario: %v", err)
	}
	if s1.runs != 1 || s1.probes != 1 {
		t.Fatalf("events not forwarded to full sink")
	}
	if s2.runs != 1 {
		t.Fatalf("run not forwarded to run-only sink")
	}
}
