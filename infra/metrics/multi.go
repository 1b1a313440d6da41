package metrics

import (
	coremetrics "github.com/acdcgrid/ghds/core/metrics"
	"github.com/acdcgrid/ghds/core/model"
)

// MultiSink fans pipeline events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.PipelineSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.PipelineSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev coremetrics.RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordProbe forwards boundary-search events to sinks that record them.
func (m *MultiSink) RecordProbe(ev coremetrics.ProbeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ProbeRecorder); ok {
			if err := rec.RecordProbe(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFetch forwards fetch events to sinks that record them.
func (m *MultiSink) RecordFetch(ev coremetrics.FetchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FetchRecorder); ok {
			if err := rec.RecordFetch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordScenario forwards the scenario to sinks that persist series.
func (m *MultiSink) RecordScenario(sc model.DispatchScenario) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ScenarioRecorder); ok {
			if err := rec.RecordScenario(sc); err != nil {
				return err
			}
		}
	}
	return nil
}
