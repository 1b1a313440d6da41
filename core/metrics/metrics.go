package metrics

import (
	"time"

	"github.com/acdcgrid/ghds/core/model"
)

// RunEvent summarises one completed (or failed) pipeline run.
type RunEvent struct {
	RunID     string
	Date      time.Time
	Duration  time.Duration
	Timesteps int
	Success   bool
}

// PipelineSink records pipeline runs for observability purposes.
type PipelineSink interface {
	RecordRun(ev RunEvent) error
}

// ProbeEvent captures the outcome of one boundary search.
type ProbeEvent struct {
	Probes         int
	FeasibleLoadMW float64
	Duration       time.Duration
	Time           time.Time
}

// ProbeRecorder records boundary-search events.
type ProbeRecorder interface {
	RecordProbe(ev ProbeEvent) error
}

// FetchEvent captures one historical-data fetch, including retries spent.
type FetchEvent struct {
	Feed     string
	Attempts int
	Success  bool
	Time     time.Time
}

// FetchRecorder records historical-data fetch events.
type FetchRecorder interface {
	RecordFetch(ev FetchEvent) error
}

// ScenarioRecorder is implemented by sinks able to persist the scenario
// series themselves, not just run counters.
type ScenarioRecorder interface {
	RecordScenario(s model.DispatchScenario) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                    { return nil }
func (NopSink) RecordProbe(ProbeEvent) error                { return nil }
func (NopSink) RecordFetch(FetchEvent) error                { return nil }
func (NopSink) RecordScenario(model.DispatchScenario) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
