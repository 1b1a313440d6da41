package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/acdcgrid/ghds/core/metrics"
)

// PromSink records pipeline events in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	probes      prometheus.Histogram
	oracleLoad  prometheus.Gauge
	fetches     *prometheus.CounterVec
}

// NewPromSink registers pipeline metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ghds_runs_total",
		Help: "Total number of pipeline runs",
	}, []string{"success"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ghds_run_duration_seconds",
		Help:    "End-to-end pipeline run duration",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	probes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ghds_probe_oracle_calls",
		Help:    "Number of oracle calls spent per boundary search",
		Buckets: prometheus.LinearBuckets(0, 25, 10),
	})
	oracleLoad := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ghds_probe_feasible_load_mw",
		Help: "Last feasible load discovered by the boundary search",
	})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ghds_fetch_attempts_total",
		Help: "Historical-data fetch attempts, including retries",
	}, []string{"feed", "success"})

	for _, c := range []prometheus.Collector{runs, runDuration, probes, oracleLoad, fetches} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{runs: runs, runDuration: runDuration, probes: probes, oracleLoad: oracleLoad, fetches: fetches}, nil
}

// RecordRun increments the run counter and observes the run duration.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(strconv.FormatBool(ev.Success)).Inc()
	s.runDuration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordProbe observes the oracle-call count and feasible load.
func (s *PromSink) RecordProbe(ev coremetrics.ProbeEvent) error {
	s.probes.Observe(float64(ev.Probes))
	s.oracleLoad.Set(ev.FeasibleLoadMW)
	return nil
}

// RecordFetch counts one fetch attempt cycle per feed.
func (s *PromSink) RecordFetch(ev coremetrics.FetchEvent) error {
	s.fetches.WithLabelValues(ev.Feed, strconv.FormatBool(ev.Success)).Add(float64(ev.Attempts))
	return nil
}
