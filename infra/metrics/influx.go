package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/acdcgrid/ghds/core/metrics"
	"github.com/acdcgrid/ghds/core/model"
	"github.com/acdcgrid/ghds/infra/logger"
)

// InfluxSink writes pipeline events and scenario series to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.PipelineSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one run summary point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ghds_run").
		AddTag("run_id", ev.RunID).
		AddTag("date", ev.Date.Format("2006-01-02")).
		AddField("duration_seconds", ev.Duration.Seconds()).
		AddField("timesteps", ev.Timesteps).
		AddField("success", ev.Success).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordProbe writes one boundary-search point.
func (s *InfluxSink) RecordProbe(ev coremetrics.ProbeEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ghds_probe").
		AddField("oracle_calls", ev.Probes).
		AddField("feasible_load_mw", ev.FeasibleLoadMW).
		AddField("duration_seconds", ev.Duration.Seconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordScenario writes every scenario series as per-timestep points.
func (s *InfluxSink) RecordScenario(sc model.DispatchScenario) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for zone, series := range sc.ZoneDemand {
		if err := s.writeSeries(ctx, sc.RunID, "zone_demand_mw", zone, series); err != nil {
			return err
		}
	}
	for id, series := range sc.Generators {
		if err := s.writeSeries(ctx, sc.RunID, "generator_mw", id, series); err != nil {
			return err
		}
	}
	return s.writeSeries(ctx, sc.RunID, "tie_flow_mw", sc.TieFlow.Zone, sc.TieFlow)
}

func (s *InfluxSink) writeSeries(ctx context.Context, runID, field, name string, series model.ZoneSeries) error {
	for t := 0; t < series.Len(); t++ {
		p := write.NewPointWithMeasurement("ghds_scenario").
			AddTag("run_id", runID).
			AddTag("name", name).
			AddField(field, series.Values[t]).
			SetTime(series.Timestamps[t])
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
