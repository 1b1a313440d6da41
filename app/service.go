// Package app wires the configured infrastructure into a runnable pipeline
// service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/acdcgrid/ghds/config"
	coremetrics "github.com/acdcgrid/ghds/core/metrics"
	"github.com/acdcgrid/ghds/core/model"
	"github.com/acdcgrid/ghds/core/pipeline"
	"github.com/acdcgrid/ghds/infra/logger"
	"github.com/acdcgrid/ghds/infra/metrics"
	"github.com/acdcgrid/ghds/infra/mqtt"
	"github.com/acdcgrid/ghds/infra/nyiso"
	"github.com/acdcgrid/ghds/infra/solver"
	"github.com/acdcgrid/ghds/internal/eventbus"
	"github.com/acdcgrid/ghds/pkg/export"
)

// Service assembles the pipeline with its configured feed, oracle, sinks and
// publisher.
type Service struct {
	Runner    *pipeline.Runner
	Feed      *nyiso.Client
	publisher mqtt.ScenarioPublisher
	bus       *eventbus.Bus
	log       logger.Logger
	exportDir string

	promEnabled bool
	promPort    string
	influx      *metrics.InfluxSink
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.PipelineSink
	var influx *metrics.InfluxSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		if is, ok := sink.(*metrics.InfluxSink); ok {
			influx = is
		}
		sinks = append(sinks, sink)
	}
	var sink coremetrics.PipelineSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	fetchRec, _ := sink.(coremetrics.FetchRecorder)
	feed := nyiso.NewClient(cfg.NYISO, fetchRec)

	oracle, err := solver.NewClient(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver client: %w", err)
	}

	grd, err := cfg.Grid.Build()
	if err != nil {
		return nil, fmt.Errorf("grid model: %w", err)
	}

	var publisher mqtt.ScenarioPublisher = mqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		publisher = p
	}

	bus := eventbus.New()
	runner, err := pipeline.NewRunner(pipelineConfig(cfg), feed, oracle, grd, sink, bus, logger.New("pipeline"))
	if err != nil {
		return nil, fmt.Errorf("pipeline runner: %w", err)
	}

	return &Service{
		Runner:      runner,
		Feed:        feed,
		publisher:   publisher,
		bus:         bus,
		log:         logg,
		exportDir:   cfg.Export.Dir,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
		influx:      influx,
	}, nil
}

func pipelineConfig(cfg *config.Config) pipeline.Config {
	specs := make([]model.GeneratorSpec, len(cfg.Generators))
	for i, g := range cfg.Generators {
		specs[i] = g.Spec()
	}
	return pipeline.Config{
		PeakArea: pipeline.AreaSpec{
			Name:         cfg.Areas.PeakAnchored.Name,
			Zones:        cfg.Areas.PeakAnchored.Zones,
			LoadID:       cfg.Areas.PeakAnchored.LoadID,
			TargetPeakMW: cfg.Areas.PeakAnchored.TargetPeakMW,
		},
		QuadArea: pipeline.AreaSpec{
			Name:   cfg.Areas.Quadratic.Name,
			Zones:  cfg.Areas.Quadratic.Zones,
			LoadID: cfg.Areas.Quadratic.LoadID,
		},
		Generators: specs,
		Probe: pipeline.ProbeSpec{
			StepMW:              cfg.Probe.StepMW,
			GenerationCeilingMW: cfg.Probe.GenerationCeilingMW,
			MaxProbes:           cfg.Probe.MaxProbes,
			LoadID:              cfg.Probe.LoadID,
			GeneratorID:         cfg.Probe.GeneratorID,
			NoTransferLoadMW:    cfg.Probe.NoTransferLoadMW,
		},
		InterfaceName: cfg.Interface.Name,
		Mapping: pipeline.MappingSpec{
			BranchRatingsMVA:       cfg.Mapping.BranchRatingsMVA,
			DefaultBranchRatingMVA: cfg.Mapping.DefaultBranchRatingMVA,
			HVDCSetpointMW:         cfg.Mapping.HVDCSetpointMW,
			HVDCRateMVA:            cfg.Mapping.HVDCRateMVA,
			HVDCResistanceOhm:      cfg.Mapping.HVDCResistanceOhm,
		},
	}
}

// Run generates, exports and publishes the scenario for one date.
func (s *Service) Run(ctx context.Context, date time.Time) (*pipeline.Result, error) {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("metrics server: %v", err)
			}
		}()
	}
	s.logStageEvents(ctx)

	res, err := s.Runner.Run(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := export.WriteFiles(s.exportDir, res.Scenario); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	s.log.Infof("scenario %s exported to %s", res.Scenario.RunID, s.exportDir)
	if err := s.publisher.PublishScenario(res.Scenario); err != nil {
		// Publishing is best effort; the scenario is already on disk.
		s.log.Warnf("scenario publish: %v", err)
	}
	return res, nil
}

// logStageEvents mirrors pipeline progress into the service log.
func (s *Service) logStageEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				s.bus.Unsubscribe(sub)
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Err != nil {
					s.log.Errorf("run %s: stage %s failed: %v", ev.RunID, ev.Stage, ev.Err)
				} else {
					s.log.Debugf("run %s: stage %s done", ev.RunID, ev.Stage)
				}
			}
		}
	}()
}

// Close releases the service's external connections.
func (s *Service) Close() {
	s.publisher.Close()
	if s.influx != nil {
		s.influx.Close()
	}
	s.bus.Close()
}
