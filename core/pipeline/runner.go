// Package pipeline runs the full scenario generation sequence for one date:
// fetch historical zone loads and interface flows, search the feasibility
// boundary through the power-flow oracle, fit the envelope, rescale both
// areas, allocate generation and estimate the tie flow, then map every
// series onto the grid model.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acdcgrid/ghds/core/grid"
	"github.com/acdcgrid/ghds/core/logger"
	coremetrics "github.com/acdcgrid/ghds/core/metrics"
	"github.com/acdcgrid/ghds/core/model"
	"github.com/acdcgrid/ghds/core/scaling"
	"github.com/acdcgrid/ghds/internal/eventbus"
)

// HistoricalFeed supplies one date of historical operating data.
type HistoricalFeed interface {
	ZoneLoad(ctx context.Context, zone string, date time.Time) (model.ZoneSeries, error)
	InterfaceFlows(ctx context.Context, name string, date time.Time) (model.InterfaceSeries, error)
}

// AreaSpec names one area and the historical zones aggregated into it.
type AreaSpec struct {
	Name   string
	Zones  []string
	LoadID string
	// TargetPeakMW anchors the peak-scaled area; unused for the quadratic
	// area.
	TargetPeakMW float64
}

// ProbeSpec parameterizes the boundary search and the fixed envelope points.
type ProbeSpec struct {
	StepMW              float64
	GenerationCeilingMW float64
	MaxProbes           int
	LoadID              string
	GeneratorID         string
	NoTransferLoadMW    float64
}

// MappingSpec carries the constants mapped onto the grid alongside the
// computed series.
type MappingSpec struct {
	BranchRatingsMVA       []float64
	DefaultBranchRatingMVA float64
	HVDCSetpointMW         float64
	HVDCRateMVA            float64
	HVDCResistanceOhm      float64
}

// Config assembles everything a Runner needs besides its collaborators.
type Config struct {
	PeakArea      AreaSpec
	QuadArea      AreaSpec
	Generators    []model.GeneratorSpec
	Probe         ProbeSpec
	InterfaceName string
	Mapping       MappingSpec
}

// Validate checks the runner configuration.
func (c Config) Validate() error {
	if c.PeakArea.Name == "" || c.QuadArea.Name == "" {
		return fmt.Errorf("both area names are required")
	}
	if len(c.PeakArea.Zones) == 0 || len(c.QuadArea.Zones) == 0 {
		return fmt.Errorf("both areas need at least one zone")
	}
	if c.PeakArea.TargetPeakMW <= 0 {
		return fmt.Errorf("target peak must be positive")
	}
	if c.Probe.NoTransferLoadMW <= 0 {
		return fmt.Errorf("no-transfer load must be positive")
	}
	if c.Probe.LoadID == "" || c.Probe.GeneratorID == "" {
		return fmt.Errorf("probe load and generator entities are required")
	}
	if c.InterfaceName == "" {
		return fmt.Errorf("interface name is required")
	}
	if len(c.Generators) == 0 {
		return fmt.Errorf("at least one generator is required")
	}
	residuals := 0
	for _, g := range c.Generators {
		if err := g.Validate(); err != nil {
			return err
		}
		if g.Residual {
			residuals++
		}
	}
	if residuals != 1 {
		return fmt.Errorf("exactly one residual generator is required, found %d", residuals)
	}
	return nil
}

// Result is one completed run: the scenario series and the grid with every
// profile assigned.
type Result struct {
	Scenario model.DispatchScenario
	Grid     *grid.Grid
}

// Runner executes the pipeline. It is stateless across runs and safe to
// reuse for successive dates.
type Runner struct {
	cfg    Config
	feed   HistoricalFeed
	oracle scaling.Oracle
	grid   *grid.Grid
	sink   coremetrics.PipelineSink
	bus    *eventbus.Bus
	log    logger.Logger
}

// NewRunner wires a Runner. The sink, bus and logger are optional.
func NewRunner(cfg Config, feed HistoricalFeed, oracle scaling.Oracle, g *grid.Grid, sink coremetrics.PipelineSink, bus *eventbus.Bus, log logger.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	if feed == nil || oracle == nil || g == nil {
		return nil, fmt.Errorf("feed, oracle and grid are required")
	}
	if _, err := g.Load(cfg.Probe.LoadID); err != nil {
		return nil, err
	}
	if _, err := g.Generator(cfg.Probe.GeneratorID); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Runner{cfg: cfg, feed: feed, oracle: oracle, grid: g, sink: sink, bus: bus, log: log}, nil
}

// Run generates the dispatch scenario for one historical date.
func (r *Runner) Run(ctx context.Context, date time.Time) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()
	r.log.Infof("run %s: generating scenario for %s", runID, date.Format("2006-01-02"))

	res, err := r.run(ctx, runID, date)
	r.recordRun(coremetrics.RunEvent{
		RunID:     runID,
		Date:      date,
		Duration:  time.Since(start),
		Timesteps: timesteps(res),
		Success:   err == nil,
	})
	if err != nil {
		r.log.Errorf("run %s failed: %v", runID, err)
		return nil, err
	}
	r.log.Infof("run %s: scenario complete, %d timesteps", runID, len(res.Scenario.Timestamps))
	return res, nil
}

func (r *Runner) run(ctx context.Context, runID string, date time.Time) (*Result, error) {
	data, err := r.fetch(ctx, date)
	if r.publish(runID, eventbus.StageFetch, err); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	base, probed, err := r.probe(ctx)
	if r.publish(runID, eventbus.StageProbe, err); err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}

	// The envelope and the scalers work on the raw aggregated area loads;
	// the transfer-adjusted totals enter only the allocation and tie-flow
	// stages below.
	envelope := model.FeasibilityEnvelope{
		Base:       model.OperatingPoint{ReferenceMetric: data.load2.Mean(), FeasibleBound: base.LoadMW},
		High:       model.OperatingPoint{ReferenceMetric: data.load2.Peak(), FeasibleBound: probed.State.LoadMW},
		NoTransfer: model.OperatingPoint{ReferenceMetric: data.load2.Min(), FeasibleBound: r.cfg.Probe.NoTransferLoadMW},
	}
	coeffs, err := scaling.FitEnvelope(envelope)
	if r.publish(runID, eventbus.StageFit, err); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	zone2Scaled, factors2, err := scaling.ScaleQuadratic(data.load2, coeffs)
	var zone1Scaled model.ZoneSeries
	var factors1 []float64
	if err == nil {
		zone1Scaled, factors1, err = scaling.ScaleToPeak(data.load1, r.cfg.PeakArea.TargetPeakMW)
	}
	if r.publish(runID, eventbus.StageScale, err); err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	generators, err := r.allocate(data.total1, factors1, data.total2, factors2, zone1Scaled, zone2Scaled)
	if r.publish(runID, eventbus.StageAllocate, err); err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}

	tieFlow, err := scaling.EstimateTieFlow(factors1, data.total1, factors2, data.total2, data.limit)
	if r.publish(runID, eventbus.StageTieFlow, err); err != nil {
		return nil, fmt.Errorf("tie flow: %w", err)
	}

	result, err := r.assemble(runID, date, zone1Scaled, zone2Scaled, generators, tieFlow)
	if r.publish(runID, eventbus.StageAssemble, err); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	return result, nil
}

// historicalData is one date of fetched input: the raw aggregated area
// loads, the transfer-adjusted dispatch totals and the interface positive
// limit, all index-aligned.
type historicalData struct {
	load1, load2   model.ZoneSeries
	total1, total2 model.ZoneSeries
	limit          model.ZoneSeries
}

// fetch aggregates the historical zone loads per area and derives the
// transfer-adjusted totals from the interface flow.
func (r *Runner) fetch(ctx context.Context, date time.Time) (historicalData, error) {
	var data historicalData
	var err error
	if data.load1, err = r.areaLoad(ctx, r.cfg.PeakArea, date); err != nil {
		return data, err
	}
	if data.load2, err = r.areaLoad(ctx, r.cfg.QuadArea, date); err != nil {
		return data, err
	}
	flows, err := r.feed.InterfaceFlows(ctx, r.cfg.InterfaceName, date)
	if err != nil {
		return data, fmt.Errorf("interface %s: %w", r.cfg.InterfaceName, err)
	}

	// The exporting area serves its own demand plus the transfer, the
	// importing area correspondingly less.
	if data.total1, err = data.load1.Add(flows.FlowSeries()); err != nil {
		return data, err
	}
	if data.total2, err = data.load2.Sub(flows.FlowSeries()); err != nil {
		return data, err
	}
	data.limit = flows.PositiveLimitSeries()
	return data, nil
}

func (r *Runner) areaLoad(ctx context.Context, area AreaSpec, date time.Time) (model.ZoneSeries, error) {
	var sum model.ZoneSeries
	for i, zone := range area.Zones {
		zs, err := r.feed.ZoneLoad(ctx, zone, date)
		if err != nil {
			return model.ZoneSeries{}, fmt.Errorf("zone %s: %w", zone, err)
		}
		if i == 0 {
			sum = zs
			continue
		}
		sum, err = sum.Add(zs)
		if err != nil {
			return model.ZoneSeries{}, fmt.Errorf("zone %s: %w", zone, err)
		}
	}
	sum.Zone = area.Name
	return sum, nil
}

// probe seeds the boundary search from the grid's base operating point and
// returns both the base state and the search result.
func (r *Runner) probe(ctx context.Context) (scaling.SystemState, scaling.ProbeResult, error) {
	load, err := r.grid.Load(r.cfg.Probe.LoadID)
	if err != nil {
		return scaling.SystemState{}, scaling.ProbeResult{}, err
	}
	gen, err := r.grid.Generator(r.cfg.Probe.GeneratorID)
	if err != nil {
		return scaling.SystemState{}, scaling.ProbeResult{}, err
	}
	base := scaling.SystemState{LoadMW: load.PMW, LoadMVAr: load.QMVAr, GenerationMW: gen.PMW}

	start := time.Now()
	probed, err := scaling.Probe(ctx, base, scaling.ProbeConfig{
		StepMW:              r.cfg.Probe.StepMW,
		GenerationCeilingMW: r.cfg.Probe.GenerationCeilingMW,
		MaxProbes:           r.cfg.Probe.MaxProbes,
	}, r.oracle, r.log)
	if err != nil {
		return base, scaling.ProbeResult{}, err
	}
	if rec, ok := r.sink.(coremetrics.ProbeRecorder); ok {
		if err := rec.RecordProbe(coremetrics.ProbeEvent{
			Probes:         probed.Probes,
			FeasibleLoadMW: probed.State.LoadMW,
			Duration:       time.Since(start),
			Time:           time.Now(),
		}); err != nil {
			r.log.Warnf("probe metrics: %v", err)
		}
	}
	return base, probed, nil
}

// allocate splits both scaled area totals across the configured units and
// closes the balance on the residual unit.
func (r *Runner) allocate(total1 model.ZoneSeries, factors1 []float64, total2 model.ZoneSeries, factors2 []float64, zone1Scaled, zone2Scaled model.ZoneSeries) (map[string]model.ZoneSeries, error) {
	var units1, units2 []model.GeneratorSpec
	var residual model.GeneratorSpec
	for _, g := range r.cfg.Generators {
		if g.Residual {
			residual = g
			continue
		}
		switch g.Zone {
		case r.cfg.PeakArea.Name:
			units1 = append(units1, g)
		case r.cfg.QuadArea.Name:
			units2 = append(units2, g)
		default:
			return nil, fmt.Errorf("%w: generator %s assigned to %s", scaling.ErrUnknownGeneratorZone, g.ID, g.Zone)
		}
	}

	generators := make(map[string]model.ZoneSeries)
	if len(units1) > 0 {
		out, err := scaling.Allocate(total1, factors1, units1)
		if err != nil {
			return nil, err
		}
		for id, s := range out {
			generators[id] = s
		}
	}
	if len(units2) > 0 {
		out, err := scaling.Allocate(total2, factors2, units2)
		if err != nil {
			return nil, err
		}
		for id, s := range out {
			generators[id] = s
		}
	}
	residualSeries, err := scaling.ResidualOutput(residual, zone1Scaled, zone2Scaled, generators)
	if err != nil {
		return nil, err
	}
	generators[residual.ID] = residualSeries
	return generators, nil
}

// assemble builds the scenario and maps every series onto the grid model.
func (r *Runner) assemble(runID string, date time.Time, zone1Scaled, zone2Scaled model.ZoneSeries, generators map[string]model.ZoneSeries, tieFlow model.ZoneSeries) (*Result, error) {
	scenario := model.DispatchScenario{
		RunID:      runID,
		Date:       date,
		Timestamps: zone1Scaled.Timestamps,
		ZoneDemand: map[string]model.ZoneSeries{
			r.cfg.PeakArea.Name: zone1Scaled,
			r.cfg.QuadArea.Name: zone2Scaled,
		},
		Generators: generators,
		TieFlow:    tieFlow,
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	genProfiles := make(map[string][]float64, len(generators))
	for id, s := range generators {
		genProfiles[id] = s.Values
	}
	profiled, err := grid.AssignProfiles(r.grid, grid.Assignment{
		T: len(scenario.Timestamps),
		Loads: map[string]grid.LoadProfile{
			r.cfg.PeakArea.LoadID: {P: zone1Scaled.Values},
			r.cfg.QuadArea.LoadID: {P: zone2Scaled.Values},
		},
		Generators:          genProfiles,
		BranchRatings:       r.cfg.Mapping.BranchRatingsMVA,
		DefaultBranchRating: r.cfg.Mapping.DefaultBranchRatingMVA,
		HVDCSetpointMW:      r.cfg.Mapping.HVDCSetpointMW,
		HVDCRateMVA:         r.cfg.Mapping.HVDCRateMVA,
		HVDCResistance:      r.cfg.Mapping.HVDCResistanceOhm,
	})
	if err != nil {
		return nil, err
	}

	if rec, ok := r.sink.(coremetrics.ScenarioRecorder); ok {
		if err := rec.RecordScenario(scenario); err != nil {
			r.log.Warnf("scenario metrics: %v", err)
		}
	}
	return &Result{Scenario: scenario, Grid: profiled}, nil
}

func (r *Runner) publish(runID string, stage eventbus.Stage, err error) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(eventbus.StageEvent{RunID: runID, Stage: stage, Err: err, Time: time.Now()})
}

func (r *Runner) recordRun(ev coremetrics.RunEvent) {
	if err := r.sink.RecordRun(ev); err != nil {
		r.log.Warnf("run metrics: %v", err)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

func timesteps(res *Result) int {
	if res == nil {
		return 0
	}
	return len(res.Scenario.Timestamps)
}
