package scaling

import (
	"context"
	"errors"
	"testing"

	"github.com/acdcgrid/ghds/infra/logger"
)

// thresholdOracle converges while load stays below the divergence point.
type thresholdOracle struct {
	divergeAt float64
	calls     int
}

func (o *thresholdOracle) Evaluate(_ context.Context, state SystemState) (bool, error) {
	o.calls++
	return state.LoadMW < o.divergeAt, nil
}

func TestProbe_FindsLastFeasiblePoint(t *testing.T) {
	oracle := &thresholdOracle{divergeAt: 1310}
	base := SystemState{LoadMW: 1000, LoadMVAr: 300, GenerationMW: 900}
	cfg := ProbeConfig{StepMW: 10, GenerationCeilingMW: 9999, MaxProbes: 1000}

	res, err := Probe(context.Background(), base, cfg, oracle, logger.NopLogger{})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if res.State.LoadMW != 1300 {
		t.Errorf("last feasible load = %v, want 1300", res.State.LoadMW)
	}
	if res.State.LoadMVAr != 600 {
		t.Errorf("last feasible reactive load = %v, want 600", res.State.LoadMVAr)
	}
	maxCalls := 32 // ceil((1310-1000)/10) + 1
	if oracle.calls > maxCalls {
		t.Errorf("oracle called %d times, bound is %d", oracle.calls, maxCalls)
	}
}

func TestProbe_GenerationCeiling(t *testing.T) {
	oracle := &thresholdOracle{divergeAt: 1100}
	base := SystemState{LoadMW: 1000, GenerationMW: 1030}
	cfg := ProbeConfig{StepMW: 10, GenerationCeilingMW: 1050, MaxProbes: 100}

	res, err := Probe(context.Background(), base, cfg, oracle, logger.NopLogger{})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	// generation advances twice (1040, 1050) and then only load moves
	if res.State.GenerationMW != 1050 {
		t.Errorf("generation = %v, want 1050", res.State.GenerationMW)
	}
	if res.State.LoadMW != 1090 {
		t.Errorf("load = %v, want 1090", res.State.LoadMW)
	}
}

func TestProbe_SearchNotBounded(t *testing.T) {
	oracle := &thresholdOracle{divergeAt: 1e12}
	cfg := ProbeConfig{StepMW: 10, MaxProbes: 25}

	_, err := Probe(context.Background(), SystemState{LoadMW: 1000}, cfg, oracle, logger.NopLogger{})
	if !errors.Is(err, ErrSearchNotBounded) {
		t.Fatalf("expected ErrSearchNotBounded, got %v", err)
	}
	if oracle.calls != 25 {
		t.Errorf("oracle called %d times, want exactly 25", oracle.calls)
	}
}

type failingOracle struct{ after int }

func (o *failingOracle) Evaluate(context.Context, SystemState) (bool, error) {
	o.after--
	if o.after < 0 {
		return false, errors.New("solver crashed")
	}
	return true, nil
}

func TestProbe_OracleFailurePropagates(t *testing.T) {
	cfg := ProbeConfig{StepMW: 10, MaxProbes: 100}
	_, err := Probe(context.Background(), SystemState{LoadMW: 1000}, cfg, &failingOracle{after: 3}, logger.NopLogger{})
	if !errors.Is(err, ErrOracleFailure) {
		t.Fatalf("expected ErrOracleFailure, got %v", err)
	}
}

func TestProbeConfig_Validate(t *testing.T) {
	if err := (ProbeConfig{StepMW: 0, MaxProbes: 10}).Validate(); err == nil {
		t.Errorf("zero step accepted")
	}
	if err := (ProbeConfig{StepMW: 10, MaxProbes: 0}).Validate(); err == nil {
		t.Errorf("zero probe cap accepted")
	}
	if err := (ProbeConfig{StepMW: 10, MaxProbes: 10}).Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
