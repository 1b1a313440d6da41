package scaling

import (
	"context"
	"errors"
	"fmt"

	"github.com/acdcgrid/ghds/core/logger"
)

// SystemState is one candidate operating point submitted to the power-flow
// oracle: the probed load (active and reactive) and the matching generation.
type SystemState struct {
	LoadMW       float64
	LoadMVAr     float64
	GenerationMW float64
}

// Oracle is the external AC power-flow solver. Evaluate reports whether the
// solve converged for the candidate state. A non-nil error is an
// infrastructure failure (solver crash, transport), never a numerical
// divergence, and is not retried.
type Oracle interface {
	Evaluate(ctx context.Context, state SystemState) (bool, error)
}

// ErrSearchNotBounded indicates the oracle kept converging past the
// configured probe cap; without the cap the search would not terminate.
var ErrSearchNotBounded = errors.New("boundary search not bounded")

// ErrOracleFailure wraps infrastructure failures of the power-flow oracle.
var ErrOracleFailure = errors.New("oracle failure")

// ProbeConfig bounds the boundary search.
type ProbeConfig struct {
	// StepMW is the fixed increment added to load and generation each probe.
	StepMW float64
	// GenerationCeilingMW stops generation from advancing past this value;
	// only load keeps increasing afterwards.
	GenerationCeilingMW float64
	// MaxProbes caps the number of oracle calls. Exceeding it is fatal.
	MaxProbes int
}

// Validate checks the search parameters.
func (c ProbeConfig) Validate() error {
	if c.StepMW <= 0 {
		return fmt.Errorf("probe step must be positive, got %v", c.StepMW)
	}
	if c.MaxProbes <= 0 {
		return fmt.Errorf("max probes must be positive, got %d", c.MaxProbes)
	}
	return nil
}

// ProbeResult is the outcome of a boundary search: the last operating state
// the oracle accepted, and how many oracle calls the search spent.
type ProbeResult struct {
	State  SystemState
	Probes int
}

// Probe walks the system state upward in fixed steps, querying the oracle
// after each increment, until the first non-convergence. It then rolls back
// exactly one step and returns that last feasible state. Non-convergence is
// the expected search terminator, not an error. The probes are inherently
// sequential: each candidate builds on the previous accepted state.
func Probe(ctx context.Context, base SystemState, cfg ProbeConfig, oracle Oracle, log logger.Logger) (ProbeResult, error) {
	if err := cfg.Validate(); err != nil {
		return ProbeResult{}, err
	}
	state := base
	for n := 1; n <= cfg.MaxProbes; n++ {
		candidate := state
		candidate.LoadMW += cfg.StepMW
		candidate.LoadMVAr += cfg.StepMW
		if cfg.GenerationCeilingMW <= 0 || candidate.GenerationMW < cfg.GenerationCeilingMW {
			candidate.GenerationMW += cfg.StepMW
		}
		converged, err := oracle.Evaluate(ctx, candidate)
		if err != nil {
			return ProbeResult{}, fmt.Errorf("%w: probe %d at %.1f MW: %v", ErrOracleFailure, n, candidate.LoadMW, err)
		}
		if !converged {
			log.Infof("boundary found after %d probes: last feasible load %.1f MW", n, state.LoadMW)
			return ProbeResult{State: state, Probes: n}, nil
		}
		state = candidate
	}
	return ProbeResult{}, fmt.Errorf("%w: oracle still converging after %d probes from %.1f MW", ErrSearchNotBounded, cfg.MaxProbes, base.LoadMW)
}
