package model

import "fmt"

// OperatingPoint is one calibration sample relating a reference metric of the
// raw demand (for example its mean) to a known feasible generation or load
// ceiling discovered on the grid model.
type OperatingPoint struct {
	ReferenceMetric float64
	FeasibleBound   float64
}

// FeasibilityEnvelope is the set of exactly three calibration points the
// quadratic fit is anchored on. Base and High come from the grid model and
// the boundary search; NoTransfer is an externally calibrated constant for
// the zero-exchange operating condition.
type FeasibilityEnvelope struct {
	Base       OperatingPoint
	High       OperatingPoint
	NoTransfer OperatingPoint
}

// Points returns the calibration points in fit order.
func (e FeasibilityEnvelope) Points() [3]OperatingPoint {
	return [3]OperatingPoint{e.Base, e.High, e.NoTransfer}
}

// Validate rejects degenerate envelopes whose reference metrics are not
// pairwise distinct. Such an envelope has no unique quadratic through it.
func (e FeasibilityEnvelope) Validate() error {
	p := e.Points()
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if p[i].ReferenceMetric == p[j].ReferenceMetric {
				return fmt.Errorf("reference metrics %d and %d coincide at %v", i, j, p[i].ReferenceMetric)
			}
		}
	}
	return nil
}
