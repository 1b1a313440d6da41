package scaling

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/acdcgrid/ghds/core/model"
)

// ErrSingularEnvelope indicates two calibration points share a reference
// metric, so no unique quadratic passes through the envelope.
var ErrSingularEnvelope = errors.New("singular envelope")

// EnvelopeCoefficients are the coefficients of the fitted quadratic
// feasibleBound = A*x^2 + B*x + C. They are computed once per run and
// immutable thereafter.
type EnvelopeCoefficients struct {
	A, B, C float64
}

// FitEnvelope solves the exact 3x3 Vandermonde system through the three
// calibration points. This is interpolation, not regression: the returned
// quadratic reproduces every point exactly.
func FitEnvelope(env model.FeasibilityEnvelope) (EnvelopeCoefficients, error) {
	if err := env.Validate(); err != nil {
		return EnvelopeCoefficients{}, fmt.Errorf("%w: %v", ErrSingularEnvelope, err)
	}
	points := env.Points()
	a := mat.NewDense(3, 3, nil)
	b := mat.NewVecDense(3, nil)
	for i, p := range points {
		x := p.ReferenceMetric
		a.Set(i, 0, x*x)
		a.Set(i, 1, x)
		a.Set(i, 2, 1)
		b.SetVec(i, p.FeasibleBound)
	}
	var coeffs mat.VecDense
	if err := coeffs.SolveVec(a, b); err != nil {
		return EnvelopeCoefficients{}, fmt.Errorf("%w: %v", ErrSingularEnvelope, err)
	}
	return EnvelopeCoefficients{A: coeffs.AtVec(0), B: coeffs.AtVec(1), C: coeffs.AtVec(2)}, nil
}

// Evaluate applies the quadratic to a single reference metric.
func (c EnvelopeCoefficients) Evaluate(x float64) float64 {
	return c.A*x*x + c.B*x + c.C
}

// EvaluateSeries applies the quadratic elementwise. Pure, no state.
func (c EnvelopeCoefficients) EvaluateSeries(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = c.Evaluate(x)
	}
	return out
}
