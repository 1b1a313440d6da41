package scaling

import (
	"errors"
	"math"
	"testing"

	"github.com/acdcgrid/ghds/core/model"
)

func envelope(x0, y0, x1, y1, x2, y2 float64) model.FeasibilityEnvelope {
	return model.FeasibilityEnvelope{
		Base:       model.OperatingPoint{ReferenceMetric: x0, FeasibleBound: y0},
		High:       model.OperatingPoint{ReferenceMetric: x1, FeasibleBound: y1},
		NoTransfer: model.OperatingPoint{ReferenceMetric: x2, FeasibleBound: y2},
	}
}

func TestFitEnvelope_ReproducesCalibrationPoints(t *testing.T) {
	env := envelope(500, 1000, 700, 1300, 300, 1500)
	coeffs, err := FitEnvelope(env)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	cases := []struct{ x, want float64 }{
		{500, 1000},
		{700, 1300},
		{300, 1500},
	}
	for _, c := range cases {
		got := coeffs.Evaluate(c.x)
		if math.Abs(got-c.want) > 1e-6 {
			t.Errorf("Evaluate(%v) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestFitEnvelope_ArbitraryPoints(t *testing.T) {
	cases := []struct {
		x [3]float64
		y [3]float64
	}{
		{[3]float64{1, 2, 3}, [3]float64{1, 4, 9}},
		{[3]float64{-5, 0, 5}, [3]float64{10, -2, 10}},
		{[3]float64{100, 250.5, 901}, [3]float64{0, 0, 0}},
		{[3]float64{0.1, 0.2, 0.3}, [3]float64{7, 7, 7}},
	}
	for _, c := range cases {
		env := envelope(c.x[0], c.y[0], c.x[1], c.y[1], c.x[2], c.y[2])
		coeffs, err := FitEnvelope(env)
		if err != nil {
			t.Fatalf("fit %v: %v", c.x, err)
		}
		for i := range c.x {
			got := coeffs.Evaluate(c.x[i])
			if math.Abs(got-c.y[i]) > 1e-6 {
				t.Errorf("points %v: Evaluate(%v) = %v, want %v", c.x, c.x[i], got, c.y[i])
			}
		}
	}
}

func TestFitEnvelope_Singular(t *testing.T) {
	env := envelope(500, 1000, 500, 1300, 300, 1500)
	if _, err := FitEnvelope(env); !errors.Is(err, ErrSingularEnvelope) {
		t.Fatalf("expected ErrSingularEnvelope, got %v", err)
	}
	env = envelope(500, 1000, 700, 1300, 700, 1500)
	if _, err := FitEnvelope(env); !errors.Is(err, ErrSingularEnvelope) {
		t.Fatalf("expected ErrSingularEnvelope, got %v", err)
	}
}

func TestEvaluateSeries(t *testing.T) {
	coeffs := EnvelopeCoefficients{A: 1, B: -2, C: 3}
	xs := []float64{0, 1, 2, -1}
	got := coeffs.EvaluateSeries(xs)
	want := []float64{3, 2, 3, 6}
	for i := range xs {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("series[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
