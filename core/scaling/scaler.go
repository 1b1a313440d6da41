package scaling

import (
	"errors"
	"fmt"

	"github.com/acdcgrid/ghds/core/model"
)

// ErrZeroDemand indicates a raw historical sample of zero, for which no
// scaling factor can be derived. The pipeline fails fast rather than guess;
// a zero sample in zonal load data means the feed is corrupt.
var ErrZeroDemand = errors.New("zero demand sample")

// ScaleQuadratic maps the raw series through the fitted envelope, so each
// sample lands on the feasibility-consistent curve. The returned factor
// series holds scaled[t]/raw[t] per timestep.
func ScaleQuadratic(raw model.ZoneSeries, coeffs EnvelopeCoefficients) (model.ZoneSeries, []float64, error) {
	scaled := model.ZoneSeries{
		Zone:       raw.Zone,
		Timestamps: raw.Timestamps,
		Values:     coeffs.EvaluateSeries(raw.Values),
	}
	factors, err := scalingFactors(raw, scaled)
	if err != nil {
		return model.ZoneSeries{}, nil, err
	}
	return scaled, factors, nil
}

// ScaleToPeak rescales the raw series by the single ratio targetPeak/max(raw),
// preserving its shape and anchoring its amplitude to the known feasible
// peak. The factor series is constant but returned per timestep to keep the
// two zones symmetric for downstream stages.
func ScaleToPeak(raw model.ZoneSeries, targetPeak float64) (model.ZoneSeries, []float64, error) {
	peak := raw.Peak()
	if peak == 0 {
		return model.ZoneSeries{}, nil, fmt.Errorf("%w: zone %s has zero peak", ErrZeroDemand, raw.Zone)
	}
	ratio := targetPeak / peak
	values := make([]float64, raw.Len())
	for i, v := range raw.Values {
		values[i] = ratio * v
	}
	scaled := model.ZoneSeries{Zone: raw.Zone, Timestamps: raw.Timestamps, Values: values}
	factors, err := scalingFactors(raw, scaled)
	if err != nil {
		return model.ZoneSeries{}, nil, err
	}
	return scaled, factors, nil
}

func scalingFactors(raw, scaled model.ZoneSeries) ([]float64, error) {
	factors := make([]float64, raw.Len())
	for i, v := range raw.Values {
		if v == 0 {
			return nil, fmt.Errorf("%w: zone %s at index %d", ErrZeroDemand, raw.Zone, i)
		}
		factors[i] = scaled.Values[i] / v
	}
	return factors, nil
}
