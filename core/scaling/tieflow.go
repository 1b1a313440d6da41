package scaling

import (
	"errors"
	"fmt"

	"github.com/acdcgrid/ghds/core/model"
)

// ErrZeroTotalDemand indicates both zones' transfer-adjusted totals vanish at
// one timestep, leaving the blended tie-flow factor undefined.
var ErrZeroTotalDemand = errors.New("zero combined zone total")

// EstimateTieFlow scales the historically observed interface limit by the
// demand-weighted blend of both zones' scaling factors:
//
//	factor[t] = (f1[t]*tot1[t] + f2[t]*tot2[t]) / (2*(tot1[t]+tot2[t]))
//	tie[t]    = limit[t] * factor[t] / 2
//
// This approximates how the inter-zone transfer should scale with the
// combined demand rescaling without re-solving power flow for the
// interconnection.
func EstimateTieFlow(factors1 []float64, total1 model.ZoneSeries, factors2 []float64, total2 model.ZoneSeries, limit model.ZoneSeries) (model.ZoneSeries, error) {
	n := total1.Len()
	if total2.Len() != n || limit.Len() != n || len(factors1) != n || len(factors2) != n {
		return model.ZoneSeries{}, fmt.Errorf("tie flow inputs not index-aligned: totals %d/%d, limit %d, factors %d/%d",
			total1.Len(), total2.Len(), limit.Len(), len(factors1), len(factors2))
	}
	values := make([]float64, n)
	for t := 0; t < n; t++ {
		denom := total1.Values[t] + total2.Values[t]
		if denom == 0 {
			return model.ZoneSeries{}, fmt.Errorf("%w at index %d", ErrZeroTotalDemand, t)
		}
		factor := (factors1[t]*total1.Values[t] + factors2[t]*total2.Values[t]) / (2 * denom)
		values[t] = limit.Values[t] * factor / 2
	}
	return model.ZoneSeries{Zone: limit.Zone, Timestamps: limit.Timestamps, Values: values}, nil
}
