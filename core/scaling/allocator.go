package scaling

import (
	"errors"
	"fmt"

	"github.com/acdcgrid/ghds/core/model"
)

// ErrUnknownGeneratorZone indicates a generator spec references a zone the
// allocation does not know about.
var ErrUnknownGeneratorZone = errors.New("unknown generator zone")

// Allocate splits one zone's transfer-adjusted total across its
// capacity-allocated units. The capacity split happens on the pre-scaling
// series; the feasibility rescale is applied afterwards through the zone's
// factor series. The two corrections are independent: how flow divides among
// co-located units does not depend on how much total demand must shrink or
// grow to stay feasible.
//
// Residual units are skipped here; their output is defined by
// ResidualOutput over the whole zone pairing.
func Allocate(zoneTotal model.ZoneSeries, factors []float64, units []model.GeneratorSpec) (map[string]model.ZoneSeries, error) {
	if len(factors) != zoneTotal.Len() {
		return nil, fmt.Errorf("zone %s: %d factors for %d samples", zoneTotal.Zone, len(factors), zoneTotal.Len())
	}
	var capacity float64
	for _, u := range units {
		if err := u.Validate(); err != nil {
			return nil, err
		}
		if u.Zone != zoneTotal.Zone {
			return nil, fmt.Errorf("%w: generator %s assigned to %s, allocating %s", ErrUnknownGeneratorZone, u.ID, u.Zone, zoneTotal.Zone)
		}
		if !u.Residual {
			capacity += u.CapacityMW
		}
	}
	out := make(map[string]model.ZoneSeries, len(units))
	for _, u := range units {
		if u.Residual {
			continue
		}
		share := u.CapacityMW / capacity
		values := make([]float64, zoneTotal.Len())
		for t, v := range zoneTotal.Values {
			values[t] = v * share * factors[t]
		}
		out[u.ID] = model.ZoneSeries{Zone: u.Zone, Timestamps: zoneTotal.Timestamps, Values: values}
	}
	return out, nil
}

// ResidualOutput computes the balancing unit's series for the zone pairing:
// whatever remains of both zones' scaled demand after the capacity-allocated
// units are subtracted. The result may go negative, which models reverse
// flow or curtailment on the balancing generator; conservation is the
// invariant, not sign.
func ResidualOutput(unit model.GeneratorSpec, zone1Scaled, zone2Scaled model.ZoneSeries, allocated map[string]model.ZoneSeries) (model.ZoneSeries, error) {
	if err := unit.Validate(); err != nil {
		return model.ZoneSeries{}, err
	}
	if !unit.Residual {
		return model.ZoneSeries{}, fmt.Errorf("generator %s is not the residual unit", unit.ID)
	}
	if zone1Scaled.Len() != zone2Scaled.Len() {
		return model.ZoneSeries{}, fmt.Errorf("zone series length mismatch: %d vs %d", zone1Scaled.Len(), zone2Scaled.Len())
	}
	values := make([]float64, zone1Scaled.Len())
	for t := range values {
		values[t] = zone1Scaled.Values[t] + zone2Scaled.Values[t]
	}
	for id, series := range allocated {
		if series.Len() != len(values) {
			return model.ZoneSeries{}, fmt.Errorf("generator %s: series length %d, expected %d", id, series.Len(), len(values))
		}
		for t, v := range series.Values {
			values[t] -= v
		}
	}
	return model.ZoneSeries{Zone: unit.Zone, Timestamps: zone1Scaled.Timestamps, Values: values}, nil
}
