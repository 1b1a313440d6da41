package grid

import (
	"fmt"
)

// LoadProfile carries the per-timestep active and optional reactive demand
// for one load. When Q is nil the reactive profile is derived from the
// load's base power factor.
type LoadProfile struct {
	P []float64
	Q []float64
}

// Assignment maps time-series profiles onto named grid entities for one run.
type Assignment struct {
	// T is the shared profile length.
	T int
	// Loads maps load ID to its demand profile.
	Loads map[string]LoadProfile
	// Generators maps generator ID to its output profile.
	Generators map[string][]float64
	// BranchRatings assigns rating profiles by branch index; branches past
	// the end of the slice get DefaultBranchRating.
	BranchRatings       []float64
	DefaultBranchRating float64
	// HVDC settings applied to every DC link.
	HVDCSetpointMW float64
	HVDCRateMVA    float64
	HVDCResistance float64
}

// AssignProfiles returns a new grid with the assignment's profiles applied.
// The input grid is left untouched. A profile keyed on an ID the grid does
// not know is fatal: mapping data onto a missing entity would silently drop
// part of the scenario.
func AssignProfiles(g *Grid, a Assignment) (*Grid, error) {
	loads := make([]Load, len(g.Loads))
	copy(loads, g.Loads)
	gens := make([]Generator, len(g.Generators))
	copy(gens, g.Generators)
	branches := make([]Branch, len(g.Branches))
	copy(branches, g.Branches)
	hvdc := make([]HVDCLine, len(g.HVDC))
	copy(hvdc, g.HVDC)

	for id, prof := range a.Loads {
		i, ok := g.loadIdx[id]
		if !ok {
			return nil, fmt.Errorf("%w: load %s", ErrUnknownEntity, id)
		}
		if len(prof.P) != a.T {
			return nil, fmt.Errorf("load %s: profile length %d, expected %d", id, len(prof.P), a.T)
		}
		loads[i].PProfile = prof.P
		if prof.Q != nil {
			if len(prof.Q) != a.T {
				return nil, fmt.Errorf("load %s: reactive profile length %d, expected %d", id, len(prof.Q), a.T)
			}
			loads[i].QProfile = prof.Q
		} else {
			loads[i].QProfile = derivedQ(g.Loads[i], prof.P)
		}
	}
	for id, prof := range a.Generators {
		i, ok := g.genIdx[id]
		if !ok {
			return nil, fmt.Errorf("%w: generator %s", ErrUnknownEntity, id)
		}
		if len(prof) != a.T {
			return nil, fmt.Errorf("generator %s: profile length %d, expected %d", id, len(prof), a.T)
		}
		gens[i].PProfile = prof
	}
	for i := range branches {
		rate := a.DefaultBranchRating
		if i < len(a.BranchRatings) {
			rate = a.BranchRatings[i]
		}
		branches[i].RateProfile = flat(rate, a.T)
	}
	for i := range hvdc {
		hvdc[i].ROhm = a.HVDCResistance
		hvdc[i].PSetMW = a.HVDCSetpointMW
		hvdc[i].VSetFromPU = 1
		hvdc[i].VSetToPU = 1
		hvdc[i].RateMVA = a.HVDCRateMVA
		hvdc[i].PSetProfile = flat(a.HVDCSetpointMW, a.T)
		hvdc[i].RateProfile = flat(a.HVDCRateMVA, a.T)
	}
	return New(g.Buses, loads, gens, branches, hvdc)
}

// derivedQ scales the base reactive power with the active profile, keeping
// the load's base power factor.
func derivedQ(l Load, p []float64) []float64 {
	base := l.PMW
	if base == 0 {
		base = 1e-12
	}
	ratio := l.QMVAr / base
	q := make([]float64, len(p))
	for i, v := range p {
		q[i] = ratio * v
	}
	return q
}

func flat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
