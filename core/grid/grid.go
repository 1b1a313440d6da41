// Package grid holds the typed two-area grid model: buses, loads,
// generators, branches and HVDC links addressable by stable string ID.
// Entity references are validated when the model is built, so later stages
// can rely on lookups never failing silently.
package grid

import (
	"errors"
	"fmt"
)

// ErrUnknownEntity indicates a referenced bus, load or generator ID is absent
// from the grid model.
var ErrUnknownEntity = errors.New("unknown grid entity")

// ErrDuplicateEntity indicates two entities of the same kind share an ID.
var ErrDuplicateEntity = errors.New("duplicate grid entity")

// Bus is one electrical node.
type Bus struct {
	ID     string
	Name   string
	VNomKV float64
}

// Load is a named demand connected to a bus. PProfile/QProfile are set by
// AssignProfiles; a load without profiles holds only its base point.
type Load struct {
	ID       string
	Bus      string
	PMW      float64
	QMVAr    float64
	PProfile []float64
	QProfile []float64
}

// Generator is a named generating unit connected to a bus.
type Generator struct {
	ID       string
	Bus      string
	PMW      float64
	PMaxMW   float64
	PMinMW   float64
	VSetPU   float64
	PProfile []float64
}

// Branch is one AC line or transformer between two buses.
type Branch struct {
	ID          string
	From        string
	To          string
	RateMVA     float64
	RateProfile []float64
}

// HVDCLine is the DC interconnection between the two areas.
type HVDCLine struct {
	ID          string
	From        string
	To          string
	ROhm        float64
	PSetMW      float64
	VSetFromPU  float64
	VSetToPU    float64
	RateMVA     float64
	PSetProfile []float64
	RateProfile []float64
}

// Grid is the immutable two-area model. Build it with New; derive profiled
// copies with AssignProfiles.
type Grid struct {
	Buses      []Bus
	Loads      []Load
	Generators []Generator
	Branches   []Branch
	HVDC       []HVDCLine

	loadIdx map[string]int
	genIdx  map[string]int
	busIdx  map[string]int
}

// New validates the entity set and builds the lookup indexes. Duplicate IDs
// and references to undefined buses are fatal.
func New(buses []Bus, loads []Load, generators []Generator, branches []Branch, hvdc []HVDCLine) (*Grid, error) {
	g := &Grid{
		Buses:      buses,
		Loads:      loads,
		Generators: generators,
		Branches:   branches,
		HVDC:       hvdc,
		loadIdx:    make(map[string]int, len(loads)),
		genIdx:     make(map[string]int, len(generators)),
		busIdx:     make(map[string]int, len(buses)),
	}
	for i, b := range buses {
		if _, ok := g.busIdx[b.ID]; ok {
			return nil, fmt.Errorf("%w: bus %s", ErrDuplicateEntity, b.ID)
		}
		g.busIdx[b.ID] = i
	}
	for i, l := range loads {
		if _, ok := g.loadIdx[l.ID]; ok {
			return nil, fmt.Errorf("%w: load %s", ErrDuplicateEntity, l.ID)
		}
		if _, ok := g.busIdx[l.Bus]; !ok {
			return nil, fmt.Errorf("%w: load %s references bus %s", ErrUnknownEntity, l.ID, l.Bus)
		}
		g.loadIdx[l.ID] = i
	}
	for i, gen := range generators {
		if _, ok := g.genIdx[gen.ID]; ok {
			return nil, fmt.Errorf("%w: generator %s", ErrDuplicateEntity, gen.ID)
		}
		if _, ok := g.busIdx[gen.Bus]; !ok {
			return nil, fmt.Errorf("%w: generator %s references bus %s", ErrUnknownEntity, gen.ID, gen.Bus)
		}
		g.genIdx[gen.ID] = i
	}
	for _, br := range branches {
		if _, ok := g.busIdx[br.From]; !ok {
			return nil, fmt.Errorf("%w: branch %s references bus %s", ErrUnknownEntity, br.ID, br.From)
		}
		if _, ok := g.busIdx[br.To]; !ok {
			return nil, fmt.Errorf("%w: branch %s references bus %s", ErrUnknownEntity, br.ID, br.To)
		}
	}
	return g, nil
}

// Load returns the load with the given ID.
func (g *Grid) Load(id string) (Load, error) {
	i, ok := g.loadIdx[id]
	if !ok {
		return Load{}, fmt.Errorf("%w: load %s", ErrUnknownEntity, id)
	}
	return g.Loads[i], nil
}

// Generator returns the generator with the given ID.
func (g *Grid) Generator(id string) (Generator, error) {
	i, ok := g.genIdx[id]
	if !ok {
		return Generator{}, fmt.Errorf("%w: generator %s", ErrUnknownEntity, id)
	}
	return g.Generators[i], nil
}
