package config

import (
	"fmt"

	"github.com/acdcgrid/ghds/core/grid"
)

// GridConfig describes the two-area grid model entity by entity. The model
// itself lives in core/grid; this section only declares it.
type GridConfig struct {
	Buses      []BusConfig      `json:"buses"`
	Loads      []GridLoadConfig `json:"loads"`
	Generators []GridGenConfig  `json:"generators"`
	Branches   []BranchConfig   `json:"branches"`
	HVDC       []HVDCConfig     `json:"hvdc"`
}

// BusConfig declares one bus.
type BusConfig struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	VNomKV float64 `json:"vnom_kv"`
}

// GridLoadConfig declares one load and its base operating point.
type GridLoadConfig struct {
	ID    string  `json:"id"`
	Bus   string  `json:"bus"`
	PMW   float64 `json:"p_mw"`
	QMVAr float64 `json:"q_mvar"`
}

// GridGenConfig declares one generator and its limits.
type GridGenConfig struct {
	ID     string  `json:"id"`
	Bus    string  `json:"bus"`
	PMW    float64 `json:"p_mw"`
	PMaxMW float64 `json:"p_max_mw"`
	PMinMW float64 `json:"p_min_mw"`
	VSetPU float64 `json:"v_set_pu"`
}

// BranchConfig declares one AC branch.
type BranchConfig struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	RateMVA float64 `json:"rate_mva"`
}

// HVDCConfig declares one DC link.
type HVDCConfig struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate performs a full model build to surface reference errors at load
// time rather than mid-pipeline.
func (c GridConfig) Validate() error {
	if len(c.Buses) == 0 {
		return fmt.Errorf("at least one bus is required")
	}
	_, err := c.Build()
	return err
}

// Build constructs the validated grid model.
func (c GridConfig) Build() (*grid.Grid, error) {
	buses := make([]grid.Bus, len(c.Buses))
	for i, b := range c.Buses {
		buses[i] = grid.Bus{ID: b.ID, Name: b.Name, VNomKV: b.VNomKV}
	}
	loads := make([]grid.Load, len(c.Loads))
	for i, l := range c.Loads {
		loads[i] = grid.Load{ID: l.ID, Bus: l.Bus, PMW: l.PMW, QMVAr: l.QMVAr}
	}
	gens := make([]grid.Generator, len(c.Generators))
	for i, g := range c.Generators {
		gens[i] = grid.Generator{ID: g.ID, Bus: g.Bus, PMW: g.PMW, PMaxMW: g.PMaxMW, PMinMW: g.PMinMW, VSetPU: g.VSetPU}
	}
	branches := make([]grid.Branch, len(c.Branches))
	for i, b := range c.Branches {
		branches[i] = grid.Branch{ID: b.ID, From: b.From, To: b.To, RateMVA: b.RateMVA}
	}
	hvdc := make([]grid.HVDCLine, len(c.HVDC))
	for i, h := range c.HVDC {
		hvdc[i] = grid.HVDCLine{ID: h.ID, From: h.From, To: h.To}
	}
	return grid.New(buses, loads, gens, branches, hvdc)
}
