package config

import (
	"fmt"

	"github.com/acdcgrid/ghds/core/model"
)

// AreaConfig names one of the two areas and the NYISO zones whose loads sum
// into it, plus the grid load the aggregate maps onto.
type AreaConfig struct {
	Name   string   `json:"name"`
	Zones  []string `json:"zones"`
	LoadID string   `json:"load_id"`
	// TargetPeakMW anchors the peak-scaled area; ignored for the
	// quadratic area.
	TargetPeakMW float64 `json:"target_peak_mw"`
}

// Validate checks one area.
func (c AreaConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("area name is required")
	}
	if len(c.Zones) == 0 {
		return fmt.Errorf("area %s: at least one zone is required", c.Name)
	}
	if c.LoadID == "" {
		return fmt.Errorf("area %s: load_id is required", c.Name)
	}
	return nil
}

// AreasConfig holds both areas by scaling role. The peak-anchored area keeps
// its historical shape and is rescaled to a known feasible peak; the
// quadratic area is mapped through the fitted feasibility envelope.
type AreasConfig struct {
	PeakAnchored AreaConfig `json:"peak_anchored"`
	Quadratic    AreaConfig `json:"quadratic"`
}

// Validate checks both areas.
func (c AreasConfig) Validate() error {
	if err := c.PeakAnchored.Validate(); err != nil {
		return err
	}
	if err := c.Quadratic.Validate(); err != nil {
		return err
	}
	if c.PeakAnchored.Name == c.Quadratic.Name {
		return fmt.Errorf("areas must have distinct names")
	}
	if c.PeakAnchored.TargetPeakMW <= 0 {
		return fmt.Errorf("area %s: target_peak_mw must be positive", c.PeakAnchored.Name)
	}
	return nil
}

// GeneratorConfig describes one generating unit for allocation.
type GeneratorConfig struct {
	ID         string  `json:"id"`
	Area       string  `json:"area"`
	CapacityMW float64 `json:"capacity_mw"`
	Residual   bool    `json:"residual"`
}

// Validate checks one generator entry.
func (c GeneratorConfig) Validate() error {
	return c.Spec().Validate()
}

// Spec converts the entry to the model type.
func (c GeneratorConfig) Spec() model.GeneratorSpec {
	return model.GeneratorSpec{ID: c.ID, Zone: c.Area, CapacityMW: c.CapacityMW, Residual: c.Residual}
}

// ProbeConfig parameterizes the boundary search and the envelope's fixed
// calibration point.
type ProbeConfig struct {
	StepMW              float64 `json:"step_mw"`
	GenerationCeilingMW float64 `json:"generation_ceiling_mw"`
	MaxProbes           int     `json:"max_probes"`
	// LoadID and GeneratorID name the grid entities the search advances.
	LoadID      string `json:"load_id"`
	GeneratorID string `json:"generator_id"`
	// NoTransferLoadMW is the externally calibrated zero-exchange
	// operating condition; it is never searched.
	NoTransferLoadMW float64 `json:"no_transfer_load_mw"`
}

// SetDefaults applies sane defaults.
func (c *ProbeConfig) SetDefaults() {
	if c.StepMW == 0 {
		c.StepMW = 10
	}
	if c.MaxProbes == 0 {
		c.MaxProbes = 1000
	}
	if c.GenerationCeilingMW == 0 {
		c.GenerationCeilingMW = 9999
	}
}

// Validate checks the search parameters.
func (c ProbeConfig) Validate() error {
	if c.StepMW <= 0 {
		return fmt.Errorf("step_mw must be positive")
	}
	if c.MaxProbes <= 0 {
		return fmt.Errorf("max_probes must be positive")
	}
	if c.LoadID == "" || c.GeneratorID == "" {
		return fmt.Errorf("load_id and generator_id are required")
	}
	if c.NoTransferLoadMW <= 0 {
		return fmt.Errorf("no_transfer_load_mw must be positive")
	}
	return nil
}

// InterfaceConfig names the inter-zone interface whose limits feed the
// tie-flow estimate.
type InterfaceConfig struct {
	Name string `json:"name"`
}

// Validate checks mandatory fields.
func (c InterfaceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("interface name is required")
	}
	return nil
}

// MappingConfig holds the profile constants mapped onto the grid: branch
// rating profiles by index and the HVDC operating settings.
type MappingConfig struct {
	BranchRatingsMVA       []float64 `json:"branch_ratings_mva"`
	DefaultBranchRatingMVA float64   `json:"default_branch_rating_mva"`
	HVDCSetpointMW         float64   `json:"hvdc_setpoint_mw"`
	HVDCRateMVA            float64   `json:"hvdc_rate_mva"`
	HVDCResistanceOhm      float64   `json:"hvdc_resistance_ohm"`
}

// ExportConfig controls the output stage.
type ExportConfig struct {
	Dir string `json:"dir"`
}

// SetDefaults applies sane defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "dispatch_outputs"
	}
}
