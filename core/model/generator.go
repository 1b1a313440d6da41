package model

import "fmt"

// GeneratorSpec identifies one generating unit and its allocation role.
type GeneratorSpec struct {
	ID         string
	Zone       string
	CapacityMW float64
	// Residual marks the single balancing unit of the zone pairing. Its
	// output is never capacity-allocated; it absorbs whatever balances
	// total scaled demand against the other units.
	Residual bool
}

// Validate checks the spec fields.
func (g GeneratorSpec) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("generator id is required")
	}
	if g.Zone == "" {
		return fmt.Errorf("generator %s: zone is required", g.ID)
	}
	if g.CapacityMW <= 0 {
		return fmt.Errorf("generator %s: capacity must be positive", g.ID)
	}
	return nil
}
