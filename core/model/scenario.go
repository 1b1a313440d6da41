package model

import (
	"fmt"
	"time"
)

// DispatchScenario is the terminal artifact of a pipeline run: the scaled
// per-zone demand, per-generator output and tie-line flow for one date, all
// sharing one timestamp axis. It is constructed once and never mutated.
type DispatchScenario struct {
	RunID      string
	Date       time.Time
	Timestamps []time.Time
	ZoneDemand map[string]ZoneSeries
	Generators map[string]ZoneSeries
	TieFlow    ZoneSeries
}

// Validate checks that every series is aligned with the shared timestamp axis.
func (s DispatchScenario) Validate() error {
	n := len(s.Timestamps)
	for zone, zs := range s.ZoneDemand {
		if zs.Len() != n {
			return fmt.Errorf("zone %s: series length %d, timestamp axis %d", zone, zs.Len(), n)
		}
	}
	for id, gs := range s.Generators {
		if gs.Len() != n {
			return fmt.Errorf("generator %s: series length %d, timestamp axis %d", id, gs.Len(), n)
		}
	}
	if s.TieFlow.Len() != n {
		return fmt.Errorf("tie flow: series length %d, timestamp axis %d", s.TieFlow.Len(), n)
	}
	return nil
}
