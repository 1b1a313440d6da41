package model

import (
	"math"
	"testing"
	"time"
)

func series(zone string, values ...float64) ZoneSeries {
	base := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, len(values))
	for i := range ts {
		ts[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return ZoneSeries{Zone: zone, Timestamps: ts, Values: values}
}

func TestNewZoneSeriesAlignment(t *testing.T) {
	ts := []time.Time{time.Now()}
	if _, err := NewZoneSeries("A", ts, []float64{1, 2}); err == nil {
		t.Fatal("expected alignment error")
	}
	s, err := NewZoneSeries("A", ts, []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestZoneSeriesStats(t *testing.T) {
	s := series("A", 3, -1, 7, 5)
	if got := s.Peak(); got != 7 {
		t.Errorf("peak = %v, want 7", got)
	}
	if got := s.Min(); got != -1 {
		t.Errorf("min = %v, want -1", got)
	}
	if got := s.Mean(); math.Abs(got-3.5) > 1e-12 {
		t.Errorf("mean = %v, want 3.5", got)
	}
	if got := (ZoneSeries{}).Mean(); got != 0 {
		t.Errorf("empty mean = %v, want 0", got)
	}
}

func TestZoneSeriesArithmetic(t *testing.T) {
	a := series("A", 10, 20)
	b := series("B", 1, 2)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.Zone != "A" || sum.Values[0] != 11 || sum.Values[1] != 22 {
		t.Errorf("unexpected sum %+v", sum)
	}
	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if diff.Values[0] != 9 || diff.Values[1] != 18 {
		t.Errorf("unexpected diff %+v", diff)
	}
	// Inputs stay untouched.
	if a.Values[0] != 10 || b.Values[0] != 1 {
		t.Error("arithmetic mutated an input series")
	}

	if _, err := a.Add(series("C", 1)); err == nil {
		t.Error("expected length mismatch on add")
	}
	if _, err := a.Sub(series("C", 1)); err == nil {
		t.Error("expected length mismatch on sub")
	}
}

func TestInterfaceSeriesColumns(t *testing.T) {
	s := InterfaceSeries{
		Name:          "TIE",
		Timestamps:    series("x", 1, 2).Timestamps,
		Flow:          []float64{5, -5},
		PositiveLimit: []float64{100, 100},
		NegativeLimit: []float64{-100, -100},
	}
	if got := s.FlowSeries(); got.Zone != "TIE" || got.Values[1] != -5 {
		t.Errorf("unexpected flow series %+v", got)
	}
	if got := s.PositiveLimitSeries(); got.Values[0] != 100 {
		t.Errorf("unexpected limit series %+v", got)
	}
}

func TestFeasibilityEnvelopeValidate(t *testing.T) {
	env := FeasibilityEnvelope{
		Base:       OperatingPoint{ReferenceMetric: 500, FeasibleBound: 1000},
		High:       OperatingPoint{ReferenceMetric: 700, FeasibleBound: 1300},
		NoTransfer: OperatingPoint{ReferenceMetric: 300, FeasibleBound: 1500},
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("valid envelope rejected: %v", err)
	}
	env.High.ReferenceMetric = 500
	if err := env.Validate(); err == nil {
		t.Fatal("expected degenerate envelope to be rejected")
	}
}

func TestGeneratorSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    GeneratorSpec
		wantErr bool
	}{
		{"valid", GeneratorSpec{ID: "G1", Zone: "zone1", CapacityMW: 100}, false},
		{"valid residual", GeneratorSpec{ID: "R", Zone: "zone1", CapacityMW: 50, Residual: true}, false},
		{"missing id", GeneratorSpec{Zone: "zone1", CapacityMW: 100}, true},
		{"missing zone", GeneratorSpec{ID: "G1", CapacityMW: 100}, true},
		{"zero capacity", GeneratorSpec{ID: "G1", Zone: "zone1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.spec.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDispatchScenarioValidate(t *testing.T) {
	demand := series("zone1", 1, 2, 3)
	s := DispatchScenario{
		RunID:      "r1",
		Date:       demand.Timestamps[0],
		Timestamps: demand.Timestamps,
		ZoneDemand: map[string]ZoneSeries{"zone1": demand},
		Generators: map[string]ZoneSeries{"G1": series("zone1", 1, 2, 3)},
		TieFlow:    series("TIE", 0, 0, 0),
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("valid scenario rejected: %v", err)
	}

	s.Generators["G2"] = series("zone1", 1)
	if err := s.Validate(); err == nil {
		t.Fatal("expected misaligned generator series to be rejected")
	}
	delete(s.Generators, "G2")

	s.TieFlow = series("TIE", 0)
	if err := s.Validate(); err == nil {
		t.Fatal("expected misaligned tie flow to be rejected")
	}
}
