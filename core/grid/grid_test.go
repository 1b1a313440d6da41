package grid

import (
	"errors"
	"math"
	"testing"
)

func twoAreaGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := New(
		[]Bus{{ID: "1", VNomKV: 20}, {ID: "7", VNomKV: 230}, {ID: "9", VNomKV: 230}},
		[]Load{
			{ID: "7_1", Bus: "7", PMW: 967, QMVAr: 100},
			{ID: "9_1", Bus: "9", PMW: 1767, QMVAr: 100},
		},
		[]Generator{
			{ID: "1_1", Bus: "1", PMW: 700, PMaxMW: 9999},
		},
		[]Branch{
			{ID: "br-1", From: "7", To: "9", RateMVA: 1000},
			{ID: "br-2", From: "7", To: "9", RateMVA: 230},
		},
		[]HVDCLine{{ID: "dc-1", From: "7", To: "9"}},
	)
	if err != nil {
		t.Fatalf("build grid: %v", err)
	}
	return g
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New(
		[]Bus{{ID: "1"}},
		[]Load{{ID: "l", Bus: "1"}, {ID: "l", Bus: "1"}},
		nil, nil, nil,
	)
	if !errors.Is(err, ErrDuplicateEntity) {
		t.Fatalf("expected ErrDuplicateEntity, got %v", err)
	}
}

func TestNew_RejectsDanglingBus(t *testing.T) {
	_, err := New(
		[]Bus{{ID: "1"}},
		[]Load{{ID: "l", Bus: "99"}},
		nil, nil, nil,
	)
	if !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	g := twoAreaGrid(t)
	l, err := g.Load("9_1")
	if err != nil {
		t.Fatalf("load lookup: %v", err)
	}
	if l.PMW != 1767 {
		t.Errorf("load P = %v, want 1767", l.PMW)
	}
	if _, err := g.Load("nope"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity, got %v", err)
	}
	if _, err := g.Generator("nope"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestAssignProfiles(t *testing.T) {
	g := twoAreaGrid(t)
	a := Assignment{
		T: 2,
		Loads: map[string]LoadProfile{
			"7_1": {P: []float64{900, 950}},
		},
		Generators: map[string][]float64{
			"1_1": {800, 820},
		},
		BranchRatings:       []float64{1000},
		DefaultBranchRating: 500,
		HVDCSetpointMW:      200,
		HVDCRateMVA:         600,
		HVDCResistance:      0.052,
	}
	out, err := AssignProfiles(g, a)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	// original grid untouched
	orig, _ := g.Load("7_1")
	if orig.PProfile != nil {
		t.Errorf("input grid was mutated")
	}
	l, _ := out.Load("7_1")
	if l.PProfile[1] != 950 {
		t.Errorf("P profile = %v", l.PProfile)
	}
	// Q derived from base power factor 100/967
	wantQ := 100.0 / 967.0 * 900.0
	if math.Abs(l.QProfile[0]-wantQ) > 1e-9 {
		t.Errorf("Q profile[0] = %v, want %v", l.QProfile[0], wantQ)
	}
	gen, _ := out.Generator("1_1")
	if gen.PProfile[0] != 800 {
		t.Errorf("generator profile = %v", gen.PProfile)
	}
	if out.Branches[0].RateProfile[0] != 1000 {
		t.Errorf("branch 0 rating = %v, want 1000", out.Branches[0].RateProfile[0])
	}
	if out.Branches[1].RateProfile[1] != 500 {
		t.Errorf("branch 1 rating = %v, want default 500", out.Branches[1].RateProfile[1])
	}
	if out.HVDC[0].PSetProfile[1] != 200 || out.HVDC[0].RateProfile[0] != 600 {
		t.Errorf("hvdc profiles = %v / %v", out.HVDC[0].PSetProfile, out.HVDC[0].RateProfile)
	}
}

func TestAssignProfiles_UnknownID(t *testing.T) {
	g := twoAreaGrid(t)
	a := Assignment{T: 1, Loads: map[string]LoadProfile{"ghost": {P: []float64{1}}}}
	if _, err := AssignProfiles(g, a); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
	a = Assignment{T: 1, Generators: map[string][]float64{"ghost": {1}}}
	if _, err := AssignProfiles(g, a); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestAssignProfiles_LengthMismatch(t *testing.T) {
	g := twoAreaGrid(t)
	a := Assignment{T: 3, Loads: map[string]LoadProfile{"7_1": {P: []float64{1}}}}
	if _, err := AssignProfiles(g, a); err == nil {
		t.Fatalf("expected length error")
	}
}
