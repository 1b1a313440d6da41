package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acdcgrid/ghds/core/model"
)

func sampleScenario() model.DispatchScenario {
	start := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	ts := []time.Time{start, start.Add(time.Hour)}
	return model.DispatchScenario{
		RunID:      "run-1",
		Date:       start,
		Timestamps: ts,
		ZoneDemand: map[string]model.ZoneSeries{
			"west": {Zone: "west", Timestamps: ts, Values: []float64{900, 950}},
			"east": {Zone: "east", Timestamps: ts, Values: []float64{1200, 1250}},
		},
		Generators: map[string]model.ZoneSeries{
			"1_1": {Zone: "west", Timestamps: ts, Values: []float64{850, 860}},
			"2_1": {Zone: "west", Timestamps: ts, Values: []float64{50, 90}},
		},
		TieFlow: model.ZoneSeries{Zone: "central-east", Timestamps: ts, Values: []float64{250, 300}},
	}
}

func TestWriteZoneDemandCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteZoneDemandCSV(&buf, sampleScenario()))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	// columns sorted by name for deterministic output
	assert.Equal(t, []string{"timestamp", "east", "west"}, records[0])
	assert.Equal(t, "1200", records[1][1])
	assert.Equal(t, "950", records[2][2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleScenario()))
	var out struct {
		RunID      string               `json:"run_id"`
		Date       string               `json:"date"`
		ZoneDemand map[string][]float64 `json:"zone_demand_mw"`
		TieFlow    []float64            `json:"tie_flow_mw"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "run-1", out.RunID)
	assert.Equal(t, "2024-02-14", out.Date)
	assert.Equal(t, []float64{900, 950}, out.ZoneDemand["west"])
	assert.Equal(t, []float64{250, 300}, out.TieFlow)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFiles(dir, sampleScenario()))
	for _, name := range []string{
		"ghds_2024_02_14_zone_demand.csv",
		"ghds_2024_02_14_generators.csv",
		"ghds_2024_02_14_tie_flow.csv",
		"ghds_2024_02_14.json",
	} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}
