// Package export writes a DispatchScenario to disk as CSV tables and a JSON
// bundle, mirroring the sheet layout of the upstream workbook format: one
// table for zone demand, one for generator output, one for tie-line flow.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/acdcgrid/ghds/core/model"
)

// WriteJSON writes the full scenario to w in JSON format.
func WriteJSON(w io.Writer, s model.DispatchScenario) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle(s))
}

// WriteZoneDemandCSV writes the per-zone scaled demand table.
func WriteZoneDemandCSV(w io.Writer, s model.DispatchScenario) error {
	return writeTable(w, s.Timestamps, sortedSeries(s.ZoneDemand))
}

// WriteGeneratorCSV writes the per-generator output table.
func WriteGeneratorCSV(w io.Writer, s model.DispatchScenario) error {
	return writeTable(w, s.Timestamps, sortedSeries(s.Generators))
}

// WriteTieFlowCSV writes the tie-line flow table.
func WriteTieFlowCSV(w io.Writer, s model.DispatchScenario) error {
	return writeTable(w, s.Timestamps, []namedSeries{{name: s.TieFlow.Zone, values: s.TieFlow.Values}})
}

// WriteFiles writes the scenario to dir as one CSV per table plus a JSON
// bundle, named after the scenario date.
func WriteFiles(dir string, s model.DispatchScenario) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	stamp := s.Date.Format("2006_01_02")
	tables := []struct {
		name  string
		write func(io.Writer, model.DispatchScenario) error
	}{
		{fmt.Sprintf("ghds_%s_zone_demand.csv", stamp), WriteZoneDemandCSV},
		{fmt.Sprintf("ghds_%s_generators.csv", stamp), WriteGeneratorCSV},
		{fmt.Sprintf("ghds_%s_tie_flow.csv", stamp), WriteTieFlowCSV},
		{fmt.Sprintf("ghds_%s.json", stamp), WriteJSON},
	}
	for _, tbl := range tables {
		if err := writeFile(filepath.Join(dir, tbl.name), s, tbl.write); err != nil {
			return fmt.Errorf("write %s: %w", tbl.name, err)
		}
	}
	return nil
}

func writeFile(path string, s model.DispatchScenario, write func(io.Writer, model.DispatchScenario) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type namedSeries struct {
	name   string
	values []float64
}

func sortedSeries(m map[string]model.ZoneSeries) []namedSeries {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]namedSeries, len(names))
	for i, name := range names {
		out[i] = namedSeries{name: name, values: m[name].Values}
	}
	return out
}

func writeTable(w io.Writer, timestamps []time.Time, series []namedSeries) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(series)+1)
	header = append(header, "timestamp")
	for _, s := range series {
		header = append(header, s.name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for t, ts := range timestamps {
		rec := make([]string, 0, len(series)+1)
		rec = append(rec, ts.Format(time.RFC3339))
		for _, s := range series {
			rec = append(rec, strconv.FormatFloat(s.values[t], 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonBundle struct {
	RunID      string               `json:"run_id"`
	Date       string               `json:"date"`
	Timestamps []time.Time          `json:"timestamps"`
	ZoneDemand map[string][]float64 `json:"zone_demand_mw"`
	Generators map[string][]float64 `json:"generators_mw"`
	TieFlow    []float64            `json:"tie_flow_mw"`
}

func bundle(s model.DispatchScenario) jsonBundle {
	out := jsonBundle{
		RunID:      s.RunID,
		Date:       s.Date.Format("2006-01-02"),
		Timestamps: s.Timestamps,
		ZoneDemand: make(map[string][]float64, len(s.ZoneDemand)),
		Generators: make(map[string][]float64, len(s.Generators)),
		TieFlow:    s.TieFlow.Values,
	}
	for zone, series := range s.ZoneDemand {
		out.ZoneDemand[zone] = series.Values
	}
	for id, series := range s.Generators {
		out.Generators[id] = series.Values
	}
	return out
}
