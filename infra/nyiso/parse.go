package nyiso

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type loadRow struct {
	Timestamp time.Time
	Zone      string
	Load      float64
}

type flowRow struct {
	Timestamp     time.Time
	Interface     string
	Flow          float64
	PositiveLimit float64
	NegativeLimit float64
}

var timestampLayouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseLoadCSV reads the palIntegrated daily file: one row per zone and hour
// with columns "Time Stamp", "Name" and "Integrated Load".
func parseLoadCSV(data []byte) ([]loadRow, error) {
	header, records, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	tsCol, ok := header["Time Stamp"]
	if !ok {
		return nil, fmt.Errorf("missing column %q", "Time Stamp")
	}
	nameCol, ok := header["Name"]
	if !ok {
		return nil, fmt.Errorf("missing column %q", "Name")
	}
	loadCol, ok := header["Integrated Load"]
	if !ok {
		return nil, fmt.Errorf("missing column %q", "Integrated Load")
	}
	rows := make([]loadRow, 0, len(records))
	for i, rec := range records {
		ts, err := parseTimestamp(rec[tsCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		load, err := strconv.ParseFloat(strings.TrimSpace(rec[loadCol]), 64)
		if err != nil {
			// rows with a missing integrated load are skipped, matching
			// the feed's behavior near clock changes
			continue
		}
		rows = append(rows, loadRow{Timestamp: ts, Zone: strings.TrimSpace(rec[nameCol]), Load: load})
	}
	return rows, nil
}

// parseFlowCSV reads the ExternalLimitsFlows daily file with columns
// "Timestamp", "Interface Name", "Flow (MWH)", "Positive Limit (MWH)" and
// "Negative Limit (MWH)".
func parseFlowCSV(data []byte) ([]flowRow, error) {
	header, records, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	cols := map[string]int{}
	for _, name := range []string{"Timestamp", "Interface Name", "Flow (MWH)", "Positive Limit (MWH)", "Negative Limit (MWH)"} {
		idx, ok := header[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[name] = idx
	}
	rows := make([]flowRow, 0, len(records))
	for i, rec := range records {
		ts, err := parseTimestamp(rec[cols["Timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		flow, err1 := strconv.ParseFloat(strings.TrimSpace(rec[cols["Flow (MWH)"]]), 64)
		pos, err2 := strconv.ParseFloat(strings.TrimSpace(rec[cols["Positive Limit (MWH)"]]), 64)
		neg, err3 := strconv.ParseFloat(strings.TrimSpace(rec[cols["Negative Limit (MWH)"]]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		rows = append(rows, flowRow{
			Timestamp:     ts,
			Interface:     strings.TrimSpace(rec[cols["Interface Name"]]),
			Flow:          flow,
			PositiveLimit: pos,
			NegativeLimit: neg,
		})
	}
	return rows, nil
}

func readCSV(data []byte) (map[string]int, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty csv")
	}
	header := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		header[strings.TrimSpace(name)] = i
	}
	return header, all[1:], nil
}
