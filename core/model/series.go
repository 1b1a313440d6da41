package model

import (
	"fmt"
	"time"
)

// ZoneSeries holds an ordered sequence of timestamped demand or power values
// for one zone. Series produced by the pipeline are never mutated after
// construction; stages derive new series instead.
type ZoneSeries struct {
	Zone       string
	Timestamps []time.Time
	Values     []float64
}

// NewZoneSeries builds a series and checks index alignment.
func NewZoneSeries(zone string, timestamps []time.Time, values []float64) (ZoneSeries, error) {
	if len(timestamps) != len(values) {
		return ZoneSeries{}, fmt.Errorf("zone %s: %d timestamps for %d values", zone, len(timestamps), len(values))
	}
	return ZoneSeries{Zone: zone, Timestamps: timestamps, Values: values}, nil
}

// Len returns the number of samples.
func (s ZoneSeries) Len() int { return len(s.Values) }

// Peak returns the maximum value of the series.
func (s ZoneSeries) Peak() float64 {
	max := 0.0
	for i, v := range s.Values {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}

// Min returns the minimum value of the series.
func (s ZoneSeries) Min() float64 {
	min := 0.0
	for i, v := range s.Values {
		if i == 0 || v < min {
			min = v
		}
	}
	return min
}

// Mean returns the arithmetic mean of the series, or 0 for an empty series.
func (s ZoneSeries) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Add returns the element-wise sum of s and other under s's zone name.
func (s ZoneSeries) Add(other ZoneSeries) (ZoneSeries, error) {
	if s.Len() != other.Len() {
		return ZoneSeries{}, fmt.Errorf("length mismatch: %d vs %d", s.Len(), other.Len())
	}
	out := make([]float64, s.Len())
	for i := range s.Values {
		out[i] = s.Values[i] + other.Values[i]
	}
	return ZoneSeries{Zone: s.Zone, Timestamps: s.Timestamps, Values: out}, nil
}

// Sub returns the element-wise difference s - other under s's zone name.
func (s ZoneSeries) Sub(other ZoneSeries) (ZoneSeries, error) {
	if s.Len() != other.Len() {
		return ZoneSeries{}, fmt.Errorf("length mismatch: %d vs %d", s.Len(), other.Len())
	}
	out := make([]float64, s.Len())
	for i := range s.Values {
		out[i] = s.Values[i] - other.Values[i]
	}
	return ZoneSeries{Zone: s.Zone, Timestamps: s.Timestamps, Values: out}, nil
}

// InterfaceSeries carries the historical flow and limits for one inter-zone
// interface, index-aligned with the zonal load series.
type InterfaceSeries struct {
	Name          string
	Timestamps    []time.Time
	Flow          []float64
	PositiveLimit []float64
	NegativeLimit []float64
}

// Len returns the number of samples.
func (s InterfaceSeries) Len() int { return len(s.Flow) }

// FlowSeries returns the flow column as a ZoneSeries for arithmetic with
// zonal demand.
func (s InterfaceSeries) FlowSeries() ZoneSeries {
	return ZoneSeries{Zone: s.Name, Timestamps: s.Timestamps, Values: s.Flow}
}

// PositiveLimitSeries returns the positive limit column as a ZoneSeries.
func (s InterfaceSeries) PositiveLimitSeries() ZoneSeries {
	return ZoneSeries{Zone: s.Name, Timestamps: s.Timestamps, Values: s.PositiveLimit}
}
