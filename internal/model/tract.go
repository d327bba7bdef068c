package model

import (
	"github.com/twpayne/go-geom"
)

// DAC and QCT status values as written to the canonical artifacts.
const (
	StatusDisadvantaged    = "Disadvantaged"
	StatusNotDisadvantaged = "Not Disadvantaged"
	StatusEligible         = "Eligible"
	StatusNotEligible      = "Not Eligible"
)

// Tract is one census tract row of the canonical tract artifact.
type Tract struct {
	GEOID        string
	City         string
	County       string
	Population   *float64
	DACIndicator string
	DACStatus    string
	QCTStatus    string
	Indicators   Indicators

	PercentileSum      *float64
	NationalPercentile *float64
	StatePercentile    *float64

	Geometry *geom.MultiPolygon
}

// Disadvantaged reports whether the tract carries the DAC designation.
func (t *Tract) Disadvantaged() bool { return t.DACStatus == StatusDisadvantaged }

// Eligible reports whether the tract is a Qualified Census Tract.
func (t *Tract) Eligible() bool { return t.QCTStatus == StatusEligible }

// StateFIPS returns the 2-character state prefix of the GEOID.
func (t *Tract) StateFIPS() string { return prefix(t.GEOID, 2) }

// CountyFIPS returns the 5-character state+county prefix of the GEOID.
func (t *Tract) CountyFIPS() string { return prefix(t.GEOID, 5) }

func prefix(s string, n int) string {
	if len(s) < n {
		return ""
	}
	return s[:n]
}

// Categorical and summary columns of the tract artifact. Indicator columns
// are listed in IndicatorColumns.
const (
	ColGEOID              = "GEOID"
	ColCity               = "city"
	ColCountyName         = "county_name"
	ColPopulation         = "population"
	ColDACIndicator       = "DAC_indicator"
	ColDACStatus          = "DAC_status"
	ColQCTStatus          = "QCT_status"
	ColPercentileSum      = "tract_input_percentile_sum"
	ColNationalPercentile = "tract_national_percentile"
	ColStatePercentile    = "tract_state_percentile"
)

// SummaryColumns binds the tract-level summary columns to their fields.
var SummaryColumns = []struct {
	Column string
	Field  func(*Tract) **float64
}{
	{ColPercentileSum, func(t *Tract) **float64 { return &t.PercentileSum }},
	{ColNationalPercentile, func(t *Tract) **float64 { return &t.NationalPercentile }},
	{ColStatePercentile, func(t *Tract) **float64 { return &t.StatePercentile }},
}
