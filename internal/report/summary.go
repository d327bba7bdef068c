package report

import (
	"math"
	"strconv"

	"github.com/sells-group/equity-report/internal/model"
)

// NotAvailable is shown for an aggregate over zero defined values.
const NotAvailable = "N/A"

// Summary is the cover-page block of a report.
type Summary struct {
	Disadvantaged int `json:"disadvantaged_tracts"`
	Housing       int `json:"housing_properties"`
	Eligible      int `json:"eligible_tracts"`
	AssistedUnits int `json:"assisted_units"`

	// Means are nil when no row has a defined value.
	MeanEnergyBurden *float64 `json:"mean_energy_burden"`
	MeanNonwhite     *float64 `json:"mean_nonwhite"`
}

// Summarize computes the summary from the filtered tracts and the unfiltered
// housing subset.
func Summarize(rows []Row, housing []*model.Property) Summary {
	s := Summary{Housing: len(housing)}
	var eb, nw []float64
	for _, r := range rows {
		if r.Disadvantaged() {
			s.Disadvantaged++
		}
		if r.Eligible() {
			s.Eligible++
		}
		if v := r.Indicators.EnergyBurden; v != nil {
			eb = append(eb, *v)
		}
		if v := r.Indicators.Nonwhite; v != nil {
			nw = append(nw, *v)
		}
	}
	s.MeanEnergyBurden = mean(eb)
	s.MeanNonwhite = mean(nw)

	var units float64
	for _, p := range housing {
		if p.AssistedUnits != nil {
			units += *p.AssistedUnits
		}
	}
	s.AssistedUnits = int(math.Trunc(units))
	return s
}

func mean(vs []float64) *float64 {
	if len(vs) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	m := sum / float64(len(vs))
	return &m
}

// FormatMean renders a mean with two decimals, or NotAvailable.
func FormatMean(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// formatValue renders an optional table value, blank when undefined.
func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
