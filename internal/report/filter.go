package report

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/equity-report/internal/model"
)

// Range is an inclusive percentile bound.
type Range struct {
	Lo float64
	Hi float64
}

// FullRange admits every defined percentile.
var FullRange = Range{Lo: 0, Hi: 100}

// Contains reports whether v is defined and inside the bound.
func (r Range) Contains(v *float64) bool {
	return v != nil && *v >= r.Lo && *v <= r.Hi
}

// Validate rejects bounds outside 0-100 or inverted bounds.
func (r Range) Validate() error {
	if r.Lo < 0 || r.Hi > 100 || r.Lo > r.Hi {
		return eris.Errorf("report: energy burden range [%g, %g] must satisfy 0 <= lo <= hi <= 100", r.Lo, r.Hi)
	}
	return nil
}

// Filters are the user-selected tract restrictions.
type Filters struct {
	EnergyBurden         Range
	RequireDisadvantaged bool
	RequireEligible      bool
}

// Row is a filtered tract with its display-only status strings.
type Row struct {
	*model.Tract
	DAC string
	QCT string
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Filter keeps the tracts passing f, in input order. Tracts without an
// energy burden percentile never pass the range check.
func Filter(tracts []*model.Tract, f Filters) []Row {
	out := make([]Row, 0, len(tracts))
	for _, t := range tracts {
		if !f.EnergyBurden.Contains(t.Indicators.EnergyBurden) {
			continue
		}
		if f.RequireDisadvantaged && !t.Disadvantaged() {
			continue
		}
		if f.RequireEligible && !t.Eligible() {
			continue
		}
		out = append(out, Row{Tract: t, DAC: yesNo(t.Disadvantaged()), QCT: yesNo(t.Eligible())})
	}
	return out
}
