package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/equity-report/internal/model"
)

func housingPtrs(ps []model.Property) []*model.Property {
	out := make([]*model.Property, len(ps))
	for i := range ps {
		out[i] = &ps[i]
	}
	return out
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Zero(t, s.Disadvantaged)
	assert.Zero(t, s.Eligible)
	assert.Zero(t, s.Housing)
	assert.Zero(t, s.AssistedUnits)
	assert.Equal(t, NotAvailable, FormatMean(s.MeanEnergyBurden))
	assert.Equal(t, NotAvailable, FormatMean(s.MeanNonwhite))
}

func TestSummarize(t *testing.T) {
	rows := Filter(tractPtrs(fixtureTracts()[:3]), Filters{EnergyBurden: FullRange})
	housing := housingPtrs(fixtureHousing()[:2])

	s := Summarize(rows, housing)
	assert.Equal(t, 2, s.Disadvantaged)
	assert.Equal(t, 1, s.Eligible)
	assert.Equal(t, 2, s.Housing)
	assert.Equal(t, 36, s.AssistedUnits, "20.7 + 15.6 truncated")
	require.NotNil(t, s.MeanEnergyBurden)
	assert.InDelta(t, (55.5+11.11)/2, *s.MeanEnergyBurden, 1e-9)
	assert.Equal(t, "40.00", FormatMean(s.MeanNonwhite))
}

func TestSummarize_MeanSkipsUndefined(t *testing.T) {
	ts := fixtureTracts()
	ts[1].Indicators.Nonwhite = nil
	rows := []Row{{Tract: &ts[0]}, {Tract: &ts[1]}}
	s := Summarize(rows, nil)
	require.NotNil(t, s.MeanNonwhite)
	assert.InDelta(t, 60, *s.MeanNonwhite, 1e-9)
}

func TestSummarize_UnitsWithoutValues(t *testing.T) {
	s := Summarize(nil, []*model.Property{{Name: "a"}, {Name: "b", AssistedUnits: f(2.9)}})
	assert.Equal(t, 2, s.Housing)
	assert.Equal(t, 2, s.AssistedUnits)
}

func TestFormatMean(t *testing.T) {
	assert.Equal(t, NotAvailable, FormatMean(nil))
	assert.Equal(t, NotAvailable, FormatMean(f(math.NaN())))
	assert.Equal(t, "12.35", FormatMean(f(12.345678)))
	assert.Equal(t, "0.00", FormatMean(f(0)))
}
