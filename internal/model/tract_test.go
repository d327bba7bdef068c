package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTractStatuses(t *testing.T) {
	tr := Tract{GEOID: "06073000100", DACStatus: StatusDisadvantaged, QCTStatus: StatusNotEligible}
	assert.True(t, tr.Disadvantaged())
	assert.False(t, tr.Eligible())
	assert.Equal(t, "06", tr.StateFIPS())
	assert.Equal(t, "06073", tr.CountyFIPS())
}

func TestTractPrefix_Short(t *testing.T) {
	tr := Tract{GEOID: "0"}
	assert.Empty(t, tr.StateFIPS())
	assert.Empty(t, tr.CountyFIPS())
}

func TestIndicatorsGetSet(t *testing.T) {
	var ind Indicators
	v := 42.5
	assert.True(t, ind.Set(ColEnergyBurden, &v))
	assert.Equal(t, &v, ind.EnergyBurden)
	assert.Equal(t, &v, ind.Get(ColEnergyBurden))
	assert.Nil(t, ind.Get(ColNonwhite))

	assert.False(t, ind.Set("not_a_column", &v))
	assert.Nil(t, ind.Get("not_a_column"))
}

func TestIndicatorColumns_Unique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range IndicatorColumns {
		assert.False(t, seen[c.Column], c.Column)
		seen[c.Column] = true
		_, ok := IndicatorByColumn(c.Column)
		assert.True(t, ok)
	}
	assert.Len(t, seen, len(IndicatorColumns))
}

func TestPropertyKey(t *testing.T) {
	p := Property{Name: "Oak Villas", Address: "1 Main St"}
	assert.Equal(t, "Oak Villas|1 Main St", p.Key())
}

func TestBoundaryBounds_Nil(t *testing.T) {
	var b *Boundary
	assert.Nil(t, b.Bounds())
	assert.Nil(t, (&Boundary{}).Bounds())
}
