package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/equity-report/internal/model"
)

func newTestGenerator() *Generator {
	return NewGenerator(fixtureContext(), fixedAssembler(&recordingRenderer{}))
}

func TestRun_CountyScenario(t *testing.T) {
	res, err := newTestGenerator().Run(Request{
		Level:    model.LevelCounty,
		Location: "San Diego County, CA",
		Filters:  Filters{EnergyBurden: Range{Lo: 30, Hi: 100}, RequireDisadvantaged: true},
		Options:  Options{IncludeHousingList: true},
	})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, []string{"060730001", "060730002", "060730003"}, geoids(res.Selection.Tracts))
	assert.Equal(t, []string{"060730001"}, rowGEOIDs(res.Rows))
	assert.Empty(t, res.Messages)

	require.NotNil(t, res.Document)
	assert.Equal(t, 1, res.Document.Summary.Disadvantaged)
	assert.Equal(t, 2, res.Document.Summary.Housing)
	assert.Len(t, res.Document.Housing, 2)
}

func TestRun_NotFound(t *testing.T) {
	res, err := newTestGenerator().Run(Request{Level: model.LevelCounty, Location: "Nowhere County, ZZ", Filters: Filters{EnergyBurden: FullRange}})
	require.NoError(t, err, "a missing location is not an error")
	assert.False(t, res.Found)
	assert.Nil(t, res.Document)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0], "Nowhere County, ZZ")
}

func TestRun_EmptySelection(t *testing.T) {
	res, err := newTestGenerator().Run(Request{Level: model.LevelCounty, Location: "Imperial County, CA", Filters: Filters{EnergyBurden: FullRange}})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Nil(t, res.Document, "nothing to report")
	assert.ElementsMatch(t, []string{MsgNoTracts, MsgNoHousing}, res.Messages)
}

func TestRun_TractsWithoutHousing(t *testing.T) {
	res, err := newTestGenerator().Run(Request{Level: model.LevelTribeOrTerritory, Location: "Navajo Nation Reservation", Filters: Filters{EnergyBurden: FullRange}})
	require.NoError(t, err)
	assert.Equal(t, []string{MsgNoHousing}, res.Messages)
	require.NotNil(t, res.Document, "one non-empty subset is enough")
	assert.Len(t, res.Document.Tracts, 1)
}

func TestQuery_FiltersRemoveEverything(t *testing.T) {
	res, err := newTestGenerator().Query(Request{Level: model.LevelCity, Location: "Chula Vista (San Diego County)", Filters: Filters{EnergyBurden: FullRange}})
	require.NoError(t, err)
	assert.Len(t, res.Selection.Tracts, 1)
	assert.Empty(t, res.Rows)
	assert.Contains(t, res.Messages, MsgNoFiltered)
}

func TestQuery_InvalidRange(t *testing.T) {
	_, err := newTestGenerator().Query(Request{Level: model.LevelState, Location: "California", Filters: Filters{EnergyBurden: Range{Lo: 80, Hi: 20}}})
	assert.Error(t, err)
}
