package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

type recordingRenderer struct {
	view   geo.View
	layers MapLayers
	calls  int
	err    error
}

func (r *recordingRenderer) Render(view geo.View, layers MapLayers) ([]byte, error) {
	r.calls++
	r.view = view
	r.layers = layers
	if r.err != nil {
		return nil, r.err
	}
	return []byte("png"), nil
}

func fixedAssembler(r MapRenderer) *Assembler {
	a := NewAssembler("Equity Report", r)
	a.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	return a
}

func countyInputs(t *testing.T) (*model.Boundary, []Row, []*model.Property) {
	t.Helper()
	c := fixtureContext()
	b, ok := Resolve(c, model.LevelCounty, "San Diego County, CA")
	require.True(t, ok)
	sel := Select(b, c.Tracts, c.Housing)
	return b, Filter(sel.Tracts, Filters{EnergyBurden: FullRange}), sel.Housing
}

func TestAssemble_Full(t *testing.T) {
	b, rows, housing := countyInputs(t)
	r := &recordingRenderer{}

	doc, err := fixedAssembler(r).Assemble(b, rows, housing, Options{IncludeHousingList: true})
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Equity Report", doc.Title)
	assert.Equal(t, 2024, doc.GeneratedAt.Year())
	assert.Same(t, b, doc.Boundary)
	assert.Equal(t, []byte("png"), doc.Map)

	// Zoom/center fitted to the county bounds.
	assert.Equal(t, 1, r.calls)
	assert.InDelta(t, -116.85, r.view.Lon, 1e-6)
	assert.InDelta(t, 33.0, r.view.Lat, 1e-6)
	assert.Equal(t, r.view, doc.View)
	assert.Len(t, r.layers.Tracts, 2)
	assert.Len(t, r.layers.Housing, 2)

	assert.Equal(t, 2, doc.Summary.Disadvantaged)
	assert.Equal(t, 2, doc.Summary.Housing)
	assert.Equal(t, []string{"060730001", "060730002"}, rowGEOIDs(doc.Tracts))
	assert.Len(t, doc.Housing, 2)
	assert.Empty(t, doc.Details)
}

func TestAssemble_CoverPageOnly(t *testing.T) {
	b, rows, housing := countyInputs(t)
	doc, err := fixedAssembler(&recordingRenderer{}).Assemble(b, rows, housing, Options{CoverPageOnly: true, IncludeHousingList: true, Detailed: true})
	require.NoError(t, err)
	assert.Empty(t, doc.Tracts)
	assert.Empty(t, doc.Housing)
	assert.Empty(t, doc.Details)
	assert.Equal(t, 2, doc.Summary.Housing, "summary is always present")
}

func TestAssemble_NoHousingList(t *testing.T) {
	b, rows, housing := countyInputs(t)
	doc, err := fixedAssembler(nil).Assemble(b, rows, housing, Options{})
	require.NoError(t, err)
	assert.Len(t, doc.Tracts, 2)
	assert.Empty(t, doc.Housing)
	assert.Empty(t, doc.Map, "no renderer, no image")
}

func TestAssemble_EmptyRows(t *testing.T) {
	b, _, housing := countyInputs(t)
	doc, err := fixedAssembler(nil).Assemble(b, nil, housing, Options{IncludeHousingList: true})
	require.NoError(t, err)
	assert.Empty(t, doc.Tracts)
	assert.Equal(t, NotAvailable, FormatMean(doc.Summary.MeanEnergyBurden))
	assert.Equal(t, NotAvailable, FormatMean(doc.Summary.MeanNonwhite))
	assert.Zero(t, doc.Summary.Disadvantaged)
	assert.Zero(t, doc.Summary.Eligible)
}

func TestAssemble_Detailed(t *testing.T) {
	b, rows, housing := countyInputs(t)
	doc, err := fixedAssembler(nil).Assemble(b, rows, housing, Options{Detailed: true})
	require.NoError(t, err)
	require.Len(t, doc.Details, 2)

	d := doc.Details[0]
	assert.Equal(t, "060730001", d.GEOID)
	assert.Equal(t, "CA", d.State)
	assert.True(t, d.DACFlagged)
	assert.True(t, d.QCTFlagged)
	assert.True(t, d.NationalFlagged, "91.5 is above the threshold")
	assert.False(t, d.StateFlagged, "40 is not")
	require.Len(t, d.Indicators, 8)
	assert.True(t, d.Indicators[0].Flagged)

	assert.False(t, doc.Details[1].QCTFlagged)
}

func TestAssemble_RenderError(t *testing.T) {
	b, rows, housing := countyInputs(t)
	_, err := fixedAssembler(&recordingRenderer{err: errors.New("boom")}).Assemble(b, rows, housing, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: render map")
}

func TestAssemble_NoGeometrySkipsMap(t *testing.T) {
	r := &recordingRenderer{}
	doc, err := fixedAssembler(r).Assemble(&model.Boundary{Name: "x"}, nil, nil, Options{})
	require.NoError(t, err)
	assert.Zero(t, r.calls)
	assert.Empty(t, doc.Map)
}

func TestAssemble_NilBoundary(t *testing.T) {
	_, err := fixedAssembler(nil).Assemble(nil, nil, nil, Options{})
	assert.Error(t, err)
}

func TestSortByEnergyBurden(t *testing.T) {
	ts := fixtureTracts()
	rows := []Row{{Tract: &ts[1]}, {Tract: &ts[2]}, {Tract: &ts[0]}, {Tract: &ts[3]}}
	sorted := SortByEnergyBurden(rows)
	assert.Equal(t, []string{"060750001", "060730001", "060730002", "060730003"}, rowGEOIDs(sorted))
	assert.Equal(t, "060730002", rows[0].GEOID, "input untouched")
}
