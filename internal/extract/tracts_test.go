package extract

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

const tractFixture = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"GEOID":6073000100,"city":"San Diego","county_name":"San Diego County","population":"1200","DAC_indicator":1,
 "avg_energy_burden_natl_pctile":0.555,"nonwhite_pct_natl_pctile":"n/a","tract_input_percentile_sum":12.3456,
 "tract_national_percentile":0.9,"tract_state_percentile":0.8},
 "geometry":{"type":"Polygon","coordinates":[[[-117,32],[-116,32],[-116,33],[-117,33],[-117,32]]]}},
{"type":"Feature","properties":{"GEOID":"06075000100","city":"San Francisco","county_name":"San Francisco County","population":500,"DAC_indicator":0,
 "avg_energy_burden_natl_pctile":0.1111},
 "geometry":{"type":"MultiPolygon","coordinates":[[[[-122.5,37.7],[-122.4,37.7],[-122.4,37.8],[-122.5,37.7]]]]}},
{"type":"Feature","properties":{"GEOID":"06075000200","city":"San Francisco"},
 "geometry":{"type":"Polygon","coordinates":[[[-122,37],[-122,37],[-122,37],[-122,37]]]}},
{"type":"Feature","properties":{"GEOID":""},"geometry":null}
]}`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildTracts_Inline(t *testing.T) {
	path := writeFixture(t, "tracts.geojson", tractFixture)

	res, err := BuildTracts(TractInput{
		Path:       path,
		QCT:        NewQCTSet("60730001001"),
		DACFlag:    "1",
		TargetSRID: geo.SRIDNAD83,
	})
	require.NoError(t, err)
	require.Len(t, res.Tracts, 2)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "06075000200", res.Skipped[0].Key)
	assert.True(t, eris.Is(res.Skipped[0], geo.ErrUnrepairable))
	assert.Equal(t, 1, res.Dropped)

	sd := res.Tracts[0]
	assert.Equal(t, "06073000100", sd.GEOID)
	assert.Equal(t, "San Diego", sd.City)
	assert.Equal(t, "San Diego County", sd.County)
	require.NotNil(t, sd.Population)
	assert.InDelta(t, 1200, *sd.Population, 1e-9)
	assert.Equal(t, "1", sd.DACIndicator)
	assert.Equal(t, model.StatusDisadvantaged, sd.DACStatus)
	assert.Equal(t, model.StatusEligible, sd.QCTStatus)
	require.NotNil(t, sd.Indicators.EnergyBurden)
	assert.InDelta(t, 55.5, *sd.Indicators.EnergyBurden, 1e-9)
	assert.Nil(t, sd.Indicators.Nonwhite, "unparseable value is no data")
	assert.Nil(t, sd.Indicators.LeadPaint, "absent column is no data")
	require.NotNil(t, sd.PercentileSum)
	assert.InDelta(t, 12.35, *sd.PercentileSum, 1e-9)
	require.NotNil(t, sd.NationalPercentile)
	assert.InDelta(t, 90, *sd.NationalPercentile, 1e-9)
	require.NotNil(t, sd.Geometry)
	assert.Equal(t, geo.SRIDNAD83, sd.Geometry.SRID())

	sf := res.Tracts[1]
	assert.Equal(t, model.StatusNotDisadvantaged, sf.DACStatus)
	assert.Equal(t, model.StatusNotEligible, sf.QCTStatus)
	require.NotNil(t, sf.Indicators.EnergyBurden)
	assert.InDelta(t, 11.11, *sf.Indicators.EnergyBurden, 1e-9)
}

func TestBuildTracts_PercentileJoin(t *testing.T) {
	path := writeFixture(t, "tracts.geojson", tractFixture)

	res, err := BuildTracts(TractInput{
		Path: path,
		Percentiles: map[string]Row{
			"06073000100": {"avg_energy_burden_natl_pctile": "0.3", "GEOID": "06073000100"},
		},
		TargetSRID: geo.SRIDNAD83,
	})
	require.NoError(t, err)
	require.Len(t, res.Tracts, 1)
	assert.Equal(t, 2, res.Unmatched)
	require.NotNil(t, res.Tracts[0].Indicators.EnergyBurden)
	assert.InDelta(t, 30, *res.Tracts[0].Indicators.EnergyBurden, 1e-9)
	// Display columns still come from the feature.
	assert.Equal(t, "San Diego", res.Tracts[0].City)
	assert.Equal(t, model.StatusDisadvantaged, res.Tracts[0].DACStatus)
}

func TestBuildTracts_WebMercatorCRS(t *testing.T) {
	x0, y0 := geo.LonLatToMercator(-117, 32)
	x1, y1 := geo.LonLatToMercator(-116, 33)
	fixture := `{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"urn:ogc:def:crs:EPSG::3857"}},"features":[
{"type":"Feature","properties":{"GEOID":"06073000100"},"geometry":{"type":"Polygon","coordinates":[[[` +
		fmtCoord(x0, y0) + `],[` + fmtCoord(x1, y0) + `],[` + fmtCoord(x1, y1) + `],[` + fmtCoord(x0, y1) + `],[` + fmtCoord(x0, y0) + `]]]}}]}`
	path := writeFixture(t, "tracts.geojson", fixture)

	res, err := BuildTracts(TractInput{Path: path, TargetSRID: geo.SRIDNAD83})
	require.NoError(t, err)
	require.Len(t, res.Tracts, 1)
	b := res.Tracts[0].Geometry.Bounds()
	assert.InDelta(t, -117, b.Min(0), 1e-6)
	assert.InDelta(t, 32, b.Min(1), 1e-6)
	assert.InDelta(t, -116, b.Max(0), 1e-6)
	assert.InDelta(t, 33, b.Max(1), 1e-6)
}

func TestBuildTracts_UnsupportedCRS(t *testing.T) {
	fixture := `{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"EPSG:2230"}},"features":[]}`
	path := writeFixture(t, "tracts.geojson", fixture)

	_, err := BuildTracts(TractInput{Path: path, TargetSRID: geo.SRIDNAD83})
	require.Error(t, err)
	assert.True(t, eris.Is(err, geo.ErrUnsupportedCRS))
}

func TestBuildTracts_OutOfRangeCoordinate(t *testing.T) {
	fixture := `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"GEOID":"06073000100"},"geometry":{"type":"Polygon","coordinates":[[[-117,32],[-116,32],[-116,95],[-117,32]]]}}]}`
	path := writeFixture(t, "tracts.geojson", fixture)

	res, err := BuildTracts(TractInput{Path: path, TargetSRID: geo.SRIDNAD83})
	require.NoError(t, err)
	assert.Empty(t, res.Tracts)
	require.Len(t, res.Skipped, 1)
	assert.True(t, eris.Is(res.Skipped[0], geo.ErrCoordOutOfRange))
}

func TestGeometryError(t *testing.T) {
	e := &GeometryError{Dataset: "tracts", Key: "06073000100", Err: geo.ErrUnrepairable}
	assert.Contains(t, e.Error(), "06073000100")
	assert.Contains(t, e.Error(), "tracts")
	assert.Equal(t, geo.ErrUnrepairable, e.Unwrap())
}

func fmtCoord(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64)
}
