package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const (
	prjNAD83 = `GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
	prjWGS84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
	prjMerc  = `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]]],PROJECTION["Mercator_Auxiliary_Sphere"]]`
	prjUTM   = `PROJCS["NAD_1983_UTM_Zone_11N",GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]]],PROJECTION["Transverse_Mercator"]]`
)

func TestSRIDFromPRJ(t *testing.T) {
	tests := []struct {
		name string
		prj  string
		want int
	}{
		{"nad83", prjNAD83, SRIDNAD83},
		{"wgs84", prjWGS84, SRIDWGS84},
		{"web mercator", prjMerc, SRIDWebMercator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SRIDFromPRJ(tt.prj)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSRIDFromPRJ_Unsupported(t *testing.T) {
	_, err := SRIDFromPRJ(prjUTM)
	assert.ErrorIs(t, err, ErrUnsupportedCRS)
	_, err = SRIDFromPRJ("")
	assert.ErrorIs(t, err, ErrUnsupportedCRS)
}

func TestNewTransformer_Unsupported(t *testing.T) {
	_, err := NewTransformer(2227, SRIDNAD83)
	assert.ErrorIs(t, err, ErrUnsupportedCRS)
}

func TestTransformer_GeographicIdentity(t *testing.T) {
	tr, err := NewTransformer(SRIDWGS84, SRIDNAD83)
	require.NoError(t, err)
	x, y, err := tr.Coord(-117.16, 32.71)
	require.NoError(t, err)
	assert.Equal(t, -117.16, x)
	assert.Equal(t, 32.71, y)
}

func TestTransformer_MercatorRoundTrip(t *testing.T) {
	x, y := LonLatToMercator(-117.16, 32.71)
	lon, lat := MercatorToLonLat(x, y)
	assert.InDelta(t, -117.16, lon, 1e-9)
	assert.InDelta(t, 32.71, lat, 1e-9)

	tr, err := NewTransformer(SRIDWebMercator, SRIDNAD83)
	require.NoError(t, err)
	lon, lat, err = tr.Coord(x, y)
	require.NoError(t, err)
	assert.InDelta(t, -117.16, lon, 1e-9)
	assert.InDelta(t, 32.71, lat, 1e-9)
}

func TestTransformer_OutOfRange(t *testing.T) {
	tr, err := NewTransformer(SRIDWGS84, SRIDNAD83)
	require.NoError(t, err)

	_, _, err = tr.Coord(200, 10)
	assert.ErrorIs(t, err, ErrCoordOutOfRange)
	_, _, err = tr.Coord(math.NaN(), 10)
	assert.ErrorIs(t, err, ErrCoordOutOfRange)
	_, _, err = tr.Coord(10, math.Inf(1))
	assert.ErrorIs(t, err, ErrCoordOutOfRange)
}

func TestTransformer_MultiPolygon(t *testing.T) {
	x0, y0 := LonLatToMercator(-100, 40)
	x1, y1 := LonLatToMercator(-99, 41)
	src := PolygonFromBounds(x0, y0, x1, y1, SRIDWebMercator)

	tr, err := NewTransformer(SRIDWebMercator, SRIDNAD83)
	require.NoError(t, err)
	out, err := tr.MultiPolygon(src)
	require.NoError(t, err)

	assert.Equal(t, SRIDNAD83, out.SRID())
	b := out.Bounds()
	assert.InDelta(t, -100, b.Min(0), 1e-9)
	assert.InDelta(t, 41, b.Max(1), 1e-9)
	// source untouched
	assert.InDelta(t, x0, src.Bounds().Min(0), 1e-6)
}

func TestTransformer_Point(t *testing.T) {
	tr, err := NewTransformer(SRIDWGS84, SRIDNAD83)
	require.NoError(t, err)
	p, err := tr.Point(geom.NewPointFlat(geom.XY, []float64{-80.19, 25.77}))
	require.NoError(t, err)
	assert.Equal(t, SRIDNAD83, p.SRID())
	assert.Equal(t, -80.19, p.X())
}
