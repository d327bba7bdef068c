package geospatial

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

func f(v float64) *float64 { return &v }

func sampleContext() *artifact.Context {
	tract := model.Tract{
		GEOID: "060730001", City: "San Diego", County: "San Diego County",
		Population: f(4200), DACStatus: model.StatusDisadvantaged,
		Geometry: geo.PolygonFromBounds(-117.2, 32.7, -117.1, 32.8, geo.SRIDNAD83),
	}
	tract.Indicators.EnergyBurden = f(55.5)
	dup := tract
	dup.City = "Duplicate"

	housing := []model.Property{
		{Name: "Harbor View", Address: "5 Bay Rd", AssistedUnits: f(20),
			Location: geom.NewPointFlat(geom.XY, []float64{-117.15, 32.75}).SetSRID(geo.SRIDNAD83)},
		{Name: "Unplaced", Address: "0 Unknown"},
	}
	counties := []model.Boundary{{
		Level: model.LevelCounty, Name: "San Diego County, CA", GEOID: "06073", StateFP: "06", STUSPS: "CA",
		Geometry: geo.PolygonFromBounds(-117.6, 32.5, -116.1, 33.5, geo.SRIDNAD83), SRID: geo.SRIDNAD83,
	}}
	return artifact.New(geo.SRIDNAD83, []model.Tract{tract, dup}, housing, counties, nil, nil)
}

func expectUpsert(mock pgxmock.PgxPoolIface, table string, cols []string, n int64) {
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_equity_" + table}, cols).WillReturnResult(n)
	mock.ExpectExec(`INSERT INTO "equity"."` + table + `"`).WillReturnResult(pgxmock.NewResult("INSERT", n))
	mock.ExpectCommit()
}

func TestPublish(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectUpsert(mock, "tracts", tractColumns, 1)
	expectUpsert(mock, "boundaries", boundaryColumns, 2)
	mock.ExpectExec("TRUNCATE equity.housing").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"equity", "housing"}, housingColumns).WillReturnResult(2)

	st, err := NewPublisher(mock).Publish(context.Background(), sampleContext())
	require.NoError(t, err)
	assert.Equal(t, Stats{Tracts: 1, Boundaries: 2, Housing: 2}, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_TractsFail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(fmt.Errorf("connection refused"))

	_, err = NewPublisher(mock).Publish(context.Background(), sampleContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish tracts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_TruncateFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectUpsert(mock, "tracts", tractColumns, 1)
	expectUpsert(mock, "boundaries", boundaryColumns, 2)
	mock.ExpectExec("TRUNCATE").WillReturnError(fmt.Errorf("permission denied"))

	_, err = NewPublisher(mock).Publish(context.Background(), sampleContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncate housing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTractRows(t *testing.T) {
	c := sampleContext()
	rows, err := tractRows(c.Tracts)
	require.NoError(t, err)
	require.Len(t, rows, 1, "duplicate GEOID dropped")
	require.Len(t, rows[0], len(tractColumns))
	assert.Equal(t, "San Diego", rows[0][1], "first occurrence wins")

	g, err := ewkb.Unmarshal(rows[0][len(tractColumns)-1].([]byte))
	require.NoError(t, err)
	assert.Equal(t, geo.SRIDNAD83, g.SRID())
	_, ok := g.(*geom.MultiPolygon)
	assert.True(t, ok)
}

func TestBoundaryRows(t *testing.T) {
	c := sampleContext()
	rows, err := boundaryRows(append(c.Counties, c.Counties...))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"county", "San Diego County, CA", "06073", "06", "CA"}, rows[0][:5])
}

func TestHousingRows(t *testing.T) {
	rows, err := housingRows(sampleContext().Housing)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NotNil(t, rows[0][len(housingColumns)-1])
	assert.Nil(t, rows[1][len(housingColumns)-1], "missing location is NULL")
}

func TestEncodeGeom(t *testing.T) {
	b, err := encodeGeom(nil)
	require.NoError(t, err)
	assert.Nil(t, b, "missing geometry is NULL")

	b, err = encodeGeom(geo.PolygonFromBounds(0, 0, 1, 1, geo.SRIDNAD83))
	require.NoError(t, err)
	g, err := ewkb.Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, geo.SRIDNAD83, g.SRID())
}
