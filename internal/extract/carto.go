package extract

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/tiger"
)

// cartoColumns are the short dBASE names of the map-tile tract export.
var cartoColumns = []tiger.Column{
	{Name: "GEOID", Width: 12},
	{Name: "city", Width: 80},
	{Name: "county", Width: 80},
	{Name: "pop", Numeric: true},
	{Name: "dac", Width: 20},
	{Name: "qct", Width: 20},
	{Name: "eb_pct", Numeric: true},
	{Name: "hb_pct", Numeric: true},
	{Name: "plumb", Numeric: true},
	{Name: "race", Numeric: true},
	{Name: "heat", Numeric: true},
	{Name: "score", Numeric: true},
	{Name: "nat_pct", Numeric: true},
	{Name: "st_pct", Numeric: true},
}

// WriteCarto writes the tract subset used by the web map tiles as a
// shapefile with short column names.
func WriteCarto(path string, srid int, tracts []model.Tract) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "extract: create carto dir")
	}
	rows := make([]tiger.Row, 0, len(tracts))
	for i := range tracts {
		t := &tracts[i]
		rows = append(rows, tiger.Row{
			Geometry: t.Geometry,
			Values: []any{
				t.GEOID,
				t.City,
				t.County,
				t.Population,
				t.DACStatus,
				t.QCTStatus,
				t.Indicators.EnergyBurden,
				t.Indicators.HousingBurden,
				t.Indicators.IncompletePlumbing,
				t.Indicators.Nonwhite,
				t.Indicators.NongridHeat,
				t.PercentileSum,
				t.NationalPercentile,
				t.StatePercentile,
			},
		})
	}
	return tiger.WritePolygons(path, srid, cartoColumns, rows)
}
