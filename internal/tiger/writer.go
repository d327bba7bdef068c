package tiger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/equity-report/internal/geo"
)

// prjWKT holds the ESRI projection text written next to exported shapefiles.
var prjWKT = map[int]string{
	geo.SRIDNAD83: `GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`,
	geo.SRIDWGS84: `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`,
}

// Column describes one attribute column of an exported shapefile. Numeric
// columns are written as floats with two decimals.
type Column struct {
	Name    string // at most 10 characters
	Numeric bool
	Width   uint8
}

// Row is one exported record: a geometry and one value per column. Nil
// numeric values are written as blanks.
type Row struct {
	Geometry *geom.MultiPolygon
	Values   []any
}

// WritePolygons writes rows as a polygon shapefile (.shp/.shx/.dbf) plus a
// .prj describing srid.
func WritePolygons(path string, srid int, cols []Column, rows []Row) error {
	wkt, ok := prjWKT[srid]
	if !ok {
		return eris.Wrapf(geo.ErrUnsupportedCRS, "tiger: no projection text for EPSG:%d", srid)
	}

	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "tiger: create shapefile %s", path)
	}
	err = writeRecords(w, cols, rows)
	w.Close()
	if err != nil {
		return err
	}
	if err := fixDBFName(path); err != nil {
		return err
	}

	prjPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	if err := os.WriteFile(prjPath, []byte(wkt), 0o644); err != nil {
		return eris.Wrap(err, "tiger: write .prj")
	}
	return nil
}

func writeRecords(w *shp.Writer, cols []Column, rows []Row) error {
	fields := make([]shp.Field, len(cols))
	for i, c := range cols {
		if len(c.Name) > 10 {
			return eris.Errorf("tiger: column name %q longer than 10 characters", c.Name)
		}
		width := c.Width
		if c.Numeric {
			if width == 0 {
				width = 12
			}
			fields[i] = shp.FloatField(c.Name, width, 2)
		} else {
			if width == 0 {
				width = 80
			}
			fields[i] = shp.StringField(c.Name, width)
		}
	}
	if err := w.SetFields(fields); err != nil {
		return eris.Wrap(err, "tiger: set fields")
	}

	for _, r := range rows {
		if r.Geometry == nil {
			continue
		}
		n := int(w.Write(MultiPolygonToShape(r.Geometry)))
		for i, v := range r.Values {
			if i >= len(cols) {
				break
			}
			if err := w.WriteAttribute(n, i, attrValue(v)); err != nil {
				return eris.Wrapf(err, "tiger: write attribute %s", cols[i].Name)
			}
		}
	}
	return nil
}

// fixDBFName moves the attribute table to <base>.dbf. go-shp's writer
// names it <base>dbf, without the dot.
func fixDBFName(path string) error {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	stray := base + "dbf"
	if _, err := os.Stat(stray); err != nil {
		return nil
	}
	if err := os.Rename(stray, base+".dbf"); err != nil {
		return eris.Wrapf(err, "tiger: rename %s", filepath.Base(stray))
	}
	return nil
}

func attrValue(v any) any {
	switch x := v.(type) {
	case *float64:
		if x == nil {
			return ""
		}
		return *x
	case nil:
		return ""
	default:
		return x
	}
}
