package tiger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/geo"
)

// Feature is one shapefile record.
type Feature struct {
	Index    int
	Attrs    map[string]string // keyed by lower-case field name
	Geometry *geom.MultiPolygon
	// Err is set when the record's geometry could not be built.
	Err error
}

// Attr returns the attribute value for a case-insensitive field name.
func (f *Feature) Attr(name string) string {
	return f.Attrs[strings.ToLower(name)]
}

// Layer is the content of one polygon shapefile.
type Layer struct {
	Path     string
	SRID     int
	Fields   []string
	Features []Feature
}

// ReadSRID identifies the CRS of a shapefile from its sibling .prj file.
func ReadSRID(shpPath string) (int, error) {
	prjPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return 0, eris.Wrapf(geo.ErrUnsupportedCRS, "tiger: read %s: %v", filepath.Base(prjPath), err)
	}
	return geo.SRIDFromPRJ(string(data))
}

// ReadShapefile reads every record of a polygon shapefile. The whole layer
// fails when its CRS is unsupported; a record whose geometry cannot be
// built is returned with Err set.
func ReadShapefile(shpPath string) (*Layer, error) {
	srid, err := ReadSRID(shpPath)
	if err != nil {
		return nil, err
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	layer := &Layer{Path: shpPath, SRID: srid, Fields: names}
	var bad int
	for reader.Next() {
		idx, shape := reader.Shape()

		attrs := make(map[string]string, len(names))
		for i, name := range names {
			val := strings.TrimRight(reader.Attribute(i), "\x00")
			attrs[name] = strings.TrimSpace(val)
		}

		feat := Feature{Index: idx, Attrs: attrs}
		if shape == nil {
			feat.Err = ErrNotPolygon
		} else {
			feat.Geometry, feat.Err = ShapeToMultiPolygon(shape, srid)
		}
		if feat.Err != nil {
			bad++
		}
		layer.Features = append(layer.Features, feat)
	}

	if bad > 0 {
		zap.L().Debug("tiger: records without usable geometry",
			zap.String("path", shpPath),
			zap.Int("records", bad),
		)
	}
	return layer, nil
}
