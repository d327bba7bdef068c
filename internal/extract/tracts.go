package extract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

const datasetTracts = "tracts"

type rawCollection struct {
	CRS *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

var epsgName = regexp.MustCompile(`EPSG:+(\d+)$`)

// collectionSRID resolves the legacy "crs" member written by GDAL. GeoJSON
// without one is EPSG:4326.
func collectionSRID(fc *rawCollection) (int, error) {
	if fc.CRS == nil || fc.CRS.Properties.Name == "" {
		return geo.SRIDWGS84, nil
	}
	name := strings.ToUpper(fc.CRS.Properties.Name)
	if strings.HasSuffix(name, "CRS84") {
		return geo.SRIDWGS84, nil
	}
	m := epsgName.FindStringSubmatch(name)
	if m == nil {
		return 0, eris.Wrapf(geo.ErrUnsupportedCRS, "extract: crs %q", fc.CRS.Properties.Name)
	}
	srid, _ := strconv.Atoi(m[1])
	return srid, nil
}

func readRawCollection(path string) (*rawCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read %s", filepath.Base(path))
	}
	var fc rawCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "extract: decode %s", filepath.Base(path))
	}
	return &fc, nil
}

// TractInput configures BuildTracts.
type TractInput struct {
	// Path of the tract display GeoJSON (GEOID, city, county_name,
	// population, DAC_indicator and polygon geometry).
	Path string
	// Percentiles, keyed by GEOID, are inner-joined onto the display
	// features. When nil the indicator columns are read from the feature
	// properties.
	Percentiles map[string]Row
	QCT         QCTSet
	DACFlag     string
	TargetSRID  int
}

// TractResult is the outcome of BuildTracts.
type TractResult struct {
	Tracts    []model.Tract
	Skipped   []*GeometryError
	Unmatched int // display features with no percentile row
	Dropped   int // features without a GEOID or with a repeated one
}

// BuildTracts reads the tract display features, joins the percentile rows,
// coerces and rescales every numeric column and derives the DAC and QCT
// statuses. A feature whose geometry cannot be repaired or reprojected is
// skipped with a GeometryError; an unsupported CRS fails the dataset.
func BuildTracts(in TractInput) (*TractResult, error) {
	fc, err := readRawCollection(in.Path)
	if err != nil {
		return nil, err
	}
	srid, err := collectionSRID(fc)
	if err != nil {
		return nil, err
	}
	tr, err := geo.NewTransformer(srid, in.TargetSRID)
	if err != nil {
		return nil, eris.Wrap(err, "extract: tracts")
	}
	flag := in.DACFlag
	if flag == "" {
		flag = DefaultDACFlag
	}

	res := &TractResult{Tracts: make([]model.Tract, 0, len(fc.Features))}
	seen := make(map[string]bool, len(fc.Features))
	for _, f := range fc.Features {
		geoid := NormalizeTractGEOID(Text(f.Properties[model.ColGEOID]))
		if geoid == "" || seen[geoid] {
			res.Dropped++
			continue
		}

		get := func(col string) any { return f.Properties[col] }
		if in.Percentiles != nil {
			row, ok := in.Percentiles[geoid]
			if !ok {
				res.Unmatched++
				continue
			}
			get = func(col string) any {
				if v, ok := row[col]; ok {
					return v
				}
				return f.Properties[col]
			}
		}

		mp, err := tractGeometry(f.Geometry, srid, tr)
		if err != nil {
			res.Skipped = append(res.Skipped, &GeometryError{Dataset: datasetTracts, Key: geoid, Err: err})
			continue
		}
		seen[geoid] = true

		t := model.Tract{
			GEOID:        geoid,
			City:         Text(get(model.ColCity)),
			County:       Text(get(model.ColCountyName)),
			Population:   ParseFloat(get(model.ColPopulation)),
			DACIndicator: Text(get(model.ColDACIndicator)),
			QCTStatus:    in.QCT.Status(geoid),
			Geometry:     mp,
		}
		t.DACStatus = DACStatus(t.DACIndicator, flag)
		for _, c := range model.IndicatorColumns {
			*c.Field(&t.Indicators) = Rescale(c.Column, ParseFloat(get(c.Column)))
		}
		for _, c := range model.SummaryColumns {
			*c.Field(&t) = Rescale(c.Column, ParseFloat(get(c.Column)))
		}
		res.Tracts = append(res.Tracts, t)
	}
	return res, nil
}

// tractGeometry decodes, reprojects and repairs one polygonal geometry.
func tractGeometry(raw json.RawMessage, srid int, tr *geo.Transformer) (*geom.MultiPolygon, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, eris.Wrap(geo.ErrUnrepairable, "missing geometry")
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil, eris.Wrap(err, "decode geometry")
	}
	mp, err := toMultiPolygon(g)
	if err != nil {
		return nil, err
	}
	mp.SetSRID(srid)
	mp, err = tr.MultiPolygon(mp)
	if err != nil {
		return nil, err
	}
	return geo.RepairMultiPolygon(mp)
}

func toMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch v := g.(type) {
	case *geom.MultiPolygon:
		if v.Layout() == geom.XY {
			return v, nil
		}
		return geom.NewMultiPolygonFlat(geom.XY, dropExtra(v.FlatCoords(), v.Stride()), strideEnds(v.Endss(), v.Stride())), nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(geom.XY)
		p := v
		if v.Layout() != geom.XY {
			p = geom.NewPolygonFlat(geom.XY, dropExtra(v.FlatCoords(), v.Stride()), strideEnd(v.Ends(), v.Stride()))
		}
		if err := mp.Push(p); err != nil {
			return nil, eris.Wrap(err, "push polygon")
		}
		return mp, nil
	}
	return nil, eris.Wrapf(geo.ErrUnrepairable, "geometry type %T is not polygonal", g)
}

// dropExtra keeps only XY from coordinates with Z and/or M.
func dropExtra(flat []float64, stride int) []float64 {
	out := make([]float64, 0, len(flat)/stride*2)
	for i := 0; i+1 < len(flat); i += stride {
		out = append(out, flat[i], flat[i+1])
	}
	return out
}

func strideEnd(ends []int, stride int) []int {
	out := make([]int, len(ends))
	for i, e := range ends {
		out[i] = e / stride * 2
	}
	return out
}

func strideEnds(endss [][]int, stride int) [][]int {
	out := make([][]int, len(endss))
	for i, ends := range endss {
		out[i] = strideEnd(ends, stride)
	}
	return out
}
