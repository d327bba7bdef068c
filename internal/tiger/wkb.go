package tiger

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/equity-report/internal/geo"
)

// ErrNotPolygon is returned for shapes that carry no polygon geometry.
var ErrNotPolygon = eris.New("tiger: shape is not a polygon")

// shapeRings splits a shapefile polygon into its rings.
func shapeRings(p *shp.Polygon) [][]geom.Coord {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	rings := make([][]geom.Coord, 0, p.NumParts)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || end > int32(len(p.Points)) || start >= end {
			continue
		}
		coords := make([]geom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			coords = append(coords, geom.Coord{p.Points[j].X, p.Points[j].Y})
		}
		rings = append(rings, coords)
	}
	return rings
}

// ShapeToMultiPolygon converts a shapefile shape to a repaired multipolygon
// tagged with srid.
func ShapeToMultiPolygon(shape shp.Shape, srid int) (*geom.MultiPolygon, error) {
	var poly *shp.Polygon
	switch s := shape.(type) {
	case *shp.Polygon:
		poly = s
	case *shp.PolygonZ:
		poly = &shp.Polygon{Box: s.Box, NumParts: s.NumParts, NumPoints: s.NumPoints, Parts: s.Parts, Points: s.Points}
	case *shp.PolygonM:
		poly = &shp.Polygon{Box: s.Box, NumParts: s.NumParts, NumPoints: s.NumPoints, Parts: s.Parts, Points: s.Points}
	default:
		return nil, ErrNotPolygon
	}
	return geo.BuildMultiPolygon(shapeRings(poly), srid)
}

// MultiPolygonToShape converts mp to a shapefile polygon. Shapefiles wind
// outer rings clockwise and holes counter-clockwise, the reverse of the
// in-memory convention.
func MultiPolygonToShape(mp *geom.MultiPolygon) *shp.Polygon {
	var parts [][]shp.Point
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		for j := 0; j < p.NumLinearRings(); j++ {
			coords := p.LinearRing(j).Coords()
			pts := make([]shp.Point, len(coords))
			for k, c := range coords {
				pts[len(coords)-1-k] = shp.Point{X: c[0], Y: c[1]}
			}
			parts = append(parts, pts)
		}
	}
	out := shp.Polygon(*shp.NewPolyLine(parts))
	return &out
}

// EncodeEWKB marshals a geometry to little-endian EWKB carrying its SRID.
func EncodeEWKB(g geom.T) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "tiger: encode EWKB")
	}
	return data, nil
}
