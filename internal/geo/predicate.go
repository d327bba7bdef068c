package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// ErrDegenerate is returned by the predicates when an operand cannot take
// part in a spatial test: nil, empty, or with a ring of fewer than four
// coordinates.
var ErrDegenerate = eris.New("geo: degenerate geometry")

// CheckMultiPolygon reports ErrDegenerate for geometries that cannot be
// tested spatially.
func CheckMultiPolygon(mp *geom.MultiPolygon) error {
	if mp == nil || mp.Empty() || mp.NumPolygons() == 0 {
		return ErrDegenerate
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if p.NumLinearRings() == 0 {
			return eris.Wrapf(ErrDegenerate, "polygon %d has no rings", i)
		}
		for j := 0; j < p.NumLinearRings(); j++ {
			if p.LinearRing(j).NumCoords() < 4 {
				return eris.Wrapf(ErrDegenerate, "polygon %d ring %d", i, j)
			}
		}
	}
	return nil
}

// BoundsIntersect reports whether two bounding boxes share any point.
func BoundsIntersect(a, b *geom.Bounds) bool {
	if a == nil || b == nil || a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return a.Min(0) <= b.Max(0) && b.Min(0) <= a.Max(0) &&
		a.Min(1) <= b.Max(1) && b.Min(1) <= a.Max(1)
}

// ContainsPoint reports whether c lies inside or on the boundary of mp.
// Points inside a hole are outside; points on a hole edge are inside.
func ContainsPoint(mp *geom.MultiPolygon, c geom.Coord) bool {
	if mp == nil || mp.Empty() {
		return false
	}
	b := mp.Bounds()
	if c[0] < b.Min(0) || c[0] > b.Max(0) || c[1] < b.Min(1) || c[1] > b.Max(1) {
		return false
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		if polygonContains(mp.Polygon(i), c) {
			return true
		}
	}
	return false
}

func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(geom.XY, c, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for j := 1; j < p.NumLinearRings(); j++ {
		hole := p.LinearRing(j).FlatCoords()
		if xy.IsPointInRing(geom.XY, c, hole) && !onRing(hole, c) {
			return false
		}
	}
	return true
}

func onRing(flat []float64, c geom.Coord) bool {
	for i := 0; i+3 < len(flat); i += 2 {
		a := geom.Coord{flat[i], flat[i+1]}
		b := geom.Coord{flat[i+2], flat[i+3]}
		if cross(a, b, c) == 0 && onSegment(a, b, c) {
			return true
		}
	}
	return false
}

// Intersects reports whether two multipolygons share any point. It returns
// ErrDegenerate when either operand fails CheckMultiPolygon.
func Intersects(a, b *geom.MultiPolygon) (bool, error) {
	if err := CheckMultiPolygon(a); err != nil {
		return false, err
	}
	if err := CheckMultiPolygon(b); err != nil {
		return false, err
	}
	if !BoundsIntersect(a.Bounds(), b.Bounds()) {
		return false, nil
	}
	for i := 0; i < a.NumPolygons(); i++ {
		pa := a.Polygon(i)
		for j := 0; j < b.NumPolygons(); j++ {
			pb := b.Polygon(j)
			if polygonsIntersect(pa, pb) {
				return true, nil
			}
		}
	}
	return false, nil
}

func polygonsIntersect(a, b *geom.Polygon) bool {
	if !BoundsIntersect(a.Bounds(), b.Bounds()) {
		return false
	}
	// One shell vertex inside the other polygon covers containment.
	if polygonContains(b, a.LinearRing(0).Coord(0)) || polygonContains(a, b.LinearRing(0).Coord(0)) {
		return true
	}
	for i := 0; i < a.NumLinearRings(); i++ {
		ra := a.LinearRing(i).FlatCoords()
		for j := 0; j < b.NumLinearRings(); j++ {
			if ringsCross(ra, b.LinearRing(j).FlatCoords()) {
				return true
			}
		}
	}
	return false
}

func ringsCross(ra, rb []float64) bool {
	for i := 0; i+3 < len(ra); i += 2 {
		p1 := geom.Coord{ra[i], ra[i+1]}
		p2 := geom.Coord{ra[i+2], ra[i+3]}
		for j := 0; j+3 < len(rb); j += 2 {
			q1 := geom.Coord{rb[j], rb[j+1]}
			q2 := geom.Coord{rb[j+2], rb[j+3]}
			if segmentsIntersect(p1, p2, q1, q2) {
				return true
			}
		}
	}
	return false
}

func cross(a, b, c geom.Coord) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, c geom.Coord) bool {
	return min(a[0], b[0]) <= c[0] && c[0] <= max(a[0], b[0]) &&
		min(a[1], b[1]) <= c[1] && c[1] <= max(a[1], b[1])
}

func segmentsIntersect(p1, p2, q1, q2 geom.Coord) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}
