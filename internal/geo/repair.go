package geo

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// ErrUnrepairable is returned when a geometry has no usable shell left
// after repair.
var ErrUnrepairable = eris.New("geo: geometry has no usable shell")

// CleanRing drops repeated consecutive vertices and closes the ring. It
// returns nil when fewer than three distinct vertices or zero area remain.
func CleanRing(coords []geom.Coord) []geom.Coord {
	out := dedupe(coords)
	if len(out) < 3 {
		return nil
	}
	out = append(out, geom.Coord{out[0][0], out[0][1]})
	if signedArea(out) == 0 {
		return nil
	}
	return out
}

func samePoint(a, b geom.Coord) bool { return a[0] == b[0] && a[1] == b[1] }

// signedArea is positive for counter-clockwise rings.
func signedArea(ring []geom.Coord) float64 {
	var a float64
	for i := 0; i+1 < len(ring); i++ {
		a += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return a / 2
}

// orient returns ring with counter-clockwise winding when ccw is true and
// clockwise otherwise.
func orient(ring []geom.Coord, ccw bool) []geom.Coord {
	if xy.IsRingCounterClockwise(geom.XY, flatten(ring)) == ccw {
		return ring
	}
	rev := make([]geom.Coord, len(ring))
	for i, c := range ring {
		rev[len(ring)-1-i] = c
	}
	return rev
}

func flatten(ring []geom.Coord) []float64 {
	flat := make([]float64, 0, len(ring)*2)
	for _, c := range ring {
		flat = append(flat, c[0], c[1])
	}
	return flat
}

// RepairMultiPolygon returns a valid copy of mp: rings closed, repeated
// vertices removed, degenerate holes dropped, shells counter-clockwise and
// holes clockwise. A self-intersecting shell is cut at its crossings and
// each lobe becomes its own polygon; holes go to the lobe that contains
// them and are dropped when none does. Polygons whose shell is degenerate
// are dropped; if none remain the geometry is unrepairable.
func RepairMultiPolygon(mp *geom.MultiPolygon) (*geom.MultiPolygon, error) {
	if mp == nil {
		return nil, eris.Wrap(ErrUnrepairable, "nil geometry")
	}
	var polys [][][]geom.Coord
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if p.NumLinearRings() == 0 {
			continue
		}
		shells := simpleRings(p.LinearRing(0).Coords())
		if len(shells) == 0 {
			continue
		}
		group := make([][][]geom.Coord, len(shells))
		for k, s := range shells {
			group[k] = [][]geom.Coord{orient(s, true)}
		}
		for j := 1; j < p.NumLinearRings(); j++ {
			for _, hole := range simpleRings(p.LinearRing(j).Coords()) {
				pt := interiorPoint(hole)
				for k, s := range shells {
					if xy.IsPointInRing(geom.XY, pt, flatten(s)) {
						group[k] = append(group[k], orient(hole, false))
						break
					}
				}
			}
		}
		polys = append(polys, group...)
	}
	return assemble(polys, mp.SRID())
}

// BuildMultiPolygon assembles unstructured rings, as stored in a shapefile
// polygon record, into a repaired multipolygon. Self-intersecting rings
// are split into their lobes first. Rings are then nested by containment:
// a ring inside a shell, and not inside one of that shell's holes, becomes
// a hole; every other ring starts a new polygon.
func BuildMultiPolygon(rings [][]geom.Coord, srid int) (*geom.MultiPolygon, error) {
	type ring struct {
		coords []geom.Coord
		area   float64
	}
	var cleaned []ring
	for _, r := range rings {
		for _, c := range simpleRings(r) {
			cleaned = append(cleaned, ring{coords: c, area: math.Abs(signedArea(c))})
		}
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return cleaned[i].area > cleaned[j].area })

	var polys [][][]geom.Coord
	for _, r := range cleaned {
		pt := interiorPoint(r.coords)
		owner := -1
		// Smallest enclosing shell wins; polys are in descending area order.
		for k := len(polys) - 1; k >= 0; k-- {
			if !xy.IsPointInRing(geom.XY, pt, flatten(polys[k][0])) {
				continue
			}
			inHole := false
			for _, h := range polys[k][1:] {
				if xy.IsPointInRing(geom.XY, pt, flatten(h)) {
					inHole = true
					break
				}
			}
			if !inHole {
				owner = k
			}
			break
		}
		if owner >= 0 {
			polys[owner] = append(polys[owner], orient(r.coords, false))
			continue
		}
		polys = append(polys, [][]geom.Coord{orient(r.coords, true)})
	}
	return assemble(polys, srid)
}

func assemble(polys [][][]geom.Coord, srid int) (*geom.MultiPolygon, error) {
	if len(polys) == 0 {
		return nil, ErrUnrepairable
	}
	mp := geom.NewMultiPolygon(geom.XY)
	for _, rings := range polys {
		p, err := geom.NewPolygon(geom.XY).SetCoords(rings)
		if err != nil {
			return nil, eris.Wrap(err, "geo: build polygon")
		}
		if err := mp.Push(p); err != nil {
			return nil, eris.Wrap(err, "geo: push polygon")
		}
	}
	mp.SetSRID(srid)
	return mp, nil
}

// PolygonFromBounds returns a rectangular multipolygon covering b.
func PolygonFromBounds(minX, minY, maxX, maxY float64, srid int) *geom.MultiPolygon {
	ring := []geom.Coord{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}
	p := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{ring})
	mp := geom.NewMultiPolygon(geom.XY)
	_ = mp.Push(p)
	mp.SetSRID(srid)
	return mp
}

// Union concatenates the polygons of several multipolygons. Overlaps are
// kept as separate parts, which is sufficient for the containment and
// intersection predicates in this package.
func Union(srid int, parts ...*geom.MultiPolygon) *geom.MultiPolygon {
	out := geom.NewMultiPolygon(geom.XY)
	for _, mp := range parts {
		if mp == nil {
			continue
		}
		for i := 0; i < mp.NumPolygons(); i++ {
			_ = out.Push(mp.Polygon(i))
		}
	}
	out.SetSRID(srid)
	return out
}
