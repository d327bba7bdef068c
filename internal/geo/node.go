package geo

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// simpleRings splits a possibly self-intersecting ring into simple closed
// rings. Crossing edges are cut at the crossing point and each loop of the
// resulting walk becomes its own ring. Loops enclosed by a larger loop are
// dropped so the result covers the same area as the outline. Degenerate
// loops are discarded; a nil result means nothing usable remains.
func simpleRings(coords []geom.Coord) [][]geom.Coord {
	open := dedupe(coords)
	if len(open) < 3 {
		return nil
	}
	noded, split := nodeRing(open)
	if !split {
		if r := CleanRing(open); r != nil {
			return [][]geom.Coord{r}
		}
		return nil
	}

	var loops [][]geom.Coord
	for _, l := range splitLoops(noded) {
		if r := CleanRing(l); r != nil {
			loops = append(loops, r)
		}
	}
	sort.SliceStable(loops, func(i, j int) bool {
		return math.Abs(signedArea(loops[i])) > math.Abs(signedArea(loops[j]))
	})
	var out [][]geom.Coord
	for _, l := range loops {
		pt := interiorPoint(l)
		nested := false
		for _, k := range out {
			if xy.IsPointInRing(geom.XY, pt, flatten(k)) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, l)
		}
	}
	return out
}

type segBox struct {
	minX, maxX, minY, maxY float64
}

type cut struct {
	t float64
	c geom.Coord
}

// nodeRing inserts a vertex wherever two non-adjacent edges of the open
// ring cross. Both edges receive the identical coordinate. split reports
// whether any vertex was inserted.
func nodeRing(ring []geom.Coord) (noded []geom.Coord, split bool) {
	n := len(ring)
	boxes := make([]segBox, n)
	order := make([]int, n)
	for i := range ring {
		a, b := ring[i], ring[(i+1)%n]
		boxes[i] = segBox{
			minX: math.Min(a[0], b[0]), maxX: math.Max(a[0], b[0]),
			minY: math.Min(a[1], b[1]), maxY: math.Max(a[1], b[1]),
		}
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return boxes[order[i]].minX < boxes[order[j]].minX })

	cuts := make([][]cut, n)
	for oi, i := range order {
		for _, j := range order[oi+1:] {
			if boxes[j].minX > boxes[i].maxX {
				break
			}
			if boxes[j].minY > boxes[i].maxY || boxes[j].maxY < boxes[i].minY {
				continue
			}
			if j == (i+1)%n || i == (j+1)%n {
				continue
			}
			t, u, c, ok := crossing(ring[i], ring[(i+1)%n], ring[j], ring[(j+1)%n])
			if !ok {
				continue
			}
			if t > 0 && t < 1 {
				cuts[i] = append(cuts[i], cut{t, c})
			}
			if u > 0 && u < 1 {
				cuts[j] = append(cuts[j], cut{u, c})
			}
		}
	}

	noded = make([]geom.Coord, 0, n)
	for i, v := range ring {
		noded = append(noded, v)
		if len(cuts[i]) == 0 {
			continue
		}
		split = true
		sort.Slice(cuts[i], func(a, b int) bool { return cuts[i][a].t < cuts[i][b].t })
		for _, k := range cuts[i] {
			if !samePoint(noded[len(noded)-1], k.c) {
				noded = append(noded, k.c)
			}
		}
	}
	return noded, split
}

// crossing intersects segments p1-p2 and p3-p4. t and u are the positions
// of the hit along each segment. Parallel segments never cross.
func crossing(p1, p2, p3, p4 geom.Coord) (t, u float64, c geom.Coord, ok bool) {
	rx, ry := p2[0]-p1[0], p2[1]-p1[1]
	sx, sy := p4[0]-p3[0], p4[1]-p3[1]
	d := rx*sy - ry*sx
	if d == 0 {
		return 0, 0, nil, false
	}
	qx, qy := p3[0]-p1[0], p3[1]-p1[1]
	t = (qx*sy - qy*sx) / d
	u = (qx*ry - qy*rx) / d
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, 0, nil, false
	}
	switch {
	case t == 0:
		c = p1
	case t == 1:
		c = p2
	case u == 0:
		c = p3
	case u == 1:
		c = p4
	default:
		c = geom.Coord{p1[0] + t*rx, p1[1] + t*ry}
	}
	return t, u, c, true
}

// splitLoops cuts a closed walk into loops at every repeated vertex.
func splitLoops(walk []geom.Coord) [][]geom.Coord {
	type key struct{ x, y float64 }
	var (
		loops [][]geom.Coord
		path  []geom.Coord
		pos   = make(map[key]int)
	)
	for _, v := range walk {
		k := key{v[0], v[1]}
		p, seen := pos[k]
		if !seen {
			pos[k] = len(path)
			path = append(path, v)
			continue
		}
		loop := append([]geom.Coord(nil), path[p:]...)
		loops = append(loops, loop)
		for _, w := range path[p+1:] {
			delete(pos, key{w[0], w[1]})
		}
		path = path[:p+1]
	}
	return append(loops, path)
}

// dedupe drops invalid and repeated consecutive vertices and the closing
// vertex.
func dedupe(coords []geom.Coord) []geom.Coord {
	out := make([]geom.Coord, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		if n := len(out); n > 0 && samePoint(out[n-1], c) {
			continue
		}
		out = append(out, geom.Coord{c[0], c[1]})
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// interiorPoint returns a point strictly inside the simple closed ring. It
// scans a horizontal line that passes through no vertex and takes the
// middle of the widest inside span.
func interiorPoint(ring []geom.Coord) geom.Coord {
	ys := make([]float64, 0, len(ring))
	for _, c := range ring {
		ys = append(ys, c[1])
	}
	sort.Float64s(ys)
	distinct := []float64{ys[0]}
	for _, y := range ys[1:] {
		if y != distinct[len(distinct)-1] {
			distinct = append(distinct, y)
		}
	}
	if len(distinct) < 2 {
		return ring[0]
	}
	mid := len(distinct) / 2
	y := (distinct[mid-1] + distinct[mid]) / 2

	var xs []float64
	for i := 0; i+1 < len(ring); i++ {
		a, b := ring[i], ring[i+1]
		if (a[1] > y) != (b[1] > y) {
			xs = append(xs, a[0]+(y-a[1])*(b[0]-a[0])/(b[1]-a[1]))
		}
	}
	sort.Float64s(xs)
	best, bestW := ring[0], -1.0
	for i := 0; i+1 < len(xs); i += 2 {
		if w := xs[i+1] - xs[i]; w > bestW {
			best, bestW = geom.Coord{(xs[i] + xs[i+1]) / 2, y}, w
		}
	}
	return best
}
