package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// zoomSpans is the longitudinal span in degrees visible at the equator for
// zoom levels 20 down to 1.
var zoomSpans = [20]float64{
	0.0007, 0.0014, 0.003, 0.006, 0.012, 0.024, 0.048, 0.096, 0.192, 0.3712,
	0.768, 1.536, 3.072, 6.144, 11.8784, 23.7568, 47.5136, 98.304, 190.0544, 360.0,
}

const (
	fitMargin = 1.2
	// DefaultAspect is the assumed viewport width:height ratio.
	DefaultAspect = 2.0
)

// View is a map viewport: a zoom level and a lon/lat center.
type View struct {
	Zoom float64
	Lon  float64
	Lat  float64
}

// FitBounds returns the viewport that fits the given extent.
func FitBounds(minLon, minLat, maxLon, maxLat, aspect float64) View {
	width := (maxLon - minLon) * fitMargin
	height := (maxLat - minLat) * fitMargin * aspect
	zoom := math.Min(spanToZoom(width), spanToZoom(height))
	return View{
		Zoom: round(zoom, 2),
		Lon:  round((maxLon+minLon)/2, 6),
		Lat:  round((maxLat+minLat)/2, 6),
	}
}

// spanToZoom linearly interpolates span against zoomSpans, clamping outside
// the table.
func spanToZoom(span float64) float64 {
	if span <= zoomSpans[0] {
		return 20
	}
	last := len(zoomSpans) - 1
	if span >= zoomSpans[last] {
		return 1
	}
	for i := 1; i <= last; i++ {
		if span <= zoomSpans[i] {
			lo, hi := zoomSpans[i-1], zoomSpans[i]
			z := float64(20 - (i - 1))
			return z - (span-lo)/(hi-lo)
		}
	}
	return 1
}

// Fit returns the viewport for a boundary using the outer ring of each part.
// A single part is fitted directly. With several parts the widest per-part
// view wins, centered on that part, and zoomed out one more level.
func Fit(mp *geom.MultiPolygon, aspect float64) (View, bool) {
	if mp == nil || mp.NumPolygons() == 0 {
		return View{}, false
	}
	var best View
	found := false
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if p.NumLinearRings() == 0 || p.LinearRing(0).NumCoords() == 0 {
			continue
		}
		b := geom.NewBounds(geom.XY).Extend(p.LinearRing(0))
		v := FitBounds(b.Min(0), b.Min(1), b.Max(0), b.Max(1), aspect)
		if !found || v.Zoom < best.Zoom {
			best = v
			found = true
		}
	}
	if !found {
		return View{}, false
	}
	if mp.NumPolygons() > 1 {
		best.Zoom = math.Max(0, best.Zoom-1)
	}
	return best, true
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
