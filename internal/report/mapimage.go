package report

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/image/vector"

	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

// MapLayers is the data drawn on a report map.
type MapLayers struct {
	SRID     int
	Boundary *model.Boundary
	Tracts   []*model.Tract
	Housing  []*model.Property
}

// MapRenderer produces the PNG map image embedded in a report.
type MapRenderer interface {
	Render(view geo.View, layers MapLayers) ([]byte, error)
}

const tileSize = 256

var (
	mapBackground = color.NRGBA{R: 242, G: 242, B: 240, A: 255}
	tractFill     = color.NRGBA{R: 0, G: 0, B: 255, A: 51}
	boundaryLine  = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	housingDot    = color.NRGBA{R: 255, G: 0, B: 0, A: 128}
)

// RasterRenderer draws the map in Web Mercator pixel space: tracts filled,
// boundary outlined, housing as dots.
type RasterRenderer struct {
	Width     int
	Height    int
	LineWidth float32
	DotRadius float32
}

// NewRasterRenderer returns a renderer for a width x height image.
func NewRasterRenderer(width, height int) *RasterRenderer {
	return &RasterRenderer{Width: width, Height: height, LineWidth: 3, DotRadius: 3}
}

// Render implements MapRenderer.
func (r *RasterRenderer) Render(view geo.View, layers MapLayers) ([]byte, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, eris.Errorf("report: invalid map size %dx%d", r.Width, r.Height)
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(mapBackground), image.Point{}, draw.Src)

	p := newProjector(view, layers.SRID, r.Width, r.Height)
	z := vector.NewRasterizer(r.Width, r.Height)

	for _, t := range layers.Tracts {
		if t.Geometry == nil {
			continue
		}
		z.Reset(r.Width, r.Height)
		p.fill(z, t.Geometry)
		z.Draw(img, img.Bounds(), image.NewUniform(tractFill), image.Point{})
	}

	if b := layers.Boundary; b != nil && b.Geometry != nil {
		z.Reset(r.Width, r.Height)
		p.stroke(z, b.Geometry, r.LineWidth)
		z.Draw(img, img.Bounds(), image.NewUniform(boundaryLine), image.Point{})
	}

	for _, h := range layers.Housing {
		if h.Location == nil || h.Location.Empty() {
			continue
		}
		z.Reset(r.Width, r.Height)
		x, y := p.pixel(h.Location.X(), h.Location.Y())
		dot(z, x, y, r.DotRadius)
		z.Draw(img, img.Bounds(), image.NewUniform(housingDot), image.Point{})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, eris.Wrap(err, "report: encode map png")
	}
	return buf.Bytes(), nil
}

// projector maps geometry coordinates to image pixels around a view.
type projector struct {
	mercator bool
	scale    float64 // pixels per world unit
	cx, cy   float64 // view center in world pixels
	w, h     float64
}

func newProjector(view geo.View, srid, width, height int) *projector {
	p := &projector{
		mercator: srid == geo.SRIDWebMercator,
		scale:    tileSize * math.Pow(2, view.Zoom),
		w:        float64(width),
		h:        float64(height),
	}
	p.cx, p.cy = p.world(view.Lon, view.Lat)
	return p
}

// world returns normalized Web Mercator coordinates scaled to pixels.
func (p *projector) world(lon, lat float64) (float64, float64) {
	lat = math.Max(-85.05112878, math.Min(85.05112878, lat))
	x := (lon + 180) / 360
	s := math.Sin(lat * math.Pi / 180)
	y := 0.5 - math.Log((1+s)/(1-s))/(4*math.Pi)
	return x * p.scale, y * p.scale
}

func (p *projector) pixel(x, y float64) (float32, float32) {
	if p.mercator {
		x, y = geo.MercatorToLonLat(x, y)
	}
	wx, wy := p.world(x, y)
	return float32(wx - p.cx + p.w/2), float32(wy - p.cy + p.h/2)
}

func (p *projector) fill(z *vector.Rasterizer, mp *geom.MultiPolygon) {
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			flat := poly.LinearRing(j).FlatCoords()
			stride := poly.Stride()
			if len(flat) < 3*stride {
				continue
			}
			x, y := p.pixel(flat[0], flat[1])
			z.MoveTo(x, y)
			for k := stride; k+1 < len(flat); k += stride {
				x, y = p.pixel(flat[k], flat[k+1])
				z.LineTo(x, y)
			}
			z.ClosePath()
		}
	}
}

// stroke draws every ring edge as a quad of the given width.
func (p *projector) stroke(z *vector.Rasterizer, mp *geom.MultiPolygon, width float32) {
	half := float64(width) / 2
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		stride := poly.Stride()
		for j := 0; j < poly.NumLinearRings(); j++ {
			flat := poly.LinearRing(j).FlatCoords()
			for k := 0; k+stride+1 < len(flat); k += stride {
				ax, ay := p.pixel(flat[k], flat[k+1])
				bx, by := p.pixel(flat[k+stride], flat[k+stride+1])
				segment(z, ax, ay, bx, by, half)
			}
		}
	}
}

func segment(z *vector.Rasterizer, ax, ay, bx, by float32, half float64) {
	dx, dy := float64(bx-ax), float64(by-ay)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := float32(-dy/l*half), float32(dx/l*half)
	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(bx+nx, by+ny)
	z.LineTo(bx-nx, by-ny)
	z.LineTo(ax-nx, ay-ny)
	z.ClosePath()
}

// dot approximates a circle with an octagon.
func dot(z *vector.Rasterizer, x, y, r float32) {
	const n = 8
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / n
		px := x + r*float32(math.Cos(a))
		py := y + r*float32(math.Sin(a))
		if i == 0 {
			z.MoveTo(px, py)
		} else {
			z.LineTo(px, py)
		}
	}
	z.ClosePath()
}
