package geo

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrUnsupportedCRS is returned for a coordinate reference system the
// package cannot convert.
var ErrUnsupportedCRS = eris.New("geo: unsupported coordinate reference system")

// ErrCoordOutOfRange is returned when a converted coordinate is not finite or
// falls outside the valid range of the target system.
var ErrCoordOutOfRange = eris.New("geo: coordinate out of range")

const (
	earthRadius = 6378137.0
	maxMercLat  = 85.05112878
)

// SRIDFromPRJ identifies the EPSG code of an ESRI .prj WKT definition.
func SRIDFromPRJ(wkt string) (int, error) {
	s := strings.ToUpper(strings.Join(strings.Fields(wkt), ""))
	switch {
	case s == "":
		return 0, eris.Wrap(ErrUnsupportedCRS, "empty projection")
	case strings.Contains(s, "MERCATOR_AUXILIARY_SPHERE"),
		strings.Contains(s, "PSEUDO-MERCATOR"),
		strings.Contains(s, "POPULAR_VISUALISATION"),
		strings.Contains(s, "AUTHORITY[\"EPSG\",\"3857\"]"):
		return SRIDWebMercator, nil
	case strings.HasPrefix(s, "PROJCS"):
		return 0, eris.Wrapf(ErrUnsupportedCRS, "projected system %.40s", wkt)
	case strings.Contains(s, "NORTH_AMERICAN_1983"), strings.Contains(s, "NAD83"):
		return SRIDNAD83, nil
	case strings.Contains(s, "WGS_1984"), strings.Contains(s, "WGS84"), strings.Contains(s, "WGS1984"):
		return SRIDWGS84, nil
	}
	return 0, eris.Wrapf(ErrUnsupportedCRS, "unrecognized definition %.40s", wkt)
}

// Transformer converts XY coordinates between two supported SRIDs.
// NAD83 and WGS84 are treated as identical at report precision.
type Transformer struct {
	src, dst int
}

// NewTransformer returns a transformer from src to dst.
func NewTransformer(src, dst int) (*Transformer, error) {
	for _, s := range []int{src, dst} {
		if !supported(s) {
			return nil, eris.Wrapf(ErrUnsupportedCRS, "EPSG:%d", s)
		}
	}
	return &Transformer{src: src, dst: dst}, nil
}

func supported(srid int) bool {
	return srid == SRIDNAD83 || srid == SRIDWGS84 || srid == SRIDWebMercator
}

func geographic(srid int) bool { return srid == SRIDNAD83 || srid == SRIDWGS84 }

// Target returns the destination SRID.
func (t *Transformer) Target() int { return t.dst }

// Coord converts one coordinate pair.
func (t *Transformer) Coord(x, y float64) (float64, float64, error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, eris.Wrapf(ErrCoordOutOfRange, "(%v, %v)", x, y)
	}
	if t.src == SRIDWebMercator && geographic(t.dst) {
		x, y = MercatorToLonLat(x, y)
	} else if geographic(t.src) && t.dst == SRIDWebMercator {
		if !inLonLatRange(x, y) {
			return 0, 0, eris.Wrapf(ErrCoordOutOfRange, "(%v, %v)", x, y)
		}
		x, y = LonLatToMercator(x, y)
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, eris.Wrapf(ErrCoordOutOfRange, "(%v, %v)", x, y)
	}
	if geographic(t.dst) && !inLonLatRange(x, y) {
		return 0, 0, eris.Wrapf(ErrCoordOutOfRange, "(%v, %v)", x, y)
	}
	return x, y, nil
}

func inLonLatRange(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// MultiPolygon returns a converted copy of mp tagged with the target SRID.
func (t *Transformer) MultiPolygon(mp *geom.MultiPolygon) (*geom.MultiPolygon, error) {
	flat, err := t.flat(mp.FlatCoords(), mp.Stride())
	if err != nil {
		return nil, err
	}
	out := geom.NewMultiPolygonFlat(mp.Layout(), flat, mp.Endss())
	out.SetSRID(t.dst)
	return out, nil
}

// Point returns a converted copy of p tagged with the target SRID.
func (t *Transformer) Point(p *geom.Point) (*geom.Point, error) {
	x, y, err := t.Coord(p.X(), p.Y())
	if err != nil {
		return nil, err
	}
	return geom.NewPointFlat(geom.XY, []float64{x, y}).SetSRID(t.dst), nil
}

func (t *Transformer) flat(in []float64, stride int) ([]float64, error) {
	out := make([]float64, len(in))
	copy(out, in)
	for i := 0; i+1 < len(out); i += stride {
		x, y, err := t.Coord(out[i], out[i+1])
		if err != nil {
			return nil, err
		}
		out[i], out[i+1] = x, y
	}
	return out, nil
}

// LonLatToMercator projects geographic degrees onto EPSG:3857 meters.
// Latitudes beyond the Web Mercator limit are clamped.
func LonLatToMercator(lon, lat float64) (float64, float64) {
	lat = math.Max(-maxMercLat, math.Min(maxMercLat, lat))
	x := earthRadius * lon * math.Pi / 180
	y := earthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}

// MercatorToLonLat inverts LonLatToMercator.
func MercatorToLonLat(x, y float64) (float64, float64) {
	lon := x / earthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}
