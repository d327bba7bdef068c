package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/equity-report/internal/model"
)

// Boundary artifact property keys.
const (
	propName     = "NAME"
	propGEOID    = "GEOID"
	propState    = "STATE"
	propCounty   = "COUNTY"
	propStateFP  = "STATEFP"
	propCountyFP = "COUNTYFP"
	propSTUSPS   = "STUSPS"
	propLat      = "lat"
	propLon      = "lon"
)

// WriteTracts writes the tract artifact sorted by GEOID.
func WriteTracts(path string, tracts []model.Tract) error {
	sorted := make([]model.Tract, len(tracts))
	copy(sorted, tracts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].GEOID < sorted[j].GEOID })

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(sorted))}
	for i := range sorted {
		t := &sorted[i]
		props := map[string]any{
			model.ColGEOID:        t.GEOID,
			model.ColCity:         t.City,
			model.ColCountyName:   t.County,
			model.ColPopulation:   t.Population,
			model.ColDACIndicator: t.DACIndicator,
			model.ColDACStatus:    t.DACStatus,
			model.ColQCTStatus:    t.QCTStatus,
		}
		for _, c := range model.IndicatorColumns {
			props[c.Column] = *c.Field(&t.Indicators)
		}
		for _, c := range model.SummaryColumns {
			props[c.Column] = *c.Field(t)
		}
		fc.Features = append(fc.Features, feature(t.GEOID, polygonal(t.Geometry), props))
	}
	return writeCollection(path, fc)
}

// WriteHousing writes the housing artifact sorted by name+address.
func WriteHousing(path string, props []model.Property) error {
	sorted := make([]model.Property, len(props))
	copy(sorted, props)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(sorted))}
	for i := range sorted {
		p := &sorted[i]
		attrs := map[string]any{
			propLat: p.Latitude,
			propLon: p.Longitude,
		}
		for _, c := range model.TextColumns {
			attrs[c.Column] = *c.Field(p)
		}
		for _, c := range model.NumericColumns {
			attrs[c.Column] = *c.Field(p)
		}
		var g geom.T
		if p.Location != nil {
			g = p.Location
		}
		fc.Features = append(fc.Features, feature(p.Key(), g, attrs))
	}
	return writeCollection(path, fc)
}

// WriteBoundaries writes a county, state or tribe artifact sorted by NAME
// then GEOID.
func WriteBoundaries(path string, bounds []model.Boundary) error {
	sorted := make([]model.Boundary, len(bounds))
	copy(sorted, bounds)
	SortBoundaries(sorted)

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(sorted))}
	for i := range sorted {
		b := &sorted[i]
		props := map[string]any{
			propName:  b.Name,
			propGEOID: b.GEOID,
		}
		if b.Level == model.LevelCounty || b.Level == model.LevelState {
			props[propSTUSPS] = b.STUSPS
			props[propStateFP] = b.StateFP
		}
		if b.Level == model.LevelCounty {
			props[propState] = b.State
			props[propCounty] = b.County
			props[propCountyFP] = b.CountyFP
		}
		fc.Features = append(fc.Features, feature(b.GEOID, polygonal(b.Geometry), props))
	}
	return writeCollection(path, fc)
}

// SortBoundaries orders boundaries by display name, then GEOID.
func SortBoundaries(b []model.Boundary) {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].Name != b[j].Name {
			return b[i].Name < b[j].Name
		}
		return b[i].GEOID < b[j].GEOID
	})
}

func feature(id string, g geom.T, props map[string]any) *geojson.Feature {
	return &geojson.Feature{ID: id, Geometry: g, Properties: props}
}

// polygonal keeps a nil multipolygon from becoming a non-nil geom.T.
func polygonal(mp *geom.MultiPolygon) geom.T {
	if mp == nil {
		return nil
	}
	return mp
}

// writeCollection marshals fc and replaces path atomically.
func writeCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrapf(err, "artifact: marshal %s", filepath.Base(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "artifact: create dir")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "artifact: write %s", filepath.Base(path))
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrapf(err, "artifact: rename %s", filepath.Base(path))
	}
	return nil
}

func readCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read %s", filepath.Base(path))
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "artifact: decode %s", filepath.Base(path))
	}
	return &fc, nil
}

// ReadTracts loads a tract artifact.
func ReadTracts(path string, srid int) ([]model.Tract, error) {
	fc, err := readCollection(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Tract, 0, len(fc.Features))
	for _, f := range fc.Features {
		t := model.Tract{
			GEOID:        text(f.Properties, model.ColGEOID),
			City:         text(f.Properties, model.ColCity),
			County:       text(f.Properties, model.ColCountyName),
			Population:   number(f.Properties, model.ColPopulation),
			DACIndicator: text(f.Properties, model.ColDACIndicator),
			DACStatus:    text(f.Properties, model.ColDACStatus),
			QCTStatus:    text(f.Properties, model.ColQCTStatus),
		}
		for _, c := range model.IndicatorColumns {
			*c.Field(&t.Indicators) = number(f.Properties, c.Column)
		}
		for _, c := range model.SummaryColumns {
			*c.Field(&t) = number(f.Properties, c.Column)
		}
		t.Geometry = multiPolygon(f.Geometry, srid)
		out = append(out, t)
	}
	return out, nil
}

// ReadHousing loads a housing artifact.
func ReadHousing(path string, srid int) ([]model.Property, error) {
	fc, err := readCollection(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Property, 0, len(fc.Features))
	for _, f := range fc.Features {
		var p model.Property
		for _, c := range model.TextColumns {
			*c.Field(&p) = text(f.Properties, c.Column)
		}
		for _, c := range model.NumericColumns {
			*c.Field(&p) = number(f.Properties, c.Column)
		}
		if v := number(f.Properties, propLat); v != nil {
			p.Latitude = *v
		}
		if v := number(f.Properties, propLon); v != nil {
			p.Longitude = *v
		}
		if pt, ok := f.Geometry.(*geom.Point); ok && pt != nil {
			pt.SetSRID(srid)
			p.Location = pt
		}
		out = append(out, p)
	}
	return out, nil
}

// ReadBoundaries loads a county, state or tribe artifact.
func ReadBoundaries(path string, level model.Level, srid int) ([]model.Boundary, error) {
	fc, err := readCollection(path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Boundary, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, model.Boundary{
			Level:    level,
			Name:     text(f.Properties, propName),
			GEOID:    text(f.Properties, propGEOID),
			State:    text(f.Properties, propState),
			County:   text(f.Properties, propCounty),
			StateFP:  text(f.Properties, propStateFP),
			CountyFP: text(f.Properties, propCountyFP),
			STUSPS:   text(f.Properties, propSTUSPS),
			Geometry: multiPolygon(f.Geometry, srid),
			SRID:     srid,
		})
	}
	return out, nil
}

func multiPolygon(g geom.T, srid int) *geom.MultiPolygon {
	switch v := g.(type) {
	case *geom.MultiPolygon:
		v.SetSRID(srid)
		return v
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(v.Layout())
		if err := mp.Push(v); err != nil {
			return nil
		}
		mp.SetSRID(srid)
		return mp
	}
	return nil
}

func text(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func number(props map[string]any, key string) *float64 {
	if v, ok := props[key].(float64); ok {
		return &v
	}
	return nil
}
