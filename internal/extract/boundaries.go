package extract

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/tiger"
)

// BoundaryResult is the outcome of reading one boundary layer.
type BoundaryResult struct {
	Boundaries []model.Boundary
	// Territories holds state-file records excluded from the state set.
	Territories []model.Boundary
	Skipped     []*GeometryError
}

// readLayer reads a polygon shapefile, reprojects and repairs every record
// and maps its attributes with build.
func readLayer(dataset, path string, target int, build func(f *tiger.Feature) model.Boundary) ([]model.Boundary, []*GeometryError, error) {
	layer, err := tiger.ReadShapefile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "extract: %s", dataset)
	}
	tr, err := geo.NewTransformer(layer.SRID, target)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "extract: %s", dataset)
	}

	var (
		out     []model.Boundary
		skipped []*GeometryError
	)
	for i := range layer.Features {
		f := &layer.Features[i]
		b := build(f)
		if f.Err != nil {
			skipped = append(skipped, &GeometryError{Dataset: dataset, Key: b.Name, Err: f.Err})
			continue
		}
		mp, err := tr.MultiPolygon(f.Geometry)
		if err == nil {
			mp, err = geo.RepairMultiPolygon(mp)
		}
		if err != nil {
			skipped = append(skipped, &GeometryError{Dataset: dataset, Key: b.Name, Err: err})
			continue
		}
		b.Geometry = mp
		b.SRID = target
		out = append(out, b)
	}
	return out, skipped, nil
}

// BuildCounties reads the county cartographic boundaries. NAME becomes
// "NAMELSAD, STUSPS".
func BuildCounties(path string, target int) (*BoundaryResult, error) {
	bounds, skipped, err := readLayer("counties", path, target, func(f *tiger.Feature) model.Boundary {
		statefp := f.Attr("STATEFP")
		stusps := f.Attr("STUSPS")
		if stusps == "" {
			stusps, _ = tiger.AbbrFromFIPS(statefp)
		}
		namelsad := f.Attr("NAMELSAD")
		return model.Boundary{
			Level:    model.LevelCounty,
			Name:     namelsad + ", " + stusps,
			GEOID:    f.Attr("GEOID"),
			State:    f.Attr("STATE_NAME"),
			County:   namelsad,
			StateFP:  statefp,
			CountyFP: f.Attr("COUNTYFP"),
			STUSPS:   stusps,
		}
	})
	if err != nil {
		return nil, err
	}
	artifact.SortBoundaries(bounds)
	return &BoundaryResult{Boundaries: bounds, Skipped: skipped}, nil
}

// BuildStates reads the state cartographic boundaries. Records whose STATEFP
// is in exclude are returned as territories instead of states.
func BuildStates(path string, target int, exclude []string) (*BoundaryResult, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, fp := range exclude {
		excluded[fp] = true
	}
	bounds, skipped, err := readLayer("states", path, target, func(f *tiger.Feature) model.Boundary {
		return model.Boundary{
			Level:   model.LevelState,
			Name:    f.Attr("NAME"),
			GEOID:   f.Attr("GEOID"),
			StateFP: f.Attr("STATEFP"),
			STUSPS:  f.Attr("STUSPS"),
		}
	})
	if err != nil {
		return nil, err
	}

	res := &BoundaryResult{Skipped: skipped}
	for _, b := range bounds {
		if excluded[b.StateFP] {
			b.Level = model.LevelTribeOrTerritory
			res.Territories = append(res.Territories, b)
			continue
		}
		res.Boundaries = append(res.Boundaries, b)
	}
	artifact.SortBoundaries(res.Boundaries)
	artifact.SortBoundaries(res.Territories)
	return res, nil
}

// BuildTribes reads the American Indian/Alaska Native/Native Hawaiian area
// boundaries. NAME comes from namelsad.
func BuildTribes(path string, target int) (*BoundaryResult, error) {
	bounds, skipped, err := readLayer("tribes", path, target, func(f *tiger.Feature) model.Boundary {
		return model.Boundary{
			Level: model.LevelTribeOrTerritory,
			Name:  f.Attr("namelsad"),
			GEOID: f.Attr("geoid"),
		}
	})
	if err != nil {
		return nil, err
	}
	artifact.SortBoundaries(bounds)
	return &BoundaryResult{Boundaries: bounds, Skipped: skipped}, nil
}
