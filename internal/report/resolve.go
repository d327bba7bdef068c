// Package report turns a geography selection into a filtered report: it
// resolves the boundary, selects the tracts and housing inside it, applies the
// user filters and assembles the document, map image and table exports.
package report

import (
	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/model"
)

type resolveFunc func(c *artifact.Context, name string) (*model.Boundary, bool)

var resolvers = map[model.Level]resolveFunc{
	model.LevelTractID:          resolveTract,
	model.LevelCity:             resolveNamed(model.LevelCity),
	model.LevelCounty:           resolveNamed(model.LevelCounty),
	model.LevelState:            resolveNamed(model.LevelState),
	model.LevelTribeOrTerritory: resolveNamed(model.LevelTribeOrTerritory),
}

// Resolve finds the boundary whose display name equals name at the given
// level. A missing name is reported as false, not as an error.
func Resolve(c *artifact.Context, level model.Level, name string) (*model.Boundary, bool) {
	fn, ok := resolvers[level]
	if !ok || c == nil {
		return nil, false
	}
	return fn(c, name)
}

// resolveTract treats the GEOID as the display name and the tract polygon as
// the boundary.
func resolveTract(c *artifact.Context, name string) (*model.Boundary, bool) {
	t, ok := c.Tract(name)
	if !ok {
		return nil, false
	}
	return &model.Boundary{
		Level:    model.LevelTractID,
		Name:     t.GEOID,
		GEOID:    t.GEOID,
		City:     t.City,
		County:   t.County,
		StateFP:  t.StateFIPS(),
		Geometry: t.Geometry,
		SRID:     c.SRID,
	}, true
}

func resolveNamed(level model.Level) resolveFunc {
	return func(c *artifact.Context, name string) (*model.Boundary, bool) {
		return c.Boundary(level, name)
	}
}
