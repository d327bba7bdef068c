package report

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

// Selection is the tract and housing subset inside one boundary. Entries
// point into the shared artifact context and must be treated as read-only.
type Selection struct {
	Boundary *model.Boundary
	Tracts   []*model.Tract
	Housing  []*model.Property
}

// Empty reports whether neither subset has any records.
func (s *Selection) Empty() bool { return len(s.Tracts) == 0 && len(s.Housing) == 0 }

type tractMatcher func(b *model.Boundary, t *model.Tract) bool

var tractMatchers = map[model.Level]tractMatcher{
	model.LevelTractID:          matchTractID,
	model.LevelCity:             matchCity,
	model.LevelCounty:           matchCounty,
	model.LevelState:            matchState,
	model.LevelTribeOrTerritory: matchTribe,
}

// Select returns the tracts and housing inside b. Tracts are matched by the
// level's rule; housing is always matched spatially. Input order is kept.
func Select(b *model.Boundary, tracts []model.Tract, housing []model.Property) Selection {
	sel := Selection{Boundary: b}
	if b == nil {
		return sel
	}

	match, ok := tractMatchers[b.Level]
	if ok {
		if b.Level == model.LevelTribeOrTerritory {
			if err := geo.CheckMultiPolygon(b.Geometry); err != nil {
				zap.L().With(zap.String("component", "report")).Warn("boundary geometry unusable, matching tracts by GEOID",
					zap.String("boundary", b.Name),
					zap.Error(err),
				)
			}
		}
		for i := range tracts {
			if match(b, &tracts[i]) {
				sel.Tracts = append(sel.Tracts, &tracts[i])
			}
		}
	}

	for i := range housing {
		if housingInside(b, &housing[i]) {
			sel.Housing = append(sel.Housing, &housing[i])
		}
	}
	return sel
}

func matchTractID(b *model.Boundary, t *model.Tract) bool { return t.GEOID == b.GEOID }

func matchCity(b *model.Boundary, t *model.Tract) bool {
	return t.City == b.City && t.County == b.County
}

func matchCounty(b *model.Boundary, t *model.Tract) bool {
	return b.GEOID != "" && t.CountyFIPS() == b.GEOID
}

func matchState(b *model.Boundary, t *model.Tract) bool {
	return b.GEOID != "" && t.StateFIPS() == b.GEOID
}

// matchTribe tries the spatial path first and uses the identifier path only
// when either geometry cannot be tested.
func matchTribe(b *model.Boundary, t *model.Tract) bool {
	ok, err := tribeIntersects(b, t)
	if eris.Is(err, geo.ErrDegenerate) {
		return tribeGEOIDEquals(b, t)
	}
	return ok
}

// tribeIntersects is the primary tribe/territory rule: the tract polygon
// shares a point with the boundary polygon.
func tribeIntersects(b *model.Boundary, t *model.Tract) (bool, error) {
	if err := geo.CheckMultiPolygon(b.Geometry); err != nil {
		return false, err
	}
	if err := geo.CheckMultiPolygon(t.Geometry); err != nil {
		return false, err
	}
	if !geo.BoundsIntersect(b.Geometry.Bounds(), t.Geometry.Bounds()) {
		return false, nil
	}
	return geo.Intersects(b.Geometry, t.Geometry)
}

// tribeGEOIDEquals is the secondary tribe/territory rule.
func tribeGEOIDEquals(b *model.Boundary, t *model.Tract) bool {
	return b.GEOID != "" && t.GEOID == b.GEOID
}

func housingInside(b *model.Boundary, p *model.Property) bool {
	if p.Location == nil || p.Location.Empty() {
		return false
	}
	return geo.ContainsPoint(b.Geometry, geom.Coord{p.Location.X(), p.Location.Y()})
}
