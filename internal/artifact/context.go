// Package artifact reads and writes the canonical extract artifacts and holds
// them in memory for the report pipeline.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

// Artifact file names under the artifact directory.
const (
	TractsFile   = "tracts.geojson"
	HousingFile  = "housing.geojson"
	CountiesFile = "counties.geojson"
	StatesFile   = "states.geojson"
	TribesFile   = "tribes.geojson"
)

// Context is the read-only set of loaded artifacts shared by every report
// request. It must not be mutated after construction.
type Context struct {
	SRID     int
	Tracts   []model.Tract
	Housing  []model.Property
	Counties []model.Boundary
	States   []model.Boundary
	Tribes   []model.Boundary
	Cities   []model.Boundary

	tractIdx map[string]int
	names    map[model.Level]map[string]int
}

// Load reads the artifacts from dir in parallel and indexes them. The tract
// artifact is required; any other missing artifact loads as an empty
// dataset.
func Load(ctx context.Context, dir string, srid int) (*Context, error) {
	log := zap.L().With(zap.String("component", "artifact"))
	start := time.Now()

	var (
		tracts                   []model.Tract
		housing                  []model.Property
		counties, states, tribes []model.Boundary
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tracts, err = ReadTracts(filepath.Join(dir, TractsFile), srid)
		return err
	})
	g.Go(func() error {
		var err error
		housing, err = readOptional(log, filepath.Join(dir, HousingFile), func(p string) ([]model.Property, error) {
			return ReadHousing(p, srid)
		})
		return err
	})
	g.Go(func() error {
		var err error
		counties, err = readOptional(log, filepath.Join(dir, CountiesFile), func(p string) ([]model.Boundary, error) {
			return ReadBoundaries(p, model.LevelCounty, srid)
		})
		return err
	})
	g.Go(func() error {
		var err error
		states, err = readOptional(log, filepath.Join(dir, StatesFile), func(p string) ([]model.Boundary, error) {
			return ReadBoundaries(p, model.LevelState, srid)
		})
		return err
	})
	g.Go(func() error {
		var err error
		tribes, err = readOptional(log, filepath.Join(dir, TribesFile), func(p string) ([]model.Boundary, error) {
			return ReadBoundaries(p, model.LevelTribeOrTerritory, srid)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := New(srid, tracts, housing, counties, states, tribes)
	log.Info("artifacts loaded",
		zap.String("dir", dir),
		zap.Int("tracts", len(c.Tracts)),
		zap.Int("housing", len(c.Housing)),
		zap.Int("counties", len(c.Counties)),
		zap.Int("states", len(c.States)),
		zap.Int("tribes", len(c.Tribes)),
		zap.Int("cities", len(c.Cities)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c, nil
}

func readOptional[T any](log *zap.Logger, path string, read func(string) ([]T, error)) ([]T, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.Warn("artifact missing, loading empty", zap.String("file", filepath.Base(path)))
		return nil, nil
	}
	return read(path)
}

// New builds a Context from already-loaded datasets. City boundaries are
// derived from the tracts.
func New(srid int, tracts []model.Tract, housing []model.Property, counties, states, tribes []model.Boundary) *Context {
	c := &Context{
		SRID:     srid,
		Tracts:   tracts,
		Housing:  housing,
		Counties: counties,
		States:   states,
		Tribes:   tribes,
		Cities:   CityBoundaries(tracts, srid),
		tractIdx: make(map[string]int, len(tracts)),
		names:    make(map[model.Level]map[string]int),
	}
	for i := range tracts {
		if _, dup := c.tractIdx[tracts[i].GEOID]; !dup {
			c.tractIdx[tracts[i].GEOID] = i
		}
	}
	for _, lvl := range []model.Level{model.LevelCity, model.LevelCounty, model.LevelState, model.LevelTribeOrTerritory} {
		bounds := c.boundaries(lvl)
		idx := make(map[string]int, len(bounds))
		for i := range bounds {
			// First occurrence wins on duplicate display names.
			if _, dup := idx[bounds[i].Name]; !dup {
				idx[bounds[i].Name] = i
			}
		}
		c.names[lvl] = idx
	}
	return c
}

func (c *Context) boundaries(level model.Level) []model.Boundary {
	switch level {
	case model.LevelCity:
		return c.Cities
	case model.LevelCounty:
		return c.Counties
	case model.LevelState:
		return c.States
	case model.LevelTribeOrTerritory:
		return c.Tribes
	}
	return nil
}

// Tract returns the tract with the given GEOID.
func (c *Context) Tract(geoid string) (*model.Tract, bool) {
	i, ok := c.tractIdx[geoid]
	if !ok {
		return nil, false
	}
	return &c.Tracts[i], true
}

// Boundary returns the city, county, state or tribe boundary with the given
// display name.
func (c *Context) Boundary(level model.Level, name string) (*model.Boundary, bool) {
	idx, ok := c.names[level]
	if !ok {
		return nil, false
	}
	i, ok := idx[name]
	if !ok {
		return nil, false
	}
	return &c.boundaries(level)[i], true
}

// Names lists the selectable display names of a level in artifact order.
func (c *Context) Names(level model.Level) []string {
	if level == model.LevelTractID {
		out := make([]string, 0, len(c.Tracts))
		for i := range c.Tracts {
			out = append(out, c.Tracts[i].GEOID)
		}
		return out
	}
	bounds := c.boundaries(level)
	out := make([]string, 0, len(bounds))
	seen := make(map[string]bool, len(bounds))
	for i := range bounds {
		if seen[bounds[i].Name] {
			continue
		}
		seen[bounds[i].Name] = true
		out = append(out, bounds[i].Name)
	}
	return out
}

// CityName formats the display name of a city boundary.
func CityName(city, county string) string {
	if county == "" {
		return city
	}
	return fmt.Sprintf("%s (%s)", city, county)
}

// CityBoundaries derives one boundary per distinct (city, county) pair of
// tracts, with the tract polygons combined as its geometry. Tracts without a
// city are skipped.
func CityBoundaries(tracts []model.Tract, srid int) []model.Boundary {
	type key struct{ city, county string }
	parts := make(map[key][]*geom.MultiPolygon)
	var order []key
	for i := range tracts {
		t := &tracts[i]
		if t.City == "" {
			continue
		}
		k := key{t.City, t.County}
		if _, ok := parts[k]; !ok {
			order = append(order, k)
		}
		parts[k] = append(parts[k], t.Geometry)
	}

	out := make([]model.Boundary, 0, len(order))
	for _, k := range order {
		out = append(out, model.Boundary{
			Level:    model.LevelCity,
			Name:     CityName(k.city, k.county),
			City:     k.city,
			County:   k.county,
			Geometry: geo.Union(srid, parts[k]...),
			SRID:     srid,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
