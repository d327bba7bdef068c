package geospatial

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/db"
	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/tiger"
)

// Schema is the PostGIS schema the publisher writes to.
const Schema = "equity"

var tractColumns = []string{
	"geoid", "city", "county", "population", "dac_status", "qct_status",
	"energy_burden", "housing_burden", "transport_burden", "nonwhite",
	"national_percentile", "state_percentile", "geom",
}

var boundaryColumns = []string{"level", "name", "geoid", "state_fp", "stusps", "geom"}

var housingColumns = []string{
	"name", "address", "city", "state", "zip", "subsidy_name", "owner",
	"assisted_units", "total_units", "geom",
}

// Stats counts the rows written by one Publish call.
type Stats struct {
	Tracts     int64
	Boundaries int64
	Housing    int64
}

// Publisher loads artifacts into the equity schema.
type Publisher struct {
	pool      db.Pool
	batchSize int
	log       *zap.Logger
}

// NewPublisher returns a publisher writing through pool.
func NewPublisher(pool db.Pool) *Publisher {
	return &Publisher{
		pool:      pool,
		batchSize: db.DefaultBatchSize,
		log:       zap.L().With(zap.String("component", "geospatial.publish")),
	}
}

// Publish upserts tracts and boundaries and replaces the housing table.
// Tracts and boundaries are keyed by GEOID and (level, name); the first
// occurrence of a duplicate key wins.
func (p *Publisher) Publish(ctx context.Context, c *artifact.Context) (Stats, error) {
	var st Stats
	start := time.Now()

	rows, err := tractRows(c.Tracts)
	if err != nil {
		return st, err
	}
	st.Tracts, err = db.BulkUpsert(ctx, p.pool, db.UpsertConfig{
		Table:        Schema + ".tracts",
		Columns:      tractColumns,
		ConflictKeys: []string{"geoid"},
	}, rows)
	if err != nil {
		return st, eris.Wrap(err, "geospatial: publish tracts")
	}

	var bounds []model.Boundary
	for _, set := range [][]model.Boundary{c.Cities, c.Counties, c.States, c.Tribes} {
		bounds = append(bounds, set...)
	}
	rows, err = boundaryRows(bounds)
	if err != nil {
		return st, err
	}
	st.Boundaries, err = db.BulkUpsert(ctx, p.pool, db.UpsertConfig{
		Table:        Schema + ".boundaries",
		Columns:      boundaryColumns,
		ConflictKeys: []string{"level", "name"},
	}, rows)
	if err != nil {
		return st, eris.Wrap(err, "geospatial: publish boundaries")
	}

	rows, err = housingRows(c.Housing)
	if err != nil {
		return st, err
	}
	if _, err := p.pool.Exec(ctx, "TRUNCATE "+Schema+".housing"); err != nil {
		return st, eris.Wrap(err, "geospatial: truncate housing")
	}
	st.Housing, err = db.CopyFromSchema(ctx, p.pool, Schema, "housing", housingColumns, rows, p.batchSize)
	if err != nil {
		return st, eris.Wrap(err, "geospatial: publish housing")
	}

	p.log.Info("artifacts published",
		zap.Int64("tracts", st.Tracts),
		zap.Int64("boundaries", st.Boundaries),
		zap.Int64("housing", st.Housing),
		zap.Duration("elapsed", time.Since(start)),
	)
	return st, nil
}

func tractRows(tracts []model.Tract) ([][]any, error) {
	seen := make(map[string]bool, len(tracts))
	rows := make([][]any, 0, len(tracts))
	for i := range tracts {
		t := &tracts[i]
		if seen[t.GEOID] {
			continue
		}
		seen[t.GEOID] = true
		wkb, err := encodeGeom(t.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "geospatial: tract %s", t.GEOID)
		}
		rows = append(rows, []any{
			t.GEOID, t.City, t.County, t.Population, t.DACStatus, t.QCTStatus,
			t.Indicators.EnergyBurden, t.Indicators.HousingBurden, t.Indicators.TransportBurden,
			t.Indicators.Nonwhite, t.NationalPercentile, t.StatePercentile, wkb,
		})
	}
	return rows, nil
}

func boundaryRows(bounds []model.Boundary) ([][]any, error) {
	type key struct {
		level model.Level
		name  string
	}
	seen := make(map[key]bool, len(bounds))
	rows := make([][]any, 0, len(bounds))
	for i := range bounds {
		b := &bounds[i]
		k := key{b.Level, b.Name}
		if seen[k] {
			continue
		}
		seen[k] = true
		wkb, err := encodeGeom(b.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "geospatial: %s boundary %q", b.Level.Key(), b.Name)
		}
		rows = append(rows, []any{b.Level.Key(), b.Name, b.GEOID, b.StateFP, b.STUSPS, wkb})
	}
	return rows, nil
}

func housingRows(props []model.Property) ([][]any, error) {
	rows := make([][]any, 0, len(props))
	for i := range props {
		h := &props[i]
		var loc []byte
		if h.Location != nil && !h.Location.Empty() {
			var err error
			if loc, err = tiger.EncodeEWKB(h.Location); err != nil {
				return nil, eris.Wrapf(err, "geospatial: property %q", h.Key())
			}
		}
		rows = append(rows, []any{
			h.Name, h.Address, h.City, h.State, h.Zip, h.SubsidyName, h.Owner,
			h.AssistedUnits, h.TotalUnits, loc,
		})
	}
	return rows, nil
}

// encodeGeom encodes mp, mapping a missing geometry to NULL.
func encodeGeom(mp *geom.MultiPolygon) ([]byte, error) {
	if mp == nil || mp.Empty() {
		return nil, nil
	}
	return tiger.EncodeEWKB(mp)
}
