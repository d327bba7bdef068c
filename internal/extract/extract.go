// Package extract normalizes the raw tract, housing, QCT and boundary sources
// into the canonical artifacts read by the report pipeline.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/config"
	"github.com/sells-group/equity-report/internal/model"
)

// GeometryError reports a record whose geometry could not be repaired or
// reprojected. The record is skipped and the batch continues.
type GeometryError struct {
	Dataset string
	Key     string
	Err     error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("extract: %s record %q: invalid geometry: %v", e.Dataset, e.Key, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// Options locates the raw sources and tunes normalization. Empty optional
// source paths skip that dataset.
type Options struct {
	ArtifactDir string

	Tracts       string
	Percentiles  string
	TractsSQLite string
	TractsTable  string
	QCT          string
	Housing      string
	HousingEnc   string
	Counties     string
	States       string
	Tribes       string

	TargetSRID       int
	DACFlag          string
	HousingStatuses  []string
	ExcludeStateFIPS []string
	CartoShapefile   string
}

// OptionsFromConfig resolves relative source paths against data.raw_dir.
func OptionsFromConfig(cfg *config.Config) Options {
	raw := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(cfg.Data.RawDir, p)
	}
	carto := cfg.Extract.CartoShapefile
	if carto != "" && !filepath.IsAbs(carto) {
		carto = filepath.Join(cfg.Data.ArtifactDir, carto)
	}
	return Options{
		ArtifactDir:      cfg.Data.ArtifactDir,
		Tracts:           raw(cfg.Sources.Tracts),
		Percentiles:      raw(cfg.Sources.Percentiles),
		TractsSQLite:     raw(cfg.Sources.TractsSQLite),
		TractsTable:      cfg.Sources.TractsTable,
		QCT:              raw(cfg.Sources.QCT),
		Housing:          raw(cfg.Sources.Housing),
		HousingEnc:       cfg.Sources.HousingEnc,
		Counties:         raw(cfg.Sources.Counties),
		States:           raw(cfg.Sources.States),
		Tribes:           raw(cfg.Sources.Tribes),
		TargetSRID:       cfg.Extract.TargetSRID,
		DACFlag:          cfg.Extract.DACFlag,
		HousingStatuses:  cfg.Extract.HousingStatuses,
		ExcludeStateFIPS: cfg.Extract.ExcludeStateFIPS,
		CartoShapefile:   carto,
	}
}

// Summary counts what a normalization run wrote and skipped.
type Summary struct {
	Written map[string]int
	Skipped map[string]int
}

// Run normalizes every configured dataset and writes its artifact. Datasets
// run one after another; an unreadable source or unsupported CRS stops the
// run, while per-record geometry failures are logged and skipped.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	log := zap.L().With(zap.String("component", "extract"))
	start := time.Now()
	sum := &Summary{Written: map[string]int{}, Skipped: map[string]int{}}

	if opts.Tracts == "" {
		return nil, eris.New("extract: tract source is required")
	}

	qct := QCTSet{}
	if opts.QCT != "" {
		var err error
		if qct, err = LoadQCT(ctx, opts.QCT); err != nil {
			return nil, err
		}
		log.Info("qct list loaded", zap.Int("tracts", len(qct)))
	}

	pct, err := loadPercentiles(ctx, opts)
	if err != nil {
		return nil, err
	}

	tracts, err := BuildTracts(TractInput{
		Path:        opts.Tracts,
		Percentiles: pct,
		QCT:         qct,
		DACFlag:     opts.DACFlag,
		TargetSRID:  opts.TargetSRID,
	})
	if err != nil {
		return nil, err
	}
	logSkipped(log, tracts.Skipped)
	if tracts.Unmatched > 0 || tracts.Dropped > 0 {
		log.Warn("tract features dropped",
			zap.Int("unmatched", tracts.Unmatched),
			zap.Int("dropped", tracts.Dropped),
		)
	}
	if err := write(sum, datasetTracts, len(tracts.Tracts), len(tracts.Skipped), func() error {
		return artifact.WriteTracts(filepath.Join(opts.ArtifactDir, artifact.TractsFile), tracts.Tracts)
	}); err != nil {
		return nil, err
	}
	if opts.CartoShapefile != "" {
		if err := WriteCarto(opts.CartoShapefile, opts.TargetSRID, tracts.Tracts); err != nil {
			return nil, err
		}
		log.Info("carto shapefile written", zap.String("path", opts.CartoShapefile))
	}

	if opts.Housing != "" {
		housing, err := BuildHousing(ctx, HousingInput{
			Path:       opts.Housing,
			Encoding:   opts.HousingEnc,
			Statuses:   opts.HousingStatuses,
			TargetSRID: opts.TargetSRID,
		})
		if err != nil {
			return nil, err
		}
		logSkipped(log, housing.Skipped)
		log.Info("housing cleaned",
			zap.Int("kept", len(housing.Properties)),
			zap.Int("filtered_status", housing.Filtered),
			zap.Int("no_coordinates", housing.NoCoords),
			zap.Int("duplicates", housing.Duplicates),
		)
		if err := write(sum, datasetHousing, len(housing.Properties), len(housing.Skipped), func() error {
			return artifact.WriteHousing(filepath.Join(opts.ArtifactDir, artifact.HousingFile), housing.Properties)
		}); err != nil {
			return nil, err
		}
	}

	if opts.Counties != "" {
		counties, err := BuildCounties(opts.Counties, opts.TargetSRID)
		if err != nil {
			return nil, err
		}
		logSkipped(log, counties.Skipped)
		if err := write(sum, "counties", len(counties.Boundaries), len(counties.Skipped), func() error {
			return artifact.WriteBoundaries(filepath.Join(opts.ArtifactDir, artifact.CountiesFile), counties.Boundaries)
		}); err != nil {
			return nil, err
		}
	}

	var territories []model.Boundary
	if opts.States != "" {
		states, err := BuildStates(opts.States, opts.TargetSRID, opts.ExcludeStateFIPS)
		if err != nil {
			return nil, err
		}
		logSkipped(log, states.Skipped)
		territories = states.Territories
		if err := write(sum, "states", len(states.Boundaries), len(states.Skipped), func() error {
			return artifact.WriteBoundaries(filepath.Join(opts.ArtifactDir, artifact.StatesFile), states.Boundaries)
		}); err != nil {
			return nil, err
		}
	}

	if opts.Tribes != "" || len(territories) > 0 {
		var (
			tribes  []model.Boundary
			skipped []*GeometryError
		)
		if opts.Tribes != "" {
			res, err := BuildTribes(opts.Tribes, opts.TargetSRID)
			if err != nil {
				return nil, err
			}
			tribes, skipped = res.Boundaries, res.Skipped
			logSkipped(log, skipped)
		}
		tribes = append(tribes, territories...)
		artifact.SortBoundaries(tribes)
		if err := write(sum, "tribes", len(tribes), len(skipped), func() error {
			return artifact.WriteBoundaries(filepath.Join(opts.ArtifactDir, artifact.TribesFile), tribes)
		}); err != nil {
			return nil, err
		}
	}

	log.Info("normalization complete",
		zap.Any("written", sum.Written),
		zap.Any("skipped", sum.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sum, nil
}

func loadPercentiles(ctx context.Context, opts Options) (map[string]Row, error) {
	switch {
	case opts.TractsSQLite != "":
		table := opts.TractsTable
		if table == "" {
			table = DefaultPercentileTable
		}
		return ReadPercentilesSQLite(ctx, opts.TractsSQLite, table)
	case opts.Percentiles != "":
		return ReadPercentilesCSV(ctx, opts.Percentiles)
	}
	return nil, nil
}

func write(sum *Summary, dataset string, written, skipped int, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	sum.Written[dataset] = written
	sum.Skipped[dataset] = skipped
	zap.L().Info("artifact written",
		zap.String("component", "extract"),
		zap.String("dataset", dataset),
		zap.Int("records", written),
		zap.Int("skipped", skipped),
	)
	return nil
}

func logSkipped(log *zap.Logger, errs []*GeometryError) {
	for _, e := range errs {
		log.Warn("skipping record with invalid geometry",
			zap.String("dataset", e.Dataset),
			zap.String("key", e.Key),
			zap.Error(e.Err),
		)
	}
}
