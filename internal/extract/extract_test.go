package extract

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/config"
	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/tiger"
)

func rawSources(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	tracts := filepath.Join(dir, "tracts.geojson")
	require.NoError(t, os.WriteFile(tracts, []byte(tractFixture), 0o644))
	qct := filepath.Join(dir, "qct.csv")
	require.NoError(t, os.WriteFile(qct, []byte("qct_id\n60730001001\n"), 0o644))
	housing := filepath.Join(dir, "nhpd.csv")
	require.NoError(t, os.WriteFile(housing, []byte(housingCSV), 0o644))

	states := filepath.Join(dir, "states.shp")
	ca, pr := square(-120, 35), square(-66.5, 18)
	ca.Values = []any{"California", "CA", "06", "06"}
	pr.Values = []any{"Puerto Rico", "PR", "72", "72"}
	require.NoError(t, tiger.WritePolygons(states, geo.SRIDNAD83,
		[]tiger.Column{{Name: "NAME"}, {Name: "STUSPS"}, {Name: "GEOID"}, {Name: "STATEFP"}},
		[]tiger.Row{ca, pr}))

	return Options{
		Tracts:           tracts,
		QCT:              qct,
		Housing:          housing,
		HousingEnc:       "windows-1252",
		Counties:         writeCountyLayer(t),
		States:           states,
		TargetSRID:       geo.SRIDNAD83,
		DACFlag:          "1",
		HousingStatuses:  []string{"Active", "Inconclusive"},
		ExcludeStateFIPS: tiger.TerritoryFIPS,
	}
}

func TestRun_WritesArtifacts(t *testing.T) {
	opts := rawSources(t)
	opts.ArtifactDir = t.TempDir()
	opts.CartoShapefile = filepath.Join(opts.ArtifactDir, "carto", "carto_dac.shp")

	sum, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Written["tracts"])
	assert.Equal(t, 1, sum.Skipped["tracts"])
	assert.Equal(t, 2, sum.Written["housing"])
	assert.Equal(t, 3, sum.Written["counties"])
	assert.Equal(t, 1, sum.Written["states"])
	assert.Equal(t, 1, sum.Written["tribes"], "territories land in the tribe artifact")

	ctx, err := artifact.Load(context.Background(), opts.ArtifactDir, geo.SRIDNAD83)
	require.NoError(t, err)
	require.Len(t, ctx.Tracts, 2)
	assert.Equal(t, "06073000100", ctx.Tracts[0].GEOID)
	assert.Equal(t, model.StatusEligible, ctx.Tracts[0].QCTStatus)
	require.NotNil(t, ctx.Tracts[0].Indicators.EnergyBurden)
	assert.InDelta(t, 55.5, *ctx.Tracts[0].Indicators.EnergyBurden, 1e-9)
	_, ok := ctx.Boundary(model.LevelTribeOrTerritory, "Puerto Rico")
	assert.True(t, ok)
	_, ok = ctx.Boundary(model.LevelState, "Puerto Rico")
	assert.False(t, ok)

	layer, err := tiger.ReadShapefile(opts.CartoShapefile)
	require.NoError(t, err)
	require.Len(t, layer.Features, 2)
	assert.Equal(t, "06073000100", layer.Features[0].Attr("GEOID"))
	assert.Equal(t, model.StatusDisadvantaged, layer.Features[0].Attr("dac"))
	eb, err := strconv.ParseFloat(layer.Features[0].Attr("eb_pct"), 64)
	require.NoError(t, err)
	assert.InDelta(t, 55.5, eb, 1e-9)
}

func TestRun_Idempotent(t *testing.T) {
	opts := rawSources(t)

	dirA, dirB := t.TempDir(), t.TempDir()
	opts.ArtifactDir = dirA
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	opts.ArtifactDir = dirB
	_, err = Run(context.Background(), opts)
	require.NoError(t, err)

	for _, name := range []string{artifact.TractsFile, artifact.HousingFile, artifact.CountiesFile, artifact.StatesFile, artifact.TribesFile} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, name)
	}
}

func TestRun_RequiresTracts(t *testing.T) {
	_, err := Run(context.Background(), Options{ArtifactDir: t.TempDir()})
	require.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Data.RawDir = "raw"
	cfg.Data.ArtifactDir = "out"
	cfg.Sources.Tracts = "tracts.geojson"
	cfg.Sources.Housing = "/abs/nhpd.csv"
	cfg.Extract.CartoShapefile = "carto/carto_dac.shp"
	cfg.Extract.TargetSRID = 4269

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, filepath.Join("raw", "tracts.geojson"), opts.Tracts)
	assert.Equal(t, "/abs/nhpd.csv", opts.Housing)
	assert.Empty(t, opts.QCT)
	assert.Equal(t, filepath.Join("out", "carto", "carto_dac.shp"), opts.CartoShapefile)
	assert.Equal(t, 4269, opts.TargetSRID)
}
