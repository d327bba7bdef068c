package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/config"
	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/report"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"fetch", "normalize", "locations", "report", "serve", "publish"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "equity-report", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestReportCommand_Flags(t *testing.T) {
	for _, name := range []string{"level", "location", "eb-min", "eb-max", "dac", "qct", "cover-only", "housing-list", "detailed", "format", "out"} {
		assert.NotNil(t, reportCmd.Flags().Lookup(name), "report should have --%s flag", name)
	}
	assert.Equal(t, "[pdf]", reportCmd.Flags().Lookup("format").DefValue)
}

func TestFetchAndPublishFlags(t *testing.T) {
	assert.NotNil(t, fetchCmd.Flags().Lookup("products"))
	assert.NotNil(t, fetchCmd.Flags().Lookup("protocol"))
	assert.NotNil(t, publishCmd.Flags().Lookup("skip-migrate"))
	assert.NotNil(t, locationsCmd.Flags().Lookup("level"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "san-diego-county-ca", slug("San Diego County, CA"))
	assert.Equal(t, "chula-vista-san-diego-county", slug("Chula Vista (San Diego County)"))
	assert.Equal(t, "report", slug("(( ))"))
}

func f(v float64) *float64 { return &v }

// writeArtifacts writes a one-county artifact set into dir.
func writeArtifacts(t *testing.T, dir string) {
	t.Helper()
	tract := model.Tract{
		GEOID: "060730001", City: "San Diego", County: "San Diego County",
		Population: f(4200), DACStatus: model.StatusDisadvantaged, QCTStatus: model.StatusEligible,
		Geometry: geo.PolygonFromBounds(-117.2, 32.7, -117.1, 32.8, geo.SRIDNAD83),
	}
	tract.Indicators.EnergyBurden = f(55.5)
	housing := []model.Property{{
		Name: "Harbor View", Address: "5 Bay Rd", AssistedUnits: f(20),
		Latitude: 32.75, Longitude: -117.15,
		Location: geom.NewPointFlat(geom.XY, []float64{-117.15, 32.75}).SetSRID(geo.SRIDNAD83),
	}}
	county := model.Boundary{
		Level: model.LevelCounty, Name: "San Diego County, CA", GEOID: "06073",
		County: "San Diego County", State: "California", StateFP: "06", CountyFP: "073", STUSPS: "CA",
		Geometry: geo.PolygonFromBounds(-117.6, 32.5, -116.1, 33.5, geo.SRIDNAD83), SRID: geo.SRIDNAD83,
	}

	require.NoError(t, artifact.WriteTracts(filepath.Join(dir, artifact.TractsFile), []model.Tract{tract}))
	require.NoError(t, artifact.WriteHousing(filepath.Join(dir, artifact.HousingFile), housing))
	require.NoError(t, artifact.WriteBoundaries(filepath.Join(dir, artifact.CountiesFile), []model.Boundary{county}))
	require.NoError(t, artifact.WriteBoundaries(filepath.Join(dir, artifact.StatesFile), nil))
	require.NoError(t, artifact.WriteBoundaries(filepath.Join(dir, artifact.TribesFile), nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeArtifacts(t, dir)
	return &config.Config{
		Data:    config.DataConfig{ArtifactDir: dir},
		Extract: config.ExtractConfig{TargetSRID: geo.SRIDNAD83},
		Report:  config.ReportConfig{Title: "Equity Report", MapWidth: 200, MapHeight: 100, DefaultEBHi: 100},
	}
}

func TestLoadGeneratorAndWriteOutputs(t *testing.T) {
	cfg = testConfig(t)

	gen, err := loadGenerator(t.Context())
	require.NoError(t, err)
	res, err := gen.Run(report.Request{
		Level:    model.LevelCounty,
		Location: "San Diego County, CA",
		Filters:  report.Filters{EnergyBurden: report.FullRange},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Document)

	out := t.TempDir()
	paths, err := writeOutputs(out, res, []string{"pdf", "png", "csv", "housing", "xlsx"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, "san-diego-county-ca.pdf"),
		filepath.Join(out, "san-diego-county-ca.png"),
		filepath.Join(out, "san-diego-county-ca-tracts.csv"),
		filepath.Join(out, "san-diego-county-ca-housing.csv"),
		filepath.Join(out, "san-diego-county-ca-tracts.xlsx"),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), p)
	}

	_, err = writeOutputs(out, res, []string{"docx"})
	assert.ErrorContains(t, err, "unknown format")
}
