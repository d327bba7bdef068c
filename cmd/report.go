package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/report"
)

var (
	reportLevel       string
	reportLocation    string
	reportEBMin       int
	reportEBMax       int
	reportDAC         bool
	reportQCT         bool
	reportCoverOnly   bool
	reportHousingList bool
	reportDetailed    bool
	reportFormats     []string
	reportOut         string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a report for one location",
	Long:  "Resolves a location at the given level, selects and filters its tracts and housing, and writes the requested outputs (pdf, png, csv, xlsx).",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("report"); err != nil {
			return err
		}
		level, err := model.ParseLevel(reportLevel)
		if err != nil {
			return err
		}
		req := report.Request{
			Level:    level,
			Location: reportLocation,
			Filters: report.Filters{
				EnergyBurden:         report.Range{Lo: float64(reportEBMin), Hi: float64(reportEBMax)},
				RequireDisadvantaged: reportDAC,
				RequireEligible:      reportQCT,
			},
			Options: report.Options{
				CoverPageOnly:      reportCoverOnly,
				IncludeHousingList: reportHousingList,
				Detailed:           reportDetailed,
			},
		}
		if !cmd.Flags().Changed("eb-min") {
			req.Filters.EnergyBurden.Lo = float64(cfg.Report.DefaultEBLo)
		}
		if !cmd.Flags().Changed("eb-max") {
			req.Filters.EnergyBurden.Hi = float64(cfg.Report.DefaultEBHi)
		}

		gen, err := loadGenerator(cmd.Context())
		if err != nil {
			return err
		}
		res, err := gen.Run(req)
		if err != nil {
			return err
		}
		for _, msg := range res.Messages {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
		if res.Document == nil {
			return nil
		}

		out := reportOut
		if out == "" {
			out = cfg.Report.OutputDir
		}
		paths, err := writeOutputs(out, res, reportFormats)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

// loadGenerator reads the artifacts and wires the report pipeline from config.
func loadGenerator(ctx context.Context) (*report.Generator, error) {
	c, err := artifact.Load(ctx, cfg.Data.ArtifactDir, cfg.Extract.TargetSRID)
	if err != nil {
		return nil, err
	}
	catalog, err := report.LoadCatalog(cfg.Report.IndicatorsFile)
	if err != nil {
		return nil, err
	}
	a := report.NewAssembler(cfg.Report.Title, report.NewRasterRenderer(cfg.Report.MapWidth, cfg.Report.MapHeight))
	a.Catalog = catalog
	a.DefinitionsURL = cfg.Report.DefinitionsURL
	return report.NewGenerator(c, a), nil
}

// writeOutputs writes one file per format into dir and returns their paths.
func writeOutputs(dir string, res *report.Result, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "report: create %s", dir)
	}
	base := slug(res.Selection.Boundary.Name)
	rows := report.SortByEnergyBurden(res.Rows)

	var paths []string
	for _, format := range formats {
		var (
			name  string
			write func(f *os.File) error
		)
		switch strings.ToLower(format) {
		case "pdf":
			name = base + ".pdf"
			write = func(f *os.File) error { return report.RenderPDF(res.Document, f) }
		case "png":
			if len(res.Document.Map) == 0 {
				zap.L().Warn("no map to write", zap.String("location", res.Selection.Boundary.Name))
				continue
			}
			name = base + ".png"
			write = func(f *os.File) error {
				_, err := f.Write(res.Document.Map)
				return err
			}
		case "csv":
			name = base + "-tracts.csv"
			write = func(f *os.File) error { return report.WriteTractsCSV(f, rows) }
		case "housing":
			name = base + "-housing.csv"
			write = func(f *os.File) error { return report.WriteHousingCSV(f, res.Selection.Housing) }
		case "xlsx":
			name = base + "-tracts.xlsx"
			write = func(f *os.File) error { return report.WriteTractsXLSX(f, rows) }
		default:
			return paths, eris.Errorf("report: unknown format %q (valid: pdf, png, csv, housing, xlsx)", format)
		}

		path := filepath.Join(dir, name)
		if err := writeFile(path, write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return eris.Wrapf(err, "report: write %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "report: close %s", path)
	}
	return nil
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "report"
	}
	return s
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportLevel, "level", "county", "geography level: tract, city, county, state, tribe")
	f.StringVar(&reportLocation, "location", "", "location display name (see the locations command)")
	f.IntVar(&reportEBMin, "eb-min", 0, "minimum energy burden percentile (default from config)")
	f.IntVar(&reportEBMax, "eb-max", 100, "maximum energy burden percentile (default from config)")
	f.BoolVar(&reportDAC, "dac", false, "only disadvantaged tracts")
	f.BoolVar(&reportQCT, "qct", false, "only qualified census tracts")
	f.BoolVar(&reportCoverOnly, "cover-only", false, "cover page only")
	f.BoolVar(&reportHousingList, "housing-list", false, "include the housing table")
	f.BoolVar(&reportDetailed, "detailed", false, "include per-tract indicator pages")
	f.StringSliceVar(&reportFormats, "format", []string{"pdf"}, "outputs to write: pdf, png, csv, housing, xlsx")
	f.StringVar(&reportOut, "out", "", "output directory (default report.output_dir)")
	_ = reportCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(reportCmd)
}
