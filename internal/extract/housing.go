package extract

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/equity-report/internal/fetcher"
	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
)

const datasetHousing = "housing"

// HousingInput configures BuildHousing.
type HousingInput struct {
	Path string
	// Encoding is a WHATWG label ("windows-1252", "utf-8"); empty means UTF-8.
	Encoding   string
	Statuses   []string
	TargetSRID int
}

// HousingResult is the outcome of BuildHousing.
type HousingResult struct {
	Properties []model.Property
	Skipped    []*GeometryError
	Filtered   int // rows whose subsidy status is not kept
	NoCoords   int // rows without parseable coordinates
	Duplicates int
}

// BuildHousing cleans the NHPD property export: rows are kept only when the
// subsidy status is one of in.Statuses, coordinates are parsed or the row is
// dropped, and points are taken as EPSG:4326 and reprojected.
func BuildHousing(ctx context.Context, in HousingInput) (*HousingResult, error) {
	records, err := readHousingRecords(ctx, in)
	if err != nil {
		return nil, err
	}
	tr, err := geo.NewTransformer(geo.SRIDWGS84, in.TargetSRID)
	if err != nil {
		return nil, eris.Wrap(err, "extract: housing")
	}

	keep := make(map[string]bool, len(in.Statuses))
	for _, s := range in.Statuses {
		keep[s] = true
	}

	res := &HousingResult{}
	seen := make(map[string]bool)
	for _, r := range records {
		if len(keep) > 0 && !keep[r.Get(model.ColSubsidyStatus)] {
			res.Filtered++
			continue
		}
		lat := ParseFloat(r.Get(model.ColLatitude))
		lon := ParseFloat(r.Get(model.ColLongitude))
		if lat == nil || lon == nil {
			res.NoCoords++
			continue
		}

		var p model.Property
		for _, c := range model.TextColumns {
			*c.Field(&p) = r.Get(c.Column)
		}
		for _, c := range model.NumericColumns {
			*c.Field(&p) = ParseFloat(r.Get(c.Column))
		}
		p.Latitude, p.Longitude = *lat, *lon

		pt, err := tr.Point(geom.NewPointFlat(geom.XY, []float64{*lon, *lat}).SetSRID(geo.SRIDWGS84))
		if err != nil {
			res.Skipped = append(res.Skipped, &GeometryError{Dataset: datasetHousing, Key: p.Key(), Err: err})
			continue
		}
		p.Location = pt

		if seen[p.Key()] {
			res.Duplicates++
			continue
		}
		seen[p.Key()] = true
		res.Properties = append(res.Properties, p)
	}
	return res, nil
}

func readHousingRecords(ctx context.Context, in HousingInput) ([]fetcher.Record, error) {
	if strings.EqualFold(filepath.Ext(in.Path), ".xlsx") {
		_, records, err := fetcher.ReadXLSX(in.Path, fetcher.XLSXOptions{TrimSpace: true})
		if err != nil {
			return nil, eris.Wrap(err, "extract: read housing")
		}
		return records, nil
	}

	f, err := os.Open(in.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open housing %s", in.Path)
	}
	defer f.Close() //nolint:errcheck

	r, err := decodingReader(f, in.Encoding)
	if err != nil {
		return nil, err
	}
	_, records, err := fetcher.ReadCSV(ctx, r, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
	if err != nil {
		return nil, eris.Wrap(err, "extract: read housing")
	}
	return records, nil
}

// decodingReader transcodes a legacy-encoded stream to UTF-8.
func decodingReader(r io.Reader, label string) (io.Reader, error) {
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return r, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(r), nil
}
