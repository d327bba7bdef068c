package extract

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/equity-report/internal/fetcher"
	"github.com/sells-group/equity-report/internal/model"
)

// DefaultDACFlag is the DAC_indicator value that marks a disadvantaged tract.
const DefaultDACFlag = "1"

// DACStatus derives the disadvantaged status of a tract from its raw
// indicator. Anything that does not match flag is "Not Disadvantaged".
func DACStatus(indicator, flag string) string {
	if flagMatches(indicator, flag) {
		return model.StatusDisadvantaged
	}
	return model.StatusNotDisadvantaged
}

// flagMatches compares case-insensitively and numerically, so "1", "1.0"
// and "true" are the same flag.
func flagMatches(indicator, flag string) bool {
	a, b := strings.TrimSpace(indicator), strings.TrimSpace(flag)
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	fa, okA := flagNumber(a)
	fb, okB := flagNumber(b)
	return okA && okB && fa == fb
}

func flagNumber(s string) (float64, bool) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y":
		return 1, true
	case "false", "f", "no", "n":
		return 0, true
	}
	return 0, false
}

// NormalizeQCTID converts a HUD QCT identifier to a tract GEOID: left-pad
// with zeros to 12 characters, then drop the final character.
func NormalizeQCTID(id string) string {
	id = strings.TrimSuffix(strings.TrimSpace(id), ".0")
	if id == "" {
		return ""
	}
	if len(id) < 12 {
		id = strings.Repeat("0", 12-len(id)) + id
	}
	return id[:len(id)-1]
}

// QCTSet is the set of tract GEOIDs designated as Qualified Census Tracts.
type QCTSet map[string]struct{}

// NewQCTSet builds a set from raw QCT identifiers.
func NewQCTSet(ids ...string) QCTSet {
	s := make(QCTSet, len(ids))
	for _, id := range ids {
		if n := NormalizeQCTID(id); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Contains reports whether geoid is a QCT.
func (s QCTSet) Contains(geoid string) bool {
	_, ok := s[geoid]
	return ok
}

// Status derives the QCT status of a tract.
func (s QCTSet) Status(geoid string) string {
	if s.Contains(geoid) {
		return model.StatusEligible
	}
	return model.StatusNotEligible
}

var qctColumns = []string{"qct_id", "fips", "geoid"}

// LoadQCT reads the HUD QCT list from a CSV or XLSX file.
func LoadQCT(ctx context.Context, path string) (QCTSet, error) {
	var (
		header  []string
		records []fetcher.Record
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		header, records, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{TrimSpace: true})
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: open qct %s", path)
		}
		defer f.Close() //nolint:errcheck
		header, records, err = fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{TrimSpace: true})
	}
	if err != nil {
		return nil, eris.Wrap(err, "extract: read qct")
	}

	col, ok := findColumn(header, qctColumns...)
	if !ok {
		return nil, eris.Errorf("extract: qct file %s has none of the columns %v", filepath.Base(path), qctColumns)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.Get(col))
	}
	return NewQCTSet(ids...), nil
}

// findColumn returns the first header matching one of the candidates,
// case-insensitively.
func findColumn(header []string, candidates ...string) (string, bool) {
	for _, c := range candidates {
		for _, h := range header {
			if strings.EqualFold(h, c) {
				return h, true
			}
		}
	}
	return "", false
}
