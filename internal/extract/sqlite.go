package extract

import (
	"context"
	"database/sql"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/equity-report/internal/fetcher"
	"github.com/sells-group/equity-report/internal/model"
)

// DefaultPercentileTable is the GIS export table holding tract percentiles.
const DefaultPercentileTable = "DAC_percentiles_data"

// ReadPercentilesSQLite reads a percentile table out of the GIS SQLite
// export, keyed by normalized GEOID. Later duplicate GEOIDs are ignored.
func ReadPercentilesSQLite(ctx context.Context, path, table string) (map[string]Row, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(err, "sqlite: stat %s", path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	defer db.Close() //nolint:errcheck

	if _, err := db.ExecContext(ctx, "PRAGMA query_only=1"); err != nil {
		return nil, eris.Wrap(err, "sqlite: exec PRAGMA query_only")
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: columns")
	}

	out := make(map[string]Row)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan")
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		geoid := NormalizeTractGEOID(Text(row[model.ColGEOID]))
		if geoid == "" {
			continue
		}
		if _, dup := out[geoid]; !dup {
			out[geoid] = row
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}
	return out, nil
}

// ReadPercentilesCSV reads the same table from a CSV export.
func ReadPercentilesCSV(ctx context.Context, path string) (map[string]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	_, records, err := fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{TrimSpace: true})
	if err != nil {
		return nil, eris.Wrap(err, "extract: read percentiles")
	}
	out := make(map[string]Row, len(records))
	for _, r := range records {
		geoid := NormalizeTractGEOID(r.Get(model.ColGEOID))
		if geoid == "" {
			continue
		}
		if _, dup := out[geoid]; dup {
			continue
		}
		row := make(Row, len(r.Values))
		for k, v := range r.Values {
			row[k] = v
		}
		out[geoid] = row
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
