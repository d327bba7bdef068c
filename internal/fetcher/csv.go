package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// Record is one data row keyed by header name.
type Record struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of col, or "" when absent.
func (r Record) Get(col string) string {
	return strings.TrimSpace(r.Values[col])
}

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
	TrimSpace  bool
}

// newRecord pairs header names with cells. Missing trailing cells are empty;
// repeated header names keep the first column.
func newRecord(line int, header, cells []string, trim bool) Record {
	vals := make(map[string]string, len(header))
	for i, h := range header {
		if _, dup := vals[h]; dup {
			continue
		}
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		if trim {
			v = strings.TrimSpace(v)
		}
		vals[h] = v
	}
	return Record{Line: line, Values: vals}
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// StreamCSV reads a headed CSV file and sends header-keyed records to a
// channel. The header is sent on headerCh (buffered, one value) before the
// first record. Both returned channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan Record, <-chan error) {
	headerCh := make(chan []string, 1)
	recCh := make(chan Record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)
		defer close(headerCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		first, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "csv: read header")
			return
		}
		header := cleanHeader(first)
		headerCh <- header

		line := 1
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			cells, err := reader.Read()
			if err == io.EOF {
				return
			}
			line++
			if err != nil {
				errCh <- eris.Wrapf(err, "csv: read row %d", line)
				return
			}

			select {
			case recCh <- newRecord(line, header, cells, opts.TrimSpace):
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return headerCh, recCh, errCh
}

// ReadCSV collects every record of a headed CSV file.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]string, []Record, error) {
	headerCh, recCh, errCh := StreamCSV(ctx, r, opts)
	var records []Record
	for rec := range recCh {
		records = append(records, rec)
	}
	if err := <-errCh; err != nil {
		return nil, nil, err
	}
	return <-headerCh, records, nil
}
