package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX reader.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	HeaderRow  int    // zero-based row holding the column names
	TrimSpace  bool
}

// ReadXLSX reads one sheet of an XLSX workbook and returns its header and
// header-keyed records. Rows above the header row are ignored, as are rows
// with no non-empty cell.
func ReadXLSX(path string, opts XLSXOptions) ([]string, []Record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, nil, err
	}
	if opts.HeaderRow >= len(sheet.Rows) {
		return nil, nil, eris.Errorf("xlsx: header row %d beyond %d rows", opts.HeaderRow, len(sheet.Rows))
	}

	header := cleanHeader(rowToStrings(sheet.Rows[opts.HeaderRow]))
	var records []Record
	for i := opts.HeaderRow + 1; i < len(sheet.Rows); i++ {
		cells := rowToStrings(sheet.Rows[i])
		if blank(cells) {
			continue
		}
		records = append(records, newRecord(i+1, header, cells, opts.TrimSpace))
	}
	return header, records, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
