package report

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/equity-report/internal/model"
)

// tractExportColumns is the tract export header: identity, statuses,
// display flags, summary rankings and every indicator.
func tractExportColumns() []string {
	cols := []string{
		model.ColGEOID, model.ColCity, model.ColCountyName, model.ColPopulation,
		model.ColDACIndicator, model.ColDACStatus, model.ColQCTStatus, "DAC_check", "QCT_check",
	}
	for _, c := range model.SummaryColumns {
		cols = append(cols, c.Column)
	}
	for _, c := range model.IndicatorColumns {
		cols = append(cols, c.Column)
	}
	return cols
}

func tractExportRow(r Row) []string {
	out := []string{
		r.GEOID, r.City, r.County, formatValue(r.Population),
		r.DACIndicator, r.DACStatus, r.QCTStatus, r.DAC, r.QCT,
	}
	for _, c := range model.SummaryColumns {
		out = append(out, formatValue(*c.Field(r.Tract)))
	}
	for _, c := range model.IndicatorColumns {
		out = append(out, formatValue(*c.Field(&r.Indicators)))
	}
	return out
}

func housingExportColumns() []string {
	cols := make([]string, 0, len(model.TextColumns)+len(model.NumericColumns))
	for _, c := range model.TextColumns {
		cols = append(cols, c.Column)
	}
	for _, c := range model.NumericColumns {
		cols = append(cols, c.Column)
	}
	return cols
}

func housingExportRow(p *model.Property) []string {
	out := make([]string, 0, len(model.TextColumns)+len(model.NumericColumns))
	for _, c := range model.TextColumns {
		out = append(out, *c.Field(p))
	}
	for _, c := range model.NumericColumns {
		out = append(out, formatValue(*c.Field(p)))
	}
	return out
}

// WriteTractsCSV writes the filtered tracts as CSV. Undefined values are
// blank cells.
func WriteTractsCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tractExportColumns()); err != nil {
		return eris.Wrap(err, "report: write tract header")
	}
	for _, r := range rows {
		if err := cw.Write(tractExportRow(r)); err != nil {
			return eris.Wrap(err, "report: write tract row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush tract csv")
}

// WriteHousingCSV writes the housing subset as CSV.
func WriteHousingCSV(w io.Writer, housing []*model.Property) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(housingExportColumns()); err != nil {
		return eris.Wrap(err, "report: write housing header")
	}
	for _, p := range housing {
		if err := cw.Write(housingExportRow(p)); err != nil {
			return eris.Wrap(err, "report: write housing row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush housing csv")
}

// WriteTractsXLSX writes the filtered tracts as a one-sheet workbook with
// numeric cells for defined values.
func WriteTractsXLSX(w io.Writer, rows []Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Tracts")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range tractExportColumns() {
		header.AddCell().SetString(c)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		for _, s := range []string{r.GEOID, r.City, r.County} {
			row.AddCell().SetString(s)
		}
		numberCell(row, r.Population)
		for _, s := range []string{r.DACIndicator, r.DACStatus, r.QCTStatus, r.DAC, r.QCT} {
			row.AddCell().SetString(s)
		}
		for _, c := range model.SummaryColumns {
			numberCell(row, *c.Field(r.Tract))
		}
		for _, c := range model.IndicatorColumns {
			numberCell(row, *c.Field(&r.Indicators))
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write xlsx")
	}
	return nil
}

func numberCell(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}
