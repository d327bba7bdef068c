package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/rotisserie/eris"

	"github.com/sells-group/equity-report/internal/model"
)

var (
	headerFill = [3]int{15, 102, 54}
	rowFill    = [3]int{224, 235, 255}
	detailFill = [3]int{0, 88, 60}
	houseFill  = [3]int{105, 190, 40}
	flagFill   = [3]int{254, 202, 202}
	barFill    = [3]int{0, 88, 60}
	barFlagged = [3]int{220, 38, 38}
)

var (
	tractHeadings = []string{"Tract ID", "City", "County", "Population", "DAC", "HTC", "State %", "National %", "Energy Burden %"}
	tractWidths   = []float64{22, 30, 45, 17, 10, 10, 15, 17, 27}
)

const mapImageName = "map"

// RenderPDF writes doc as a letter-size PDF.
func RenderPDF(doc *Document, w io.Writer) error {
	if doc == nil {
		return eris.New("report: render nil document")
	}
	pdf := fpdf.New("P", "mm", "Letter", "")
	layout(pdf, doc)
	if err := pdf.Output(w); err != nil {
		return eris.Wrap(err, "report: write pdf")
	}
	return nil
}

// layout draws every page of doc onto pdf.
func layout(pdf *fpdf.Fpdf, doc *Document) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	coverPage(pdf, tr, doc)
	if len(doc.Tracts) > 0 {
		pdf.AddPage()
		tractTable(pdf, tr, doc.Tracts)
		for i := range doc.Details {
			detailPage(pdf, tr, &doc.Details[i])
		}
		if len(doc.Housing) > 0 {
			pdf.AddPage()
			for _, p := range doc.Housing {
				propertyBlock(pdf, tr, p)
			}
		}
	}
}

// PDFBytes renders doc into memory.
func PDFBytes(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderPDF(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setFill(pdf *fpdf.Fpdf, c [3]int) { pdf.SetFillColor(c[0], c[1], c[2]) }
func setDraw(pdf *fpdf.Fpdf, c [3]int) { pdf.SetDrawColor(c[0], c[1], c[2]) }

func contentWidth(pdf *fpdf.Fpdf) float64 {
	w, _ := pdf.GetPageSize()
	l, _, r, _ := pdf.GetMargins()
	return w - l - r
}

func coverPage(pdf *fpdf.Fpdf, tr func(string) string, doc *Document) {
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(255, 255, 255)
	setFill(pdf, headerFill)
	title := fmt.Sprintf("%s: %s", doc.Title, doc.GeneratedAt.Format("01-02-2006 15:04:05"))
	pdf.CellFormat(0, 10, tr(title), "0", 0, "C", true, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, tr("Selected Boundary: "+doc.Boundary.Name), "0", 0, "C", false, 0, "")
	pdf.Ln(10)

	if len(doc.Map) > 0 {
		pdf.RegisterImageOptionsReader(mapImageName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(doc.Map))
		pdf.ImageOptions(mapImageName, pageW/4, pdf.GetY(), 100, 75, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
	pdf.Ln(10)

	s := doc.Summary
	summaryRow(pdf, tr, [3]string{
		fmt.Sprintf("%d\nDisadvantaged\nCensus Tracts", s.Disadvantaged),
		fmt.Sprintf("%d\nAffordable\nHousing Properties", s.Housing),
		fmt.Sprintf("%s\nAvg. Energy\nBurden %%", FormatMean(s.MeanEnergyBurden)),
	})
	summaryRow(pdf, tr, [3]string{
		fmt.Sprintf("%d\nHousing Tax Credit\nEligible Tracts", s.Eligible),
		fmt.Sprintf("%d\nAffordable\nHousing Units", s.AssistedUnits),
		fmt.Sprintf("%s\nAvg. Nonwhite\nPercentile", FormatMean(s.MeanNonwhite)),
	})

	if doc.DefinitionsURL != "" {
		pdf.SetTextColor(255, 255, 255)
		setFill(pdf, headerFill)
		pdf.SetX(70)
		pdf.CellFormat(70, 10, "Download Data Definitions", "0", 0, "C", true, 0, doc.DefinitionsURL)
		pdf.SetTextColor(0, 0, 0)
	}
}

// summaryRow draws three 70mm summary cells side by side.
func summaryRow(pdf *fpdf.Fpdf, tr func(string) string, cells [3]string) {
	pdf.SetFont("Helvetica", "B", 12)
	y := pdf.GetY()
	for i, txt := range cells {
		pdf.SetXY(float64(i)*70, y)
		pdf.MultiCell(70, 10, tr(txt), "", "C", false)
	}
	pdf.SetXY(0, y+40)
}

func tractTable(pdf *fpdf.Fpdf, tr func(string) string, rows []Row) {
	header := func() {
		setFill(pdf, headerFill)
		setDraw(pdf, headerFill)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetLineWidth(0.3)
		pdf.SetFont("Helvetica", "B", 8)
		for i, h := range tractHeadings {
			pdf.CellFormat(tractWidths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		setFill(pdf, rowFill)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	fill := false
	for _, r := range rows {
		if pdf.GetY()+6 > pageH-bottom-10 {
			closeTable(pdf, tractWidths)
			pdf.AddPage()
			header()
		}
		cells := []string{
			r.GEOID, r.City, r.County, formatValue(r.Population), r.DAC, r.QCT,
			formatValue(r.StatePercentile), formatValue(r.NationalPercentile), formatValue(r.Indicators.EnergyBurden),
		}
		for i, c := range cells {
			pdf.CellFormat(tractWidths[i], 6, tr(c), "LR", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}
	closeTable(pdf, tractWidths)
}

func closeTable(pdf *fpdf.Fpdf, widths []float64) {
	var total float64
	for _, w := range widths {
		total += w
	}
	pdf.CellFormat(total, 0, "", "T", 0, "", false, 0, "")
	pdf.Ln(-1)
}

func detailPage(pdf *fpdf.Fpdf, tr func(string) string, d *TractDetail) {
	pdf.AddPage()
	width := contentWidth(pdf)

	setFill(pdf, detailFill)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(80, 10, "Census Tract "+d.GEOID, "0", 1, "L", true, 0, "")
	pdf.Ln(2)

	pdf.SetTextColor(0, 0, 0)
	left := [][2]string{
		{"City", d.City},
		{"County", d.County},
		{"State", d.State},
		{"Population", formatValue(d.Population)},
	}
	right := []struct {
		label, value string
		flagged      bool
	}{
		{"DAC Status", d.DACStatus, d.DACFlagged},
		{"QCT Status", d.QCTStatus, d.QCTFlagged},
		{"State Ranking", formatValue(d.StatePercentile), d.StateFlagged},
		{"National Ranking", formatValue(d.NationalPercentile), d.NationalFlagged},
	}
	half := width / 2
	l, _, _, _ := pdf.GetMargins()
	y := pdf.GetY()
	for i := range left {
		pdf.SetXY(l, y+float64(i)*7)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(30, 7, left[i][0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(half-30, 7, tr(left[i][1]), "", 0, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(38, 7, right[i].label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		setFill(pdf, flagFill)
		pdf.CellFormat(half-38, 7, tr(right[i].value), "", 0, "L", right[i].flagged, 0, "")
	}
	pdf.SetXY(l, y+float64(len(left))*7+6)

	labelW := width * 0.3
	barW := width - labelW
	setFill(pdf, headerFill)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 8, "Indicator", "0", 0, "L", true, 0, "")
	pdf.CellFormat(barW, 8, "Percentile", "0", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	for _, iv := range d.Indicators {
		y := pdf.GetY()
		pdf.CellFormat(labelW, 8, iv.Label, "B", 0, "L", false, 0, "")
		x := pdf.GetX()
		if iv.Value != nil {
			if iv.Flagged {
				setFill(pdf, barFlagged)
			} else {
				setFill(pdf, barFill)
			}
			bw := (barW - 20) * iv.Bar / 100
			if bw > 0 {
				pdf.Rect(x, y+2, bw, 4, "F")
			}
			pdf.SetX(x + bw + 1)
			pdf.CellFormat(19, 8, strconv.FormatFloat(*iv.Value, 'f', -1, 64), "", 0, "L", false, 0, "")
		} else {
			pdf.CellFormat(19, 8, "N/A", "", 0, "L", false, 0, "")
		}
		pdf.SetXY(l, y+8)
	}
}

// propertyBlock draws one property of the housing list.
func propertyBlock(pdf *fpdf.Fpdf, tr func(string) string, p *model.Property) {
	width := contentWidth(pdf)
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+60 > pageH-bottom-10 {
		pdf.AddPage()
	}

	pdf.Ln(4)
	setFill(pdf, houseFill)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(width, 9, tr("Property: "+p.Name), "0", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	subsidy := p.SubsidyName
	if p.SubsidySubname != "" {
		subsidy += ", " + p.SubsidySubname
	}
	left := [][2]string{
		{"Street Address", p.Address},
		{"City", p.City},
		{"State", p.State},
		{"Zip Code", p.Zip},
		{"Subsidy", subsidy},
		{"Owner Name", p.Owner},
		{"Rent to FMR Ratio", formatValue(p.RentToFMR)},
	}
	right := [][2]string{
		{"Known Total Units", formatValue(p.TotalUnits)},
		{"Assisted Units", formatValue(p.AssistedUnits)},
		{"Construction", dateRange(p.EarliestConstruction, p.LatestConstruction)},
		{"Subsidy Dates", dateRange(p.StartDate, p.EndDate)},
	}
	half := width / 2
	l, _, _, _ := pdf.GetMargins()
	y := pdf.GetY() + 1
	for i := 0; i < len(left); i++ {
		pdf.SetXY(l, y+float64(i)*6)
		fieldCell(pdf, tr, half, left[i])
		if i < len(right) {
			fieldCell(pdf, tr, half, right[i])
		}
	}
	pdf.SetXY(l, y+float64(len(left))*6+2)
}

func fieldCell(pdf *fpdf.Fpdf, tr func(string) string, width float64, kv [2]string) {
	const labelW = 42
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(labelW, 6, kv[0]+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(width-labelW, 6, tr(kv[1]), "", 0, "L", false, 0, "")
}

// dateRange joins two dates as "from - to", collapsing equal or missing ends.
func dateRange(from, to string) string {
	switch {
	case from == "" || from == to:
		return to
	case to == "":
		return from
	}
	return from + " - " + to
}
