package server

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/report"
)

type summaryJSON struct {
	report.Summary
	MeanEnergyBurdenText string `json:"mean_energy_burden_text"`
	MeanNonwhiteText     string `json:"mean_nonwhite_text"`
}

type boundaryJSON struct {
	Level string `json:"level"`
	Name  string `json:"name"`
	GEOID string `json:"geoid,omitempty"`
}

type tractJSON struct {
	GEOID              string   `json:"geoid"`
	City               string   `json:"city"`
	County             string   `json:"county"`
	Population         *float64 `json:"population"`
	DAC                string   `json:"dac"`
	QCT                string   `json:"qct"`
	StatePercentile    *float64 `json:"state_percentile"`
	NationalPercentile *float64 `json:"national_percentile"`
	EnergyBurden       *float64 `json:"energy_burden"`
}

type reportJSON struct {
	Found      bool          `json:"found"`
	Messages   []string      `json:"messages"`
	Boundary   *boundaryJSON `json:"boundary,omitempty"`
	DocumentID string        `json:"document_id,omitempty"`
	Zoom       float64       `json:"zoom,omitempty"`
	CenterLon  float64       `json:"center_lon,omitempty"`
	CenterLat  float64       `json:"center_lat,omitempty"`
	Summary    *summaryJSON  `json:"summary,omitempty"`
	Tracts     []tractJSON   `json:"tracts"`
	Housing    int           `json:"housing_count"`
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.gen.Run(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := reportJSON{Found: res.Found, Messages: res.Messages, Tracts: []tractJSON{}}
	if out.Messages == nil {
		out.Messages = []string{}
	}
	if res.Found {
		b := res.Selection.Boundary
		out.Boundary = &boundaryJSON{Level: b.Level.Key(), Name: b.Name, GEOID: b.GEOID}
		out.Housing = len(res.Selection.Housing)
		for _, row := range report.SortByEnergyBurden(res.Rows) {
			out.Tracts = append(out.Tracts, tractJSON{
				GEOID:              row.GEOID,
				City:               row.City,
				County:             row.County,
				Population:         row.Population,
				DAC:                row.DAC,
				QCT:                row.QCT,
				StatePercentile:    row.StatePercentile,
				NationalPercentile: row.NationalPercentile,
				EnergyBurden:       row.Indicators.EnergyBurden,
			})
		}
		var sum report.Summary
		if res.Document != nil {
			sum = res.Document.Summary
		} else {
			sum = report.Summarize(res.Rows, res.Selection.Housing)
		}
		out.Summary = &summaryJSON{
			Summary:              sum,
			MeanEnergyBurdenText: report.FormatMean(sum.MeanEnergyBurden),
			MeanNonwhiteText:     report.FormatMean(sum.MeanNonwhite),
		}
	}
	if doc := res.Document; doc != nil {
		out.DocumentID = doc.ID
		out.Zoom = doc.View.Zoom
		out.CenterLon = doc.View.Lon
		out.CenterLat = doc.View.Lat
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) reportPDF(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runForDownload(w, r, nil)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.RenderPDF(res.Document, &buf); err != nil {
		s.fail(w, r, err)
		return
	}
	s.download(w, "application/pdf", fileName(res.Selection.Boundary, "report", "pdf"), buf.Bytes())
}

func (s *Server) mapPNG(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runForDownload(w, r, func(req *report.Request) { req.Options = report.Options{CoverPageOnly: true} })
	if !ok {
		return
	}
	if len(res.Document.Map) == 0 {
		writeError(w, http.StatusNotFound, "no map for this location")
		return
	}
	s.download(w, "image/png", fileName(res.Selection.Boundary, "map", "png"), res.Document.Map)
}

func (s *Server) tractsCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.queryForDownload(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteTractsCSV(&buf, report.SortByEnergyBurden(res.Rows)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.download(w, "text/csv", fileName(res.Selection.Boundary, "tracts", "csv"), buf.Bytes())
}

func (s *Server) tractsXLSX(w http.ResponseWriter, r *http.Request) {
	res, ok := s.queryForDownload(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteTractsXLSX(&buf, report.SortByEnergyBurden(res.Rows)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.download(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fileName(res.Selection.Boundary, "tracts", "xlsx"), buf.Bytes())
}

func (s *Server) housingCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.queryForDownload(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteHousingCSV(&buf, res.Selection.Housing); err != nil {
		s.fail(w, r, err)
		return
	}
	s.download(w, "text/csv", fileName(res.Selection.Boundary, "housing", "csv"), buf.Bytes())
}

// queryForDownload runs the selection without assembling a document.
// Unknown locations answer 404.
func (s *Server) queryForDownload(w http.ResponseWriter, r *http.Request) (*report.Result, bool) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	res, err := s.gen.Query(req)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if !res.Found {
		writeError(w, http.StatusNotFound, strings.Join(res.Messages, " "))
		return nil, false
	}
	return res, true
}

// runForDownload runs the full pipeline. Unknown locations and empty
// selections answer 404.
func (s *Server) runForDownload(w http.ResponseWriter, r *http.Request, adjust func(*report.Request)) (*report.Result, bool) {
	req, err := s.parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if adjust != nil {
		adjust(&req)
	}
	res, err := s.gen.Run(req)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if res.Document == nil {
		writeError(w, http.StatusNotFound, strings.Join(res.Messages, " "))
		return nil, false
	}
	return res, true
}

func (s *Server) download(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9]+`)

// fileName builds a download name like "san-diego-county-ca-tracts.csv".
func fileName(b *model.Boundary, kind, ext string) string {
	base := "selection"
	if b != nil {
		if slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(b.Name), "-"), "-"); slug != "" {
			base = slug
		}
	}
	return fmt.Sprintf("%s-%s.%s", base, kind, ext)
}
