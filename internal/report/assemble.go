package report

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/equity-report/internal/geo"
	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/tiger"
)

// Options control which sections a document carries.
type Options struct {
	CoverPageOnly      bool
	IncludeHousingList bool
	Detailed           bool
}

// TractDetail is one detailed tract page.
type TractDetail struct {
	Row
	State      string
	Indicators []IndicatorValue

	DACFlagged      bool
	QCTFlagged      bool
	StateFlagged    bool
	NationalFlagged bool
}

// Document is an assembled report, ready to render.
type Document struct {
	ID          string
	Title       string
	GeneratedAt time.Time
	Boundary    *model.Boundary
	View        geo.View
	Map         []byte

	Summary Summary
	Tracts  []Row
	Housing []*model.Property
	Details []TractDetail

	// DefinitionsURL, when set, is linked from the cover page.
	DefinitionsURL string
}

// Assembler builds documents from filtered selections.
type Assembler struct {
	Title          string
	DefinitionsURL string
	Catalog        *Catalog
	Renderer       MapRenderer
	Aspect         float64

	now func() time.Time
}

// NewAssembler returns an assembler with the embedded catalog.
func NewAssembler(title string, renderer MapRenderer) *Assembler {
	return &Assembler{
		Title:    title,
		Catalog:  DefaultCatalog(),
		Renderer: renderer,
		Aspect:   geo.DefaultAspect,
		now:      time.Now,
	}
}

// Assemble builds the document for a boundary. rows are the filtered tracts;
// housing is the unfiltered spatial subset. The map is fitted to the
// boundary and drawn by the renderer.
func (a *Assembler) Assemble(b *model.Boundary, rows []Row, housing []*model.Property, opts Options) (*Document, error) {
	if b == nil {
		return nil, eris.New("report: assemble without boundary")
	}
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	doc := &Document{
		ID:             uuid.NewString(),
		Title:          a.Title,
		GeneratedAt:    now(),
		Boundary:       b,
		Summary:        Summarize(rows, housing),
		DefinitionsURL: a.DefinitionsURL,
	}

	if view, ok := geo.Fit(b.Geometry, a.aspect()); ok {
		doc.View = view
		if a.Renderer != nil {
			tracts := make([]*model.Tract, len(rows))
			for i := range rows {
				tracts[i] = rows[i].Tract
			}
			img, err := a.Renderer.Render(view, MapLayers{SRID: b.SRID, Boundary: b, Tracts: tracts, Housing: housing})
			if err != nil {
				return nil, eris.Wrap(err, "report: render map")
			}
			doc.Map = img
		}
	}

	if opts.CoverPageOnly || len(rows) == 0 {
		return doc, nil
	}

	doc.Tracts = SortByEnergyBurden(rows)
	if opts.IncludeHousingList {
		doc.Housing = housing
	}
	if opts.Detailed {
		cat := a.Catalog
		if cat == nil {
			cat = DefaultCatalog()
		}
		doc.Details = make([]TractDetail, 0, len(doc.Tracts))
		for _, r := range doc.Tracts {
			doc.Details = append(doc.Details, TractDetail{
				Row:             r,
				State:           stateAbbr(r.Tract),
				Indicators:      cat.Values(r.Tract),
				DACFlagged:      r.Disadvantaged(),
				QCTFlagged:      r.Eligible(),
				StateFlagged:    cat.Flagged(r.StatePercentile),
				NationalFlagged: cat.Flagged(r.NationalPercentile),
			})
		}
	}
	return doc, nil
}

func (a *Assembler) aspect() float64 {
	if a.Aspect <= 0 {
		return geo.DefaultAspect
	}
	return a.Aspect
}

// SortByEnergyBurden returns a copy of rows ordered by energy burden
// percentile, highest first. Rows without a value go last.
func SortByEnergyBurden(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Indicators.EnergyBurden, out[j].Indicators.EnergyBurden
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a > *b
	})
	return out
}

// stateAbbr returns the USPS code of the tract's state, falling back to the
// trailing code of a "County, ST" name.
func stateAbbr(t *model.Tract) string {
	if abbr, ok := tiger.AbbrFromFIPS(t.StateFIPS()); ok {
		return abbr
	}
	if i := strings.LastIndex(t.County, ", "); i >= 0 {
		return t.County[i+2:]
	}
	return ""
}
