package report

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/artifact"
	"github.com/sells-group/equity-report/internal/model"
)

// Informational messages for empty results.
const (
	MsgNoTracts   = "No census tracts found for this location."
	MsgNoHousing  = "No housing data found for this location."
	MsgNoFiltered = "No census tracts match the selected filters."
)

// Request is one report query.
type Request struct {
	Level    model.Level
	Location string
	Filters  Filters
	Options  Options
}

// Result is the outcome of a query. Found is false when the location does
// not name a boundary at the level; that is not an error.
type Result struct {
	Found     bool
	Selection Selection
	Rows      []Row
	Messages  []string
	Document  *Document
}

// Generator runs report queries over a loaded artifact context.
type Generator struct {
	ctx       *artifact.Context
	assembler *Assembler
	log       *zap.Logger
}

// NewGenerator returns a generator over c.
func NewGenerator(c *artifact.Context, a *Assembler) *Generator {
	return &Generator{
		ctx:       c,
		assembler: a,
		log:       zap.L().With(zap.String("component", "report")),
	}
}

// Context returns the shared artifact context.
func (g *Generator) Context() *artifact.Context { return g.ctx }

// Query resolves, selects and filters without assembling a document.
func (g *Generator) Query(req Request) (*Result, error) {
	if err := req.Filters.EnergyBurden.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	b, ok := Resolve(g.ctx, req.Level, req.Location)
	if !ok {
		res.Messages = append(res.Messages, fmt.Sprintf("No %s named %q was found.", req.Level, req.Location))
		return res, nil
	}
	res.Found = true
	res.Selection = Select(b, g.ctx.Tracts, g.ctx.Housing)
	res.Rows = Filter(res.Selection.Tracts, req.Filters)

	if len(res.Selection.Housing) == 0 {
		res.Messages = append(res.Messages, MsgNoHousing)
	}
	if len(res.Selection.Tracts) == 0 {
		res.Messages = append(res.Messages, MsgNoTracts)
	} else if len(res.Rows) == 0 {
		res.Messages = append(res.Messages, MsgNoFiltered)
	}
	return res, nil
}

// Run queries and, when the selection has any records, assembles the
// document.
func (g *Generator) Run(req Request) (*Result, error) {
	start := time.Now()
	res, err := g.Query(req)
	if err != nil {
		return nil, err
	}
	if !res.Found || res.Selection.Empty() {
		g.log.Info("report skipped",
			zap.String("level", req.Level.Key()),
			zap.String("location", req.Location),
			zap.Bool("found", res.Found),
		)
		return res, nil
	}

	doc, err := g.assembler.Assemble(res.Selection.Boundary, res.Rows, res.Selection.Housing, req.Options)
	if err != nil {
		return nil, eris.Wrapf(err, "report: assemble %s %q", req.Level.Key(), req.Location)
	}
	res.Document = doc

	g.log.Info("report assembled",
		zap.String("id", doc.ID),
		zap.String("level", req.Level.Key()),
		zap.String("location", req.Location),
		zap.Int("tracts", len(res.Selection.Tracts)),
		zap.Int("filtered", len(res.Rows)),
		zap.Int("housing", len(res.Selection.Housing)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}
