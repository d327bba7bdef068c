// Package server exposes the report pipeline over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/equity-report/internal/model"
	"github.com/sells-group/equity-report/internal/report"
)

// Options configure the HTTP API.
type Options struct {
	AllowedOrigins []string
	// DefaultRange applies when eb_min or eb_max is omitted. Nil means
	// report.FullRange.
	DefaultRange *report.Range
}

// Server routes report requests to a generator.
type Server struct {
	gen    *report.Generator
	opts   Options
	ebDef  report.Range
	log    *zap.Logger
	router chi.Router
}

// New builds the router.
func New(gen *report.Generator, opts Options) *Server {
	s := &Server{
		gen:   gen,
		opts:  opts,
		ebDef: report.FullRange,
		log:   zap.L().With(zap.String("component", "server")),
	}
	if opts.DefaultRange != nil {
		s.ebDef = *opts.DefaultRange
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/levels", s.levels)
		r.Get("/locations", s.locations)
		r.Get("/report", s.report)
		r.Get("/report.pdf", s.reportPDF)
		r.Get("/map.png", s.mapPNG)
		r.Get("/tracts.csv", s.tractsCSV)
		r.Get("/tracts.xlsx", s.tractsXLSX)
		r.Get("/housing.csv", s.housingCSV)
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type levelJSON struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (s *Server) levels(w http.ResponseWriter, _ *http.Request) {
	out := make([]levelJSON, 0, len(model.Levels))
	for _, l := range model.Levels {
		out = append(out, levelJSON{Key: l.Key(), Label: l.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) locations(w http.ResponseWriter, r *http.Request) {
	level, err := model.ParseLevel(r.URL.Query().Get("level"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"level": level.Key(),
		"names": s.gen.Context().Names(level),
	})
}

// parseRequest reads the report query parameters.
func (s *Server) parseRequest(r *http.Request) (report.Request, error) {
	q := r.URL.Query()
	var req report.Request

	level, err := model.ParseLevel(q.Get("level"))
	if err != nil {
		return req, err
	}
	req.Level = level
	req.Location = q.Get("location")
	if req.Location == "" {
		return req, eris.New("location is required")
	}

	req.Filters.EnergyBurden = s.ebDef
	if v := q.Get("eb_min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, eris.Errorf("eb_min must be an integer: %q", v)
		}
		req.Filters.EnergyBurden.Lo = float64(n)
	}
	if v := q.Get("eb_max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, eris.Errorf("eb_max must be an integer: %q", v)
		}
		req.Filters.EnergyBurden.Hi = float64(n)
	}
	if err := req.Filters.EnergyBurden.Validate(); err != nil {
		return req, err
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"dac", &req.Filters.RequireDisadvantaged},
		{"qct", &req.Filters.RequireEligible},
		{"cover_only", &req.Options.CoverPageOnly},
		{"housing_list", &req.Options.IncludeHousingList},
		{"detailed", &req.Options.Detailed},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, eris.Errorf("%s must be a boolean: %q", f.name, v)
		}
		*f.dst = b
	}
	return req, nil
}
