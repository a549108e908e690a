// Package api serves the number picker over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/powerball-superposition/internal/analysis"
	"github.com/MJE43/powerball-superposition/internal/engine"
	"github.com/MJE43/powerball-superposition/internal/events"
	"github.com/MJE43/powerball-superposition/internal/store"
)

// maxBodyBytes bounds request bodies, including import documents.
const maxBodyBytes = 1 << 20

// Options wires a Server.
type Options struct {
	Engine   *engine.Engine
	Analyzer *analysis.Analyzer
	DB       store.DB
	// Publisher defaults to events.Nop.
	Publisher events.Publisher
	// Defaults fills the ranges a generate request leaves out.
	Defaults engine.Request
	// Token guards mutating combination routes. Empty disables the check.
	Token          string
	RequestTimeout time.Duration
	AnalysisTop    int
	Logger         *slog.Logger
}

// Server handles HTTP requests
type Server struct {
	engine       *engine.Engine
	analyzer     *analysis.Analyzer
	db           store.DB
	publisher    events.Publisher
	defaults     engine.Request
	token        string
	timeout      time.Duration
	top          int
	errorHandler *ErrorHandler
	metrics      *Metrics
	logger       *slog.Logger
	startTime    time.Time
	now          func() time.Time
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	top := opts.AnalysisTop
	if top <= 0 {
		top = analysis.DefaultTop
	}

	metrics := NewMetrics()
	s := &Server{
		engine:       opts.Engine,
		analyzer:     opts.Analyzer,
		db:           opts.DB,
		publisher:    publisher,
		defaults:     opts.Defaults,
		token:        opts.Token,
		timeout:      timeout,
		top:          top,
		errorHandler: NewErrorHandler(logger, metrics),
		metrics:      metrics,
		logger:       logger,
		startTime:    time.Now(),
		now:          time.Now,
	}
	if s.db != nil {
		if n, err := s.db.Count(); err == nil {
			metrics.saved.Set(float64(n))
		}
	}

	logger.Info("server initialised",
		"storage_enabled", s.db != nil,
		"token_required", s.token != "",
		"analysis_enabled", s.analyzer != nil,
	)
	return s
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogging(s.logger, s.metrics))
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(CORSMiddleware)

	// Health and monitoring endpoints
	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Get("/status", s.handleStatus)
		r.Get("/recent", s.handleRecent)
		r.Post("/reset", s.handleReset)
		r.Get("/version", s.handleVersion)

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/compare", s.handleCompare)
		r.Get("/draws", s.handleDraws)

		r.Route("/combinations", func(r chi.Router) {
			r.Get("/", s.handleListCombinations)
			r.Post("/", s.handleSaveCombination)
			r.Delete("/", s.requireToken(s.handleClearCombinations))
			r.Get("/export", s.handleExport)
			r.Post("/import", s.requireToken(s.handleImport))
			r.Get("/info", s.handleStorageInfo)
			r.Get("/{id}", s.handleGetCombination)
			r.Delete("/{id}", s.requireToken(s.handleDeleteCombination))
		})
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) error {
	if r.Body == nil || (r.ContentLength == 0 && allowEmpty) {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
