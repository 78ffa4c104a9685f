package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hailan-new/contractsplit/internal/classify"
	"github.com/hailan-new/contractsplit/internal/config"
	"github.com/hailan-new/contractsplit/internal/pipeline"
)

// Server is the HTTP API server for contractsplit.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	remote       *classify.Remote
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. remote is nil when
// only the rule-based classifier is configured.
func NewServer(orch *pipeline.Orchestrator, remote *classify.Remote, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		remote:       remote,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/split", s.handleSplit)
		r.Post("/api/split/batch", s.handleBatchSplit)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/chunks", s.handleJobChunks)
		r.Get("/api/stats/classifier", s.handleClassifierStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
