package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal/plan"
	"github.com/turbolytics/curator/internal/replication"
)

// Server exposes a read-only HTTP view over a resolved replication
// document. The document is resolved once at startup; there is no reload.
type Server struct {
	logger     *zap.Logger
	resolution *replication.Resolution
}

func New(resolution *replication.Resolution, logger *zap.Logger) *Server {
	return &Server{
		logger:     logger,
		resolution: resolution,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", s.health)

	r.Route("/api/v1/replication", func(r chi.Router) {
		r.Get("/", s.getResolution)
		r.Get("/streams", s.listStreams)
		r.Get("/streams/{name}", s.getStream)
		r.Get("/plan", s.getPlan)
	})

	return r
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	s.logger.Info("starting replication server", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down replication server")
		srv.Shutdown(context.Background())
	}()

	return srv.ListenAndServe()
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) getResolution(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.resolution)
}

func (s *Server) listStreams(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"streams": s.resolution.Streams,
		"count":   len(s.resolution.Streams),
	})
}

func (s *Server) getStream(w http.ResponseWriter, r *http.Request) {
	// Stream names carry dots and quotes, so they arrive escaped.
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, "bad stream name", http.StatusBadRequest)
		return
	}

	stream, ok := s.resolution.Stream(name)
	if !ok {
		http.Error(w, "stream not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stream)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	p, err := plan.New(s.resolution)
	if err != nil {
		s.logger.Error("planning failed", zap.Error(err))
		http.Error(w, "planning failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}
