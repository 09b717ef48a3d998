// Package server exposes the pipeline over a thin HTTP surface.
package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"document-qa/internal/models"
)

// Asker is the slice of the pipeline the server needs.
type Asker interface {
	Ask(ctx context.Context, question string) models.Response
	Ready() bool
}

// Counter reports the number of indexed entries for /stats.
type Counter interface {
	Count(ctx context.Context) int
}

type Server struct {
	pipeline Asker
	store    Counter
	requests atomic.Int64
}

func New(pipeline Asker, store Counter) *Server {
	return &Server{pipeline: pipeline, store: store}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("POST /chat", s.handleChat)
	return mux
}

// ListenAndServe blocks serving requests on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Info().Str("addr", addr).Msg("Serving HTTP")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer         string  `json:"answer"`
	Confidence     float64 `json:"confidence"`
	LatencySeconds float64 `json:"latency_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  s.pipeline.Ready(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"indexed_documents": s.store.Count(r.Context()),
		"total_requests":    s.requests.Load(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Question cannot be empty."})
		return
	}

	start := time.Now()
	resp := s.pipeline.Ask(r.Context(), req.Question)
	latency := time.Since(start).Seconds()
	s.requests.Add(1)

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:         resp.Answer,
		Confidence:     resp.Confidence,
		LatencySeconds: math.Round(latency*1000) / 1000,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
