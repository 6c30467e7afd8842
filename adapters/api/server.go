// Package api exposes the analysis service over HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"goancova/app"
	apperrors "goancova/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server routes HTTP requests to the analysis service
type Server struct {
	router  *chi.Mux
	service *app.AnalysisService
}

// NewServer creates the router with middleware and routes installed
func NewServer(service *app.AnalysisService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/columns", s.handleColumns)

		r.Post("/anova", s.handleAnova)
		r.Post("/anova/batch", s.handleBatch)
		r.Post("/anova/wide", s.handleAnovaWide)
		r.Post("/ancova", s.handleAncova)
		r.Post("/assumptions", s.handleAssumptions)

		r.Get("/results", s.handleHistory)
		r.Get("/results/{id}", s.handleResult)
		r.Get("/results/{id}/report", s.handleReport)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}
