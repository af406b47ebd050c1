// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/squad/internal/adapters/repository"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	SignupDependencies
	AllocationDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	signupsHandler     *SignupsHandler
	allocationsHandler *AllocationsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		signupsHandler:     NewSignupsHandler(deps),
		allocationsHandler: NewAllocationsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /signups", MetricsMiddleware(s.signupsHandler.HandlePost, "signups"))
	mux.HandleFunc("GET /signups", MetricsMiddleware(s.signupsHandler.HandleList, "signups"))
	mux.HandleFunc("DELETE /signups", MetricsMiddleware(s.signupsHandler.HandleClear, "signups"))

	mux.HandleFunc("POST /allocations", MetricsMiddleware(s.allocationsHandler.HandlePost, "allocations"))
	mux.HandleFunc("GET /allocations/latest", MetricsMiddleware(s.allocationsHandler.HandleLatest, "allocation"))
	mux.HandleFunc("GET /allocations/{id}", MetricsMiddleware(s.allocationsHandler.HandleGet, "allocation"))
	mux.HandleFunc("GET /allocations/{id}/export", MetricsMiddleware(s.allocationsHandler.HandleExport, "export"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and store errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidSignup):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrNoResult):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrRosterFull):
		writeError(w, http.StatusConflict, "roster_full", err)
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, allocation.ErrInfeasible):
		writeError(w, http.StatusUnprocessableEntity, "infeasible", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(ErrBadRequest, err)
	}
	return nil
}

// participantsOrNil keeps the difference between an omitted roster and an
// empty one.
func participantsOrNil(p *[]model.Signup) []model.Signup {
	if p == nil {
		return nil
	}
	if *p == nil {
		return []model.Signup{}
	}
	return *p
}
