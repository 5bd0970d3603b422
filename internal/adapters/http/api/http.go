// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/mergington/internal/domain/activity"
	"github.com/okian/mergington/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Activities returns the whole catalog.
	Activities(ctx context.Context) (activity.Catalog, error)
	// Signup enrolls email and returns a confirmation message.
	Signup(ctx context.Context, name, email string) (string, error)
	// Unregister withdraws email and returns a confirmation message.
	Unregister(ctx context.Context, name, email string) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	rootHandler       *RootHandler
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	activitiesHandler *ActivitiesHandler
}

// NewServer creates a new API server with all handlers. log may be nil.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	return &Server{
		rootHandler:       NewRootHandler(),
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		activitiesHandler: NewActivitiesHandler(deps, log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.rootHandler.HandleRoot, "root"))
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /activities", MetricsMiddleware(s.activitiesHandler.HandleList, "activities"))
	mux.HandleFunc("POST /activities/{name}/signup", MetricsMiddleware(s.activitiesHandler.HandleSignup, "signup"))
	mux.HandleFunc("DELETE /activities/{name}/unregister", MetricsMiddleware(s.activitiesHandler.HandleUnregister, "unregister"))
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Client-facing details. Callers match on substrings of these.
const (
	detailNotFound          = "Activity not found"
	detailAlreadyRegistered = "Student is already signed up for this activity"
	detailNotRegistered     = "Student is not registered for this activity"
	detailFull              = "Activity is full"
	detailMissingEmail      = "email query parameter is required"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	if detail == "" {
		detail = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

// translate maps registry errors to a status code and client detail.
// The boolean is false for errors the client cannot be blamed for.
func translate(err error) (int, string, bool) {
	switch {
	case errors.Is(err, activity.ErrNotFound):
		return http.StatusNotFound, detailNotFound, true
	case errors.Is(err, activity.ErrAlreadyRegistered):
		return http.StatusBadRequest, detailAlreadyRegistered, true
	case errors.Is(err, activity.ErrNotRegistered):
		return http.StatusBadRequest, detailNotRegistered, true
	case errors.Is(err, activity.ErrActivityFull):
		return http.StatusBadRequest, detailFull, true
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false
	}
}
