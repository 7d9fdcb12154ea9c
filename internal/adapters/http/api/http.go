// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/gameaccess/internal/app"
	"github.com/okian/gameaccess/internal/domain/catalog"
	"github.com/okian/gameaccess/internal/domain/profile"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Classify runs the pipeline for one validated profile.
	Classify(ctx context.Context, p profile.Profile) (service.Result, error)

	// Catalog lists the games every profile is classified against.
	Catalog() catalog.Catalog
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	classifyHandler *ClassifyHandler
	catalogHandler  *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		classifyHandler: NewClassifyHandler(deps),
		catalogHandler:  NewCatalogHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.Handle("/healthz", RequestID(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.Handle("/stats", RequestID(MetricsMiddleware(s.statsHandler.HandleStats, "stats")))
	mux.Handle("/api/v1/classify", RequestID(MetricsMiddleware(s.classifyHandler.HandleClassify, "classify")))
	mux.Handle("/api/v1/catalog", RequestID(MetricsMiddleware(s.catalogHandler.HandleCatalog, "catalog")))
}

type errorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeErrorResponse(w, status, errorResponse{Code: code}, err)
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse, err error) {
	resp.Message = http.StatusText(status)
	if err != nil {
		resp.Message = err.Error()
	}
	resp.RequestID = w.Header().Get(RequestIDHeader)
	writeJSON(w, status, resp)
}
