package api

import (
	"net/http"
)

// CatalogHandler lists the games profiles are classified against.
type CatalogHandler struct {
	deps Dependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps Dependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type catalogResponse struct {
	Games []string `json:"games"`
	Count int      `json:"count"`
}

// HandleCatalog handles GET /api/v1/catalog requests.
func (h *CatalogHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	c := h.deps.Catalog()
	writeJSON(w, http.StatusOK, catalogResponse{Games: c.Games(), Count: c.Len()})
}
