package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/gameaccess/internal/app"
	"github.com/okian/gameaccess/internal/domain/features"
	"github.com/okian/gameaccess/internal/domain/outcome"
	"github.com/okian/gameaccess/internal/domain/profile"
)

// maxClassifyBody bounds the request body of POST /api/v1/classify.
const maxClassifyBody = 64 << 10

// ClassifyHandler handles classification requests.
type ClassifyHandler struct {
	deps Dependencies
}

// NewClassifyHandler creates a new classify handler.
func NewClassifyHandler(deps Dependencies) *ClassifyHandler {
	return &ClassifyHandler{deps: deps}
}

// classifyResponse mirrors the OpenAPI schema for POST /api/v1/classify.
type classifyResponse struct {
	Name   string          `json:"name"`
	Groups []outcome.Group `json:"groups"`
}

// HandleClassify handles POST /api/v1/classify requests.
func (h *ClassifyHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req profile.Profile
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClassifyBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.Validate(); err != nil {
		resp := errorResponse{Code: "bad_request"}
		var ve *profile.ValidationError
		if errors.As(err, &ve) {
			resp.Fields = make(map[string]string, len(ve.Fields))
			for _, f := range ve.Fields {
				resp.Fields[f.Field] = f.Error()
			}
		}
		writeErrorResponse(w, http.StatusBadRequest, resp, WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Classify(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, features.ErrInvalidCategoricalValue):
		writeError(w, http.StatusUnprocessableEntity, "invalid_categorical", WrapKind(op, ErrInvalidCategorical, err))
		return
	case errors.Is(err, outcome.ErrUnknownLabel):
		writeError(w, http.StatusInternalServerError, "label_mismatch", WrapKind(op, ErrLabelMismatch, err))
		return
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	default:
		writeError(w, http.StatusInternalServerError, "inference_error", WrapKind(op, ErrInference, err))
		return
	}

	writeJSON(w, http.StatusOK, classifyResponse{Name: res.Name, Groups: res.Outcome.Groups})
}
