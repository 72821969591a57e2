package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/models"
	"github.com/biku1998/memo-mesh/pkg/services"
)

// SearchRequest is the body for POST /api/projects/{pid}/memories/search.
// K defaults to 10; IncludeRaw defaults to false.
type SearchRequest struct {
	Query      string `json:"query"`
	K          int    `json:"k"`
	IncludeRaw bool   `json:"includeRaw"`
}

// SearchResponse carries the ranked results.
type SearchResponse struct {
	Items []models.SearchItem `json:"items"`
}

// SearchHandler handles memory search requests.
type SearchHandler struct {
	retrieval services.RetrievalService
	logger    *zap.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(retrieval services.RetrievalService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		retrieval: retrieval,
		logger:    logger,
	}
}

// RegisterRoutes registers the search handler's routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects/{pid}/memories/search", h.Search)
}

// Search handles POST /api/projects/{pid}/memories/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_query", "Query must not be empty"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	items, err := h.retrieval.Search(r.Context(), projectID, req.Query, req.K, req.IncludeRaw)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Project not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrValidation):
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			h.logger.Error("Failed to search memories",
				zap.String("project_id", projectID.String()),
				zap.Error(err))
			if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to search memories"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, SearchResponse{Items: items}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
