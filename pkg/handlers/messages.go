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

// CreateMessageRequest is the body for POST /api/projects/{pid}/messages.
type CreateMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreateMessageResponse is returned on successful ingestion.
type CreateMessageResponse struct {
	MessageID string `json:"messageId"`
}

// MessagesHandler handles message ingestion requests.
type MessagesHandler struct {
	ingestion services.IngestionService
	logger    *zap.Logger
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(ingestion services.IngestionService, logger *zap.Logger) *MessagesHandler {
	return &MessagesHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// RegisterRoutes registers the messages handler's routes on the given mux.
func (h *MessagesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects/{pid}/messages", h.Create)
}

// Create handles POST /api/projects/{pid}/messages.
// Returns 201 with the created message id; enrichment runs in the background.
func (h *MessagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if !models.ValidRole(req.Role) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_role", "Role must be one of: user, assistant, system"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_content", "Content must not be empty"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	messageID, err := h.ingestion.IngestMessage(r.Context(), projectID, req.Role, req.Content)
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
			h.logger.Error("Failed to ingest message",
				zap.String("project_id", projectID.String()),
				zap.Error(err))
			if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to store message"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, CreateMessageResponse{MessageID: messageID.String()}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
