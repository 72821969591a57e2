package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/models"
	"github.com/biku1998/memo-mesh/pkg/services"
)

// CreateProjectRequest is the body for POST /api/projects.
type CreateProjectRequest struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// ProjectResponse is the standard response for project endpoints. The
// API key is only included on creation.
type ProjectResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey,omitempty"`
}

// ProjectsHandler handles project provisioning requests.
type ProjectsHandler struct {
	projects services.ProjectService
	logger   *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projects services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projects: projects,
		logger:   logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects", h.Create)
	mux.HandleFunc("GET /api/projects/{pid}", h.Get)
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	project, err := h.projects.Create(r.Context(), req.Name, req.Provider)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to create project", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to create project"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ProjectResponse{
		ID:       project.ID.String(),
		Name:     project.Name,
		Provider: project.Provider,
		APIKey:   project.APIKey,
	}
	if err := WriteJSON(w, http.StatusCreated, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{pid}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Project not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get project",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get project"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := h.buildProjectResponse(project)
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *ProjectsHandler) buildProjectResponse(project *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:       project.ID.String(),
		Name:     project.Name,
		Provider: project.Provider,
	}
}
