package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/models"
)

func newProjectsServer(svc *mockProjectService) *http.ServeMux {
	mux := http.NewServeMux()
	NewProjectsHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestCreateProjectReturnsAPIKey(t *testing.T) {
	projectID := uuid.New()
	svc := &mockProjectService{
		CreateFunc: func(ctx context.Context, name, provider string) (*models.Project, error) {
			return &models.Project{
				ID:       projectID,
				Name:     name,
				Provider: "openai",
				APIKey:   "mm_deadbeef",
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/projects",
		strings.NewReader(`{"name": "demo"}`))
	rec := httptest.NewRecorder()
	newProjectsServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body ProjectResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, projectID.String(), body.ID)
	assert.Equal(t, "mm_deadbeef", body.APIKey)
}

func TestCreateProjectValidationFailure(t *testing.T) {
	svc := &mockProjectService{
		CreateFunc: func(ctx context.Context, name, provider string) (*models.Project, error) {
			return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/projects",
		strings.NewReader(`{"name": ""}`))
	rec := httptest.NewRecorder()
	newProjectsServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProjectOmitsAPIKey(t *testing.T) {
	projectID := uuid.New()
	svc := &mockProjectService{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*models.Project, error) {
			return &models.Project{
				ID:       projectID,
				Name:     "demo",
				Provider: "openai",
				APIKey:   "mm_deadbeef",
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+projectID.String(), nil)
	rec := httptest.NewRecorder()
	newProjectsServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mm_deadbeef")
}

func TestGetProjectNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	newProjectsServer(&mockProjectService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
