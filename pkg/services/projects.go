package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/models"
	"github.com/biku1998/memo-mesh/pkg/repositories"
)

// apiKeyPrefix marks memo-mesh credentials so they are recognizable in
// logs and client configs.
const apiKeyPrefix = "mm_"

// ProjectService provisions and fetches projects.
type ProjectService interface {
	Create(ctx context.Context, name, provider string) (*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

type projectService struct {
	projectRepo repositories.ProjectRepository
	logger      *zap.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(projectRepo repositories.ProjectRepository, logger *zap.Logger) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		logger:      logger.Named("projects"),
	}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) Create(ctx context.Context, name, provider string) (*models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
	}
	if provider == "" {
		provider = models.ProviderOpenAI
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	project := &models.Project{
		Name:     name,
		APIKey:   apiKey,
		Provider: provider,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("name", project.Name))

	return project, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.projectRepo.Get(ctx, id)
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}
