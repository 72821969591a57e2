package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/models"
	"github.com/biku1998/memo-mesh/pkg/services"
)

type mockIngestionService struct {
	IngestMessageFunc func(ctx context.Context, projectID uuid.UUID, role, content string) (uuid.UUID, error)
}

func (m *mockIngestionService) IngestMessage(ctx context.Context, projectID uuid.UUID, role, content string) (uuid.UUID, error) {
	if m.IngestMessageFunc != nil {
		return m.IngestMessageFunc(ctx, projectID, role, content)
	}
	return uuid.New(), nil
}

var _ services.IngestionService = (*mockIngestionService)(nil)

type mockRetrievalService struct {
	SearchFunc func(ctx context.Context, projectID uuid.UUID, query string, k int, includeRaw bool) ([]models.SearchItem, error)
}

func (m *mockRetrievalService) Search(ctx context.Context, projectID uuid.UUID, query string, k int, includeRaw bool) ([]models.SearchItem, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, projectID, query, k, includeRaw)
	}
	return nil, nil
}

var _ services.RetrievalService = (*mockRetrievalService)(nil)

type mockProjectService struct {
	CreateFunc func(ctx context.Context, name, provider string) (*models.Project, error)
	GetFunc    func(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

func (m *mockProjectService) Create(ctx context.Context, name, provider string) (*models.Project, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, name, provider)
	}
	return &models.Project{ID: uuid.New(), Name: name, Provider: provider}, nil
}

func (m *mockProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

var _ services.ProjectService = (*mockProjectService)(nil)

type mockLinker struct {
	StatsFunc func() services.LinkerStats
}

func (m *mockLinker) LinkExtraction(ctx context.Context, projectID, sourceMessageID uuid.UUID, result *models.ExtractionResult) error {
	return nil
}

func (m *mockLinker) Stats() services.LinkerStats {
	if m.StatsFunc != nil {
		return m.StatsFunc()
	}
	return services.LinkerStats{}
}

var _ services.KnowledgeLinker = (*mockLinker)(nil)
