// Package services contains the core ingestion, linking and retrieval logic.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/llm"
	"github.com/biku1998/memo-mesh/pkg/models"
	"github.com/biku1998/memo-mesh/pkg/repositories"
	"github.com/biku1998/memo-mesh/pkg/tasks"
)

// IngestionService accepts a new message, persists it together with its
// raw memory, and schedules background enrichment.
type IngestionService interface {
	// IngestMessage verifies the project, atomically creates the message
	// and its raw memory, and schedules embedding and extraction tasks.
	// Returns the created message id. The success of this call depends
	// only on the atomic write; enrichment runs detached.
	IngestMessage(ctx context.Context, projectID uuid.UUID, role, content string) (uuid.UUID, error)
}

type ingestionService struct {
	projectRepo    repositories.ProjectRepository
	messageRepo    repositories.MessageRepository
	embeddingRepo  repositories.EmbeddingRepository
	llmClient      llm.LLMClient
	extractor      llm.Extractor
	linker         KnowledgeLinker
	runner         *tasks.Runner
	embeddingModel string
	logger         *zap.Logger
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	projectRepo repositories.ProjectRepository,
	messageRepo repositories.MessageRepository,
	embeddingRepo repositories.EmbeddingRepository,
	llmClient llm.LLMClient,
	extractor llm.Extractor,
	linker KnowledgeLinker,
	runner *tasks.Runner,
	embeddingModel string,
	logger *zap.Logger,
) IngestionService {
	return &ingestionService{
		projectRepo:    projectRepo,
		messageRepo:    messageRepo,
		embeddingRepo:  embeddingRepo,
		llmClient:      llmClient,
		extractor:      extractor,
		linker:         linker,
		runner:         runner,
		embeddingModel: embeddingModel,
		logger:         logger.Named("ingestion"),
	}
}

var _ IngestionService = (*ingestionService)(nil)

func (s *ingestionService) IngestMessage(ctx context.Context, projectID uuid.UUID, role, content string) (uuid.UUID, error) {
	if !models.ValidRole(role) {
		return uuid.Nil, fmt.Errorf("%w: invalid role %q", apperrors.ErrValidation, role)
	}
	if strings.TrimSpace(content) == "" {
		return uuid.Nil, fmt.Errorf("%w: content must not be empty", apperrors.ErrValidation)
	}

	exists, err := s.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("verify project: %w", err)
	}
	if !exists {
		return uuid.Nil, apperrors.ErrNotFound
	}

	message := &models.Message{
		ProjectID: projectID,
		Role:      role,
		Content:   content,
	}

	rawMemory, err := s.messageRepo.CreateWithRawMemory(ctx, message)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store message: %w", err)
	}

	// Enrichment is fire-and-forget: the response contract is already
	// satisfied by the atomic write above.
	s.scheduleEnrichment(projectID, message, rawMemory)

	return message.ID, nil
}

// scheduleEnrichment submits the two independent enrichment tasks for a
// freshly ingested message. Task failures are logged with identifying
// context and never surface to the caller.
func (s *ingestionService) scheduleEnrichment(projectID uuid.UUID, message *models.Message, rawMemory *models.Memory) {
	memoryID := rawMemory.ID
	messageID := message.ID
	content := message.Content

	s.runner.Submit("embed-raw-memory", func(ctx context.Context) error {
		embedding, err := s.llmClient.CreateEmbedding(ctx, content, s.embeddingModel)
		if err != nil {
			return fmt.Errorf("embed raw memory %s: %w", memoryID, err)
		}
		if err := s.embeddingRepo.Upsert(ctx, memoryID, embedding); err != nil {
			return fmt.Errorf("store embedding for memory %s: %w", memoryID, err)
		}
		return nil
	})

	s.runner.Submit("extract-knowledge", func(ctx context.Context) error {
		result, err := s.extractor.Extract(ctx, content)
		if err != nil {
			return fmt.Errorf("extract message %s: %w", messageID, err)
		}
		if err := s.linker.LinkExtraction(ctx, projectID, messageID, result); err != nil {
			return fmt.Errorf("link extraction for message %s: %w", messageID, err)
		}
		return nil
	})
}
