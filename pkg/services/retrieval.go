package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/llm"
	"github.com/biku1998/memo-mesh/pkg/models"
	"github.com/biku1998/memo-mesh/pkg/repositories"
)

// Retrieval ranking weights and recency half-life divisor. A brand-new
// memory has a boost of 1.0; a week-old one has e^-1.
const (
	similarityWeight = 0.9
	recencyWeight    = 0.1
	recencyDecayDays = 7.0
)

// Search result count bounds.
const (
	DefaultSearchK = 10
	MaxSearchK     = 50
)

// RetrievalService answers semantic queries with hybrid
// similarity/recency ranking over the vector index's top-k candidates.
type RetrievalService interface {
	// Search embeds the query, fetches the k nearest active memories and
	// re-ranks them by finalScore. Raw memories are excluded unless
	// includeRaw is set.
	Search(ctx context.Context, projectID uuid.UUID, query string, k int, includeRaw bool) ([]models.SearchItem, error)
}

type retrievalService struct {
	projectRepo    repositories.ProjectRepository
	embeddingRepo  repositories.EmbeddingRepository
	llmClient      llm.LLMClient
	embeddingModel string
	logger         *zap.Logger
	now            func() time.Time
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(
	projectRepo repositories.ProjectRepository,
	embeddingRepo repositories.EmbeddingRepository,
	llmClient llm.LLMClient,
	embeddingModel string,
	logger *zap.Logger,
) RetrievalService {
	return &retrievalService{
		projectRepo:    projectRepo,
		embeddingRepo:  embeddingRepo,
		llmClient:      llmClient,
		embeddingModel: embeddingModel,
		logger:         logger.Named("retrieval"),
		now:            time.Now,
	}
}

var _ RetrievalService = (*retrievalService)(nil)

func (s *retrievalService) Search(ctx context.Context, projectID uuid.UUID, query string, k int, includeRaw bool) ([]models.SearchItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", apperrors.ErrValidation)
	}
	if k == 0 {
		k = DefaultSearchK
	}
	if k < 1 || k > MaxSearchK {
		return nil, fmt.Errorf("%w: k must be between 1 and %d", apperrors.ErrValidation, MaxSearchK)
	}

	exists, err := s.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("verify project: %w", err)
	}
	if !exists {
		return nil, apperrors.ErrNotFound
	}

	queryEmbedding, err := s.llmClient.CreateEmbedding(ctx, query, s.embeddingModel)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.embeddingRepo.Nearest(ctx, projectID, queryEmbedding, k, includeRaw)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	// Re-rank within the index's top-k only: candidates outside the
	// similarity cut never appear, regardless of recency.
	now := s.now()
	items := make([]models.SearchItem, len(matches))
	for i, m := range matches {
		boost := recencyBoost(now, m.CreatedAt)
		items[i] = models.SearchItem{
			MemoryID:     m.MemoryID,
			Text:         m.Text,
			Type:         m.Type,
			Similarity:   round4(m.Similarity),
			RecencyBoost: round4(boost),
			FinalScore:   round4(m.Similarity*similarityWeight + boost*recencyWeight),
			CreatedAt:    m.CreatedAt,
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].FinalScore > items[j].FinalScore
	})

	return items, nil
}

// recencyBoost computes an exponential-decay score in (0, 1]: 1.0 for a
// memory created now, ~0.015 for one 30 days old.
func recencyBoost(now, createdAt time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / recencyDecayDays)
}

// round4 rounds to four decimal places, matching the API contract.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
