package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/llm"
	"github.com/biku1998/memo-mesh/pkg/models"
	"github.com/biku1998/memo-mesh/pkg/repositories"
	"github.com/biku1998/memo-mesh/pkg/tasks"
)

// KnowledgeLinker consumes an extraction result: it deduplicates and
// upserts entities, materializes fact memories, links mentions, and
// persists relations with evidence.
type KnowledgeLinker interface {
	// LinkExtraction runs the three linking phases for one extraction pass:
	// entity resolution, fact materialization, relation materialization.
	// Item-level failures are logged and skipped; they never abort the
	// remaining items of the pass.
	LinkExtraction(ctx context.Context, projectID, sourceMessageID uuid.UUID, result *models.ExtractionResult) error

	// Stats returns cumulative skip counters for observability.
	Stats() LinkerStats
}

// LinkerStats counts silently skipped items by reason. Skips are
// intentional (partial knowledge beats rejecting a whole pass) but each
// one is counted so operators can see them.
type LinkerStats struct {
	SkippedMentions          int64 `json:"skipped_mentions"`           // fact referenced an entity name that did not resolve
	SkippedRelationsEntity   int64 `json:"skipped_relations_entity"`   // subject or object did not resolve in this pass
	SkippedRelationsEvidence int64 `json:"skipped_relations_evidence"` // no fact memory exists to serve as evidence
	FailedEntities           int64 `json:"failed_entities"`            // entity upsert storage failures
	FailedFacts              int64 `json:"failed_facts"`               // fact memory storage failures
	FailedRelations          int64 `json:"failed_relations"`           // relation storage failures
}

type knowledgeLinker struct {
	entityRepo     repositories.EntityRepository
	memoryRepo     repositories.MemoryRepository
	embeddingRepo  repositories.EmbeddingRepository
	relationRepo   repositories.RelationRepository
	llmClient      llm.LLMClient
	runner         *tasks.Runner
	embeddingModel string
	logger         *zap.Logger

	skippedMentions          atomic.Int64
	skippedRelationsEntity   atomic.Int64
	skippedRelationsEvidence atomic.Int64
	failedEntities           atomic.Int64
	failedFacts              atomic.Int64
	failedRelations          atomic.Int64
}

// NewKnowledgeLinker creates a new knowledge linker.
func NewKnowledgeLinker(
	entityRepo repositories.EntityRepository,
	memoryRepo repositories.MemoryRepository,
	embeddingRepo repositories.EmbeddingRepository,
	relationRepo repositories.RelationRepository,
	llmClient llm.LLMClient,
	runner *tasks.Runner,
	embeddingModel string,
	logger *zap.Logger,
) KnowledgeLinker {
	return &knowledgeLinker{
		entityRepo:     entityRepo,
		memoryRepo:     memoryRepo,
		embeddingRepo:  embeddingRepo,
		relationRepo:   relationRepo,
		llmClient:      llmClient,
		runner:         runner,
		embeddingModel: embeddingModel,
		logger:         logger.Named("linker"),
	}
}

var _ KnowledgeLinker = (*knowledgeLinker)(nil)

func (l *knowledgeLinker) LinkExtraction(ctx context.Context, projectID, sourceMessageID uuid.UUID, result *models.ExtractionResult) error {
	if result == nil {
		return nil
	}

	// Phase 1: entity resolution. The mapping is pass-local by design:
	// entries from a previous pass would be stale, phase 1 always
	// re-resolves against storage.
	entityIDs := l.resolveEntities(ctx, projectID, result.Entities)

	// Phase 2: fact materialization.
	factCount := l.materializeFacts(ctx, projectID, sourceMessageID, result.Facts, entityIDs)

	// Phase 3: relation materialization. Relations can only reference
	// entities and evidence produced in this same pass.
	l.materializeRelations(ctx, projectID, sourceMessageID, result.Relations, entityIDs, factCount)

	l.logger.Info("Extraction pass linked",
		zap.String("project_id", projectID.String()),
		zap.String("message_id", sourceMessageID.String()),
		zap.Int("entities", len(result.Entities)),
		zap.Int("facts", len(result.Facts)),
		zap.Int("relations", len(result.Relations)))

	return nil
}

// resolveEntities upserts every extracted entity and returns the
// pass-local normalized-name -> entity id mapping.
func (l *knowledgeLinker) resolveEntities(ctx context.Context, projectID uuid.UUID, extracted []models.ExtractedEntity) map[string]uuid.UUID {
	entityIDs := make(map[string]uuid.UUID, len(extracted))

	for _, e := range extracted {
		normalized := models.NormalizeEntityName(e.Name)
		if normalized == "" {
			continue
		}

		entity := &models.Entity{
			ProjectID:      projectID,
			Name:           e.Name,
			NormalizedName: normalized,
			Kind:           strings.ToLower(strings.TrimSpace(e.Kind)),
		}

		if err := l.entityRepo.Upsert(ctx, entity); err != nil {
			l.failedEntities.Add(1)
			l.logger.Warn("Failed to upsert entity, skipping",
				zap.String("project_id", projectID.String()),
				zap.String("entity", normalized),
				zap.Error(err))
			continue
		}

		entityIDs[normalized] = entity.ID
	}

	return entityIDs
}

// materializeFacts creates one fact memory per extracted fact, schedules
// its embedding, and links mentions through the pass-local mapping.
// Returns the number of fact memories actually created.
func (l *knowledgeLinker) materializeFacts(ctx context.Context, projectID, sourceMessageID uuid.UUID, facts []models.ExtractedFact, entityIDs map[string]uuid.UUID) int {
	created := 0

	for _, f := range facts {
		confidence := f.Confidence
		memory := &models.Memory{
			ProjectID:       projectID,
			Text:            f.Text,
			Confidence:      &confidence,
			Importance:      f.Importance,
			SourceMessageID: &sourceMessageID,
		}

		if err := l.memoryRepo.CreateFact(ctx, memory); err != nil {
			l.failedFacts.Add(1)
			l.logger.Warn("Failed to create fact memory, skipping",
				zap.String("message_id", sourceMessageID.String()),
				zap.Error(err))
			continue
		}
		created++

		l.scheduleFactEmbedding(memory.ID, f.Text)

		for _, name := range f.Entities {
			entityID, ok := entityIDs[models.NormalizeEntityName(name)]
			if !ok {
				// Unresolved names are skipped silently; the fact itself stands.
				l.skippedMentions.Add(1)
				l.logger.Debug("Fact references unknown entity, skipping mention",
					zap.String("memory_id", memory.ID.String()),
					zap.String("entity_name", name))
				continue
			}

			if err := l.entityRepo.CreateMention(ctx, entityID, memory.ID); err != nil {
				l.logger.Warn("Failed to create entity mention, skipping",
					zap.String("memory_id", memory.ID.String()),
					zap.String("entity_id", entityID.String()),
					zap.Error(err))
			}
		}
	}

	return created
}

// scheduleFactEmbedding embeds a fact text in the background and upserts
// its vector. Failures are logged, never propagated.
func (l *knowledgeLinker) scheduleFactEmbedding(memoryID uuid.UUID, text string) {
	l.runner.Submit("embed-fact-memory", func(ctx context.Context) error {
		embedding, err := l.llmClient.CreateEmbedding(ctx, text, l.embeddingModel)
		if err != nil {
			return fmt.Errorf("embed fact memory %s: %w", memoryID, err)
		}
		if err := l.embeddingRepo.Upsert(ctx, memoryID, embedding); err != nil {
			return fmt.Errorf("store embedding for memory %s: %w", memoryID, err)
		}
		return nil
	})
}

// materializeRelations persists relations whose subject and object both
// resolved in this pass, using the pass's earliest fact memory as evidence.
func (l *knowledgeLinker) materializeRelations(ctx context.Context, projectID, sourceMessageID uuid.UUID, relations []models.ExtractedRelation, entityIDs map[string]uuid.UUID, factCount int) {
	if len(relations) == 0 {
		return
	}

	var evidence *models.Memory
	if factCount > 0 {
		var err error
		evidence, err = l.memoryRepo.EarliestFactForMessage(ctx, projectID, sourceMessageID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			l.logger.Warn("Failed to look up evidence memory",
				zap.String("message_id", sourceMessageID.String()),
				zap.Error(err))
		}
	}

	for _, rel := range relations {
		subjectID, subjectOK := entityIDs[models.NormalizeEntityName(rel.Subject)]
		objectID, objectOK := entityIDs[models.NormalizeEntityName(rel.Object)]
		if !subjectOK || !objectOK {
			l.skippedRelationsEntity.Add(1)
			l.logger.Debug("Relation references unresolved entity, skipping",
				zap.String("subject", rel.Subject),
				zap.String("object", rel.Object))
			continue
		}

		// A relation cannot exist without fact evidence.
		if evidence == nil {
			l.skippedRelationsEvidence.Add(1)
			l.logger.Debug("No evidence memory for relation, skipping",
				zap.String("message_id", sourceMessageID.String()),
				zap.String("predicate", rel.Predicate))
			continue
		}

		relation := &models.Relation{
			ProjectID:        projectID,
			SubjectEntityID:  subjectID,
			Predicate:        rel.Predicate,
			ObjectEntityID:   objectID,
			Confidence:       rel.Confidence,
			EvidenceMemoryID: evidence.ID,
		}

		if err := l.relationRepo.Create(ctx, relation); err != nil {
			l.failedRelations.Add(1)
			l.logger.Warn("Failed to create relation, skipping",
				zap.String("message_id", sourceMessageID.String()),
				zap.String("predicate", rel.Predicate),
				zap.Error(err))
		}
	}
}

// Stats returns a snapshot of the cumulative skip counters.
func (l *knowledgeLinker) Stats() LinkerStats {
	return LinkerStats{
		SkippedMentions:          l.skippedMentions.Load(),
		SkippedRelationsEntity:   l.skippedRelationsEntity.Load(),
		SkippedRelationsEvidence: l.skippedRelationsEvidence.Load(),
		FailedEntities:           l.failedEntities.Load(),
		FailedFacts:              l.failedFacts.Load(),
		FailedRelations:          l.failedRelations.Load(),
	}
}
