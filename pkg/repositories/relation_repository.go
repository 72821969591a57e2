package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/biku1998/memo-mesh/pkg/database"
	"github.com/biku1998/memo-mesh/pkg/models"
)

// RelationRepository defines the interface for relation data access.
type RelationRepository interface {
	Create(ctx context.Context, relation *models.Relation) error
}

type relationRepository struct {
	db *database.DB
}

// NewRelationRepository creates a new relation repository.
func NewRelationRepository(db *database.DB) RelationRepository {
	return &relationRepository{db: db}
}

var _ RelationRepository = (*relationRepository)(nil)

func (r *relationRepository) Create(ctx context.Context, relation *models.Relation) error {
	if relation.ID == uuid.Nil {
		relation.ID = uuid.New()
	}
	relation.CreatedAt = time.Now()

	query := `
		INSERT INTO relations (id, project_id, subject_entity_id, predicate, object_entity_id, confidence, evidence_memory_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		relation.ID, relation.ProjectID, relation.SubjectEntityID,
		relation.Predicate, relation.ObjectEntityID, relation.Confidence,
		relation.EvidenceMemoryID, relation.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create relation: %w", err)
	}

	return nil
}
