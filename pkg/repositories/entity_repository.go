package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/biku1998/memo-mesh/pkg/database"
	"github.com/biku1998/memo-mesh/pkg/models"
)

// EntityRepository defines the interface for entity and mention data access.
type EntityRepository interface {
	// Upsert creates the entity keyed on (project id, normalized name, kind)
	// or reuses the existing row. The stored display name is never modified
	// on conflict. On return entity.ID holds the surviving row's id.
	Upsert(ctx context.Context, entity *models.Entity) error
	// CreateMention links an entity to a fact memory. Idempotent.
	CreateMention(ctx context.Context, entityID, memoryID uuid.UUID) error
}

type entityRepository struct {
	db *database.DB
}

// NewEntityRepository creates a new entity repository.
func NewEntityRepository(db *database.DB) EntityRepository {
	return &entityRepository{db: db}
}

var _ EntityRepository = (*entityRepository)(nil)

func (r *entityRepository) Upsert(ctx context.Context, entity *models.Entity) error {
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now()
	}

	// DO NOTHING keeps the first-seen display name; the follow-up select
	// resolves the surviving row id whether or not the insert won.
	query := `
		WITH ins AS (
			INSERT INTO entities (id, project_id, name, normalized_name, kind, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (project_id, normalized_name, kind) DO NOTHING
			RETURNING id, created_at
		)
		SELECT id, created_at FROM ins
		UNION ALL
		SELECT id, created_at FROM entities
		WHERE project_id = $2 AND normalized_name = $4 AND kind = $5
		LIMIT 1`

	err := r.db.QueryRow(ctx, query,
		entity.ID, entity.ProjectID, entity.Name,
		entity.NormalizedName, entity.Kind, entity.CreatedAt,
	).Scan(&entity.ID, &entity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert entity %q: %w", entity.NormalizedName, err)
	}

	return nil
}

func (r *entityRepository) CreateMention(ctx context.Context, entityID, memoryID uuid.UUID) error {
	query := `
		INSERT INTO entity_mentions (entity_id, memory_id)
		VALUES ($1, $2)
		ON CONFLICT (entity_id, memory_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, entityID, memoryID)
	if err != nil {
		return fmt.Errorf("failed to create entity mention: %w", err)
	}

	return nil
}
