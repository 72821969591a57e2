package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/database"
	"github.com/biku1998/memo-mesh/pkg/models"
)

// MemoryRepository defines the interface for memory data access.
type MemoryRepository interface {
	CreateFact(ctx context.Context, memory *models.Memory) error
	// EarliestFactForMessage returns the earliest-created fact memory for
	// the given project and source message, or apperrors.ErrNotFound.
	EarliestFactForMessage(ctx context.Context, projectID, messageID uuid.UUID) (*models.Memory, error)
}

type memoryRepository struct {
	db *database.DB
}

// NewMemoryRepository creates a new memory repository.
func NewMemoryRepository(db *database.DB) MemoryRepository {
	return &memoryRepository{db: db}
}

var _ MemoryRepository = (*memoryRepository)(nil)

func (r *memoryRepository) CreateFact(ctx context.Context, memory *models.Memory) error {
	if memory.ID == uuid.Nil {
		memory.ID = uuid.New()
	}
	memory.Type = models.MemoryTypeFact
	if memory.Status == "" {
		memory.Status = models.MemoryStatusActive
	}
	memory.CreatedAt = time.Now()

	query := `
		INSERT INTO memories (id, project_id, type, text, confidence, importance, source_message_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		memory.ID, memory.ProjectID, memory.Type, memory.Text,
		memory.Confidence, memory.Importance, memory.SourceMessageID,
		memory.Status, memory.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create fact memory: %w", err)
	}

	return nil
}

func (r *memoryRepository) EarliestFactForMessage(ctx context.Context, projectID, messageID uuid.UUID) (*models.Memory, error) {
	query := `
		SELECT id, project_id, type, text, confidence, importance, source_message_id, status, created_at
		FROM memories
		WHERE project_id = $1 AND source_message_id = $2 AND type = $3
		ORDER BY created_at, id
		LIMIT 1`

	var memory models.Memory
	err := r.db.QueryRow(ctx, query, projectID, messageID, models.MemoryTypeFact).Scan(
		&memory.ID,
		&memory.ProjectID,
		&memory.Type,
		&memory.Text,
		&memory.Confidence,
		&memory.Importance,
		&memory.SourceMessageID,
		&memory.Status,
		&memory.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get earliest fact memory: %w", err)
	}

	return &memory, nil
}
