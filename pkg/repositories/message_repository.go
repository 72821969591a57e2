package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/biku1998/memo-mesh/pkg/database"
	"github.com/biku1998/memo-mesh/pkg/models"
)

// MessageRepository defines the interface for message data access.
type MessageRepository interface {
	// CreateWithRawMemory atomically inserts a message and its raw memory
	// in one transaction. Both rows commit together or neither does.
	CreateWithRawMemory(ctx context.Context, message *models.Message) (*models.Memory, error)
}

type messageRepository struct {
	db *database.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *database.DB) MessageRepository {
	return &messageRepository{db: db}
}

var _ MessageRepository = (*messageRepository)(nil)

func (r *messageRepository) CreateWithRawMemory(ctx context.Context, message *models.Message) (*models.Memory, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.CreatedAt = time.Now()

	memory := &models.Memory{
		ID:              uuid.New(),
		ProjectID:       message.ProjectID,
		Type:            models.MemoryTypeRaw,
		Text:            message.Content,
		SourceMessageID: &message.ID,
		Status:          models.MemoryStatusActive,
		CreatedAt:       message.CreatedAt,
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, project_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		message.ID, message.ProjectID, message.Role, message.Content, message.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO memories (id, project_id, type, text, source_message_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		memory.ID, memory.ProjectID, memory.Type, memory.Text,
		memory.SourceMessageID, memory.Status, memory.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert raw memory: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit message with raw memory: %w", err)
	}

	return memory, nil
}
