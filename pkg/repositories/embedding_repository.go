package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/biku1998/memo-mesh/pkg/database"
	"github.com/biku1998/memo-mesh/pkg/models"
)

// EmbeddingRepository is the vector index surface: one upsertable vector
// per memory, plus cosine nearest-neighbor queries scoped to a project.
type EmbeddingRepository interface {
	// Upsert stores the embedding for a memory, replacing any prior vector.
	Upsert(ctx context.Context, memoryID uuid.UUID, embedding []float32) error
	// Nearest returns up to k active memories ordered by cosine similarity
	// descending. Raw memories are excluded unless includeRaw is set.
	Nearest(ctx context.Context, projectID uuid.UUID, queryEmbedding []float32, k int, includeRaw bool) ([]models.VectorMatch, error)
}

type embeddingRepository struct {
	db *database.DB
}

// NewEmbeddingRepository creates a new embedding repository.
func NewEmbeddingRepository(db *database.DB) EmbeddingRepository {
	return &embeddingRepository{db: db}
}

var _ EmbeddingRepository = (*embeddingRepository)(nil)

func (r *embeddingRepository) Upsert(ctx context.Context, memoryID uuid.UUID, embedding []float32) error {
	query := `
		INSERT INTO memory_embeddings (memory_id, embedding)
		VALUES ($1, $2)
		ON CONFLICT (memory_id) DO UPDATE SET embedding = EXCLUDED.embedding`

	_, err := r.db.Exec(ctx, query, memoryID, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert embedding for memory %s: %w", memoryID, err)
	}

	return nil
}

func (r *embeddingRepository) Nearest(ctx context.Context, projectID uuid.UUID, queryEmbedding []float32, k int, includeRaw bool) ([]models.VectorMatch, error) {
	typeFilter := ""
	if !includeRaw {
		typeFilter = "AND m.type != 'raw'"
	}

	query := fmt.Sprintf(`
		SELECT m.id, m.text, m.type, 1 - (me.embedding <=> $1) AS similarity, m.created_at
		FROM memory_embeddings me
		JOIN memories m ON m.id = me.memory_id
		WHERE m.project_id = $2
		  AND m.status = $3
		  %s
		ORDER BY me.embedding <=> $1
		LIMIT $4`, typeFilter)

	rows, err := r.db.Query(ctx, query,
		pgvector.NewVector(queryEmbedding), projectID, models.MemoryStatusActive, k)
	if err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	defer rows.Close()

	matches := make([]models.VectorMatch, 0, k)
	for rows.Next() {
		var m models.VectorMatch
		if err := rows.Scan(&m.MemoryID, &m.Text, &m.Type, &m.Similarity, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vector matches: %w", err)
	}

	return matches, nil
}
