package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is a deduplicated named concept scoped to a project.
// The triple (project id, normalized name, kind) is unique and serves
// as the deduplication key.
type Entity struct {
	ID             uuid.UUID `json:"id"`
	ProjectID      uuid.UUID `json:"project_id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	Kind           string    `json:"kind"`
	CreatedAt      time.Time `json:"created_at"`
}

// EntityMention links a fact memory to an entity it references.
type EntityMention struct {
	EntityID uuid.UUID `json:"entity_id"`
	MemoryID uuid.UUID `json:"memory_id"`
}

// NormalizeEntityName folds an entity name to its deduplication form:
// lower-cased, trimmed, with internal whitespace runs collapsed to one space.
func NormalizeEntityName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
