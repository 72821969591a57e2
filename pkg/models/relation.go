package models

import (
	"time"

	"github.com/google/uuid"
)

// Relation is a subject-predicate-object triple over two entities.
// EvidenceMemoryID always references a fact memory produced by the
// same extraction pass that resolved both entities.
type Relation struct {
	ID               uuid.UUID `json:"id"`
	ProjectID        uuid.UUID `json:"project_id"`
	SubjectEntityID  uuid.UUID `json:"subject_entity_id"`
	Predicate        string    `json:"predicate"`
	ObjectEntityID   uuid.UUID `json:"object_entity_id"`
	Confidence       *float64  `json:"confidence,omitempty"`
	EvidenceMemoryID uuid.UUID `json:"evidence_memory_id"`
	CreatedAt        time.Time `json:"created_at"`
}
