package models

import (
	"time"

	"github.com/google/uuid"
)

// Memory types.
const (
	MemoryTypeRaw  = "raw"  // verbatim copy of a message's content
	MemoryTypeFact = "fact" // distilled statement produced by extraction
)

// Memory statuses. Only active memories are retrievable.
const (
	MemoryStatusActive     = "active"
	MemoryStatusSuperseded = "superseded"
)

// Memory is a unit of retrievable knowledge. Never mutated after
// creation except for status transitions.
type Memory struct {
	ID              uuid.UUID  `json:"id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	Type            string     `json:"type"`
	Text            string     `json:"text"`
	Confidence      *float64   `json:"confidence,omitempty"`
	Importance      *float64   `json:"importance,omitempty"`
	SourceMessageID *uuid.UUID `json:"source_message_id,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}
