package models

import (
	"time"

	"github.com/google/uuid"
)

// VectorMatch is one nearest-neighbor candidate returned by the vector
// index, ordered by cosine similarity descending.
type VectorMatch struct {
	MemoryID   uuid.UUID
	Text       string
	Type       string
	Similarity float64
	CreatedAt  time.Time
}

// SearchItem is one ranked retrieval result. Scores are rounded to
// four decimal places.
type SearchItem struct {
	MemoryID     uuid.UUID `json:"memoryId"`
	Text         string    `json:"text"`
	Type         string    `json:"type"`
	Similarity   float64   `json:"similarity"`
	RecencyBoost float64   `json:"recencyBoost"`
	FinalScore   float64   `json:"finalScore"`
	CreatedAt    time.Time `json:"createdAt"`
}
