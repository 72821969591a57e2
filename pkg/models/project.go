// Package models contains domain types for memo-mesh.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is the tenant boundary. Every message, memory, entity and
// relation is scoped to exactly one project.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"api_key"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// ProviderOpenAI is the default LLM provider for new projects.
const ProviderOpenAI = "openai"
