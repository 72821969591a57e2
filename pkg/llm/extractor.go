package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/models"
)

// Extractor turns free-text message content into structured knowledge.
type Extractor interface {
	Extract(ctx context.Context, content string) (*models.ExtractionResult, error)
}

const extractionSystemMessage = `You are a knowledge extraction system. Given a user message, extract structured knowledge.

Extract:
1. Entities: People, places, organizations, products, concepts mentioned. Include the user themselves if relevant (as "user").
2. Facts: Stable preferences, traits, constraints, biographical details. Each fact should be a single, self-contained statement. Assign a confidence score (0-1) based on how certain the statement is. Optionally assign importance (0-1) for how useful this is for personalization.
3. Relations: Subject-predicate-object triples connecting entities (e.g., "user" - "prefers" - "TypeScript").

Rules:
- Only extract facts that are likely to be stable/persistent (preferences, traits, biographical info).
- Do NOT extract transient information (what the user is doing right now, greetings, questions).
- If the message contains no extractable knowledge, return empty arrays.
- Keep fact text concise but complete.
- Entity names should be specific (e.g., "TypeScript" not "a programming language").
- Use "user" as the entity name for the person speaking.

Respond with a single JSON object, no prose:
{
  "entities": [{"name": "...", "kind": "..."}],
  "facts": [{"text": "...", "confidence": 0.9, "importance": 0.8, "entities": ["..."]}],
  "relations": [{"subject": "...", "predicate": "...", "object": "...", "confidence": 0.9}]
}`

// knowledgeExtractor implements Extractor on top of an LLMClient.
type knowledgeExtractor struct {
	client LLMClient
	logger *zap.Logger
}

// NewExtractor creates a knowledge extractor backed by the given client.
func NewExtractor(client LLMClient, logger *zap.Logger) Extractor {
	return &knowledgeExtractor{
		client: client,
		logger: logger.Named("extractor"),
	}
}

var _ Extractor = (*knowledgeExtractor)(nil)

func (e *knowledgeExtractor) Extract(ctx context.Context, content string) (*models.ExtractionResult, error) {
	prompt := fmt.Sprintf("Message: %q", content)

	response, err := e.client.GenerateResponse(ctx, prompt, extractionSystemMessage, 0)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	result, err := ParseJSONResponse[models.ExtractionResult](response)
	if err != nil {
		e.logger.Warn("Failed to parse extraction response",
			zap.Int("response_len", len(response)),
			zap.Error(err))
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	return &result, nil
}
