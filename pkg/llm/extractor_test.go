package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractParsesStructuredResponse(t *testing.T) {
	client := NewMockLLMClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		assert.Contains(t, prompt, "I live in Berlin")
		assert.Contains(t, systemMessage, "knowledge extraction")
		assert.Equal(t, 0.0, temperature)
		return `{
			"entities": [{"name": "user", "kind": "person"}, {"name": "Berlin", "kind": "place"}],
			"facts": [{"text": "User lives in Berlin", "confidence": 0.95, "entities": ["user", "Berlin"]}],
			"relations": [{"subject": "user", "predicate": "lives_in", "object": "Berlin"}]
		}`, nil
	}

	extractor := NewExtractor(client, zap.NewNop())
	result, err := extractor.Extract(context.Background(), "I live in Berlin")
	require.NoError(t, err)

	assert.Len(t, result.Entities, 2)
	assert.Len(t, result.Facts, 1)
	assert.Len(t, result.Relations, 1)
	assert.Equal(t, 1, client.GenerateResponseCalls)
}

func TestExtractEmptyArraysAreValid(t *testing.T) {
	client := NewMockLLMClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return `{"entities": [], "facts": [], "relations": []}`, nil
	}

	extractor := NewExtractor(client, zap.NewNop())
	result, err := extractor.Extract(context.Background(), "hello there")
	require.NoError(t, err)

	assert.Empty(t, result.Entities)
	assert.Empty(t, result.Facts)
	assert.Empty(t, result.Relations)
}

func TestExtractClientFailure(t *testing.T) {
	client := NewMockLLMClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return "", fmt.Errorf("connection refused")
	}

	extractor := NewExtractor(client, zap.NewNop())
	_, err := extractor.Extract(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "extraction call"))
}

func TestExtractMalformedResponse(t *testing.T) {
	client := NewMockLLMClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return "Sorry, I cannot help with that.", nil
	}

	extractor := NewExtractor(client, zap.NewNop())
	_, err := extractor.Extract(context.Background(), "hello")
	assert.Error(t, err)
}
