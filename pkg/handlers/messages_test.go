package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
)

func newMessagesServer(svc *mockIngestionService) *http.ServeMux {
	mux := http.NewServeMux()
	NewMessagesHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestCreateMessageSuccess(t *testing.T) {
	projectID := uuid.New()
	messageID := uuid.New()

	svc := &mockIngestionService{
		IngestMessageFunc: func(ctx context.Context, pid uuid.UUID, role, content string) (uuid.UUID, error) {
			assert.Equal(t, projectID, pid)
			assert.Equal(t, "user", role)
			assert.Equal(t, "I live in Berlin", content)
			return messageID, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/projects/%s/messages", projectID),
		strings.NewReader(`{"role": "user", "content": "I live in Berlin"}`))
	rec := httptest.NewRecorder()
	newMessagesServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body CreateMessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, messageID.String(), body.MessageID)
}

func TestCreateMessageBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{"role": `, "invalid_body"},
		{"unknown role", `{"role": "robot", "content": "hi"}`, "invalid_role"},
		{"missing role", `{"content": "hi"}`, "invalid_role"},
		{"empty content", `{"role": "user", "content": "  "}`, "invalid_content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/api/projects/%s/messages", uuid.New()),
				strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newMessagesServer(&mockIngestionService{}).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestCreateMessageInvalidProjectID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/projects/not-a-uuid/messages",
		strings.NewReader(`{"role": "user", "content": "hi"}`))
	rec := httptest.NewRecorder()
	newMessagesServer(&mockIngestionService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMessageProjectNotFound(t *testing.T) {
	svc := &mockIngestionService{
		IngestMessageFunc: func(ctx context.Context, pid uuid.UUID, role, content string) (uuid.UUID, error) {
			return uuid.Nil, apperrors.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/projects/%s/messages", uuid.New()),
		strings.NewReader(`{"role": "user", "content": "hi"}`))
	rec := httptest.NewRecorder()
	newMessagesServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateMessageStorageFailure(t *testing.T) {
	svc := &mockIngestionService{
		IngestMessageFunc: func(ctx context.Context, pid uuid.UUID, role, content string) (uuid.UUID, error) {
			return uuid.Nil, fmt.Errorf("tx aborted")
		},
	}

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/projects/%s/messages", uuid.New()),
		strings.NewReader(`{"role": "user", "content": "hi"}`))
	rec := httptest.NewRecorder()
	newMessagesServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
