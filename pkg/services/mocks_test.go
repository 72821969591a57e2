package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/biku1998/memo-mesh/pkg/apperrors"
	"github.com/biku1998/memo-mesh/pkg/models"
	"github.com/biku1998/memo-mesh/pkg/repositories"
)

// Hand-rolled mocks for the repository interfaces. Call records are
// mutex-guarded because enrichment tasks touch them from background
// goroutines.

type mockProjectRepo struct {
	ExistsFunc func(ctx context.Context, id uuid.UUID) (bool, error)
	GetFunc    func(ctx context.Context, id uuid.UUID) (*models.Project, error)
	CreateFunc func(ctx context.Context, project *models.Project) error
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, project)
	}
	return nil
}

func (m *mockProjectRepo) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockProjectRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, id)
	}
	return true, nil
}

var _ repositories.ProjectRepository = (*mockProjectRepo)(nil)

type mockMessageRepo struct {
	mu       sync.Mutex
	Created  []*models.Message
	Memories []*models.Memory

	CreateWithRawMemoryFunc func(ctx context.Context, message *models.Message) (*models.Memory, error)
}

func (m *mockMessageRepo) CreateWithRawMemory(ctx context.Context, message *models.Message) (*models.Memory, error) {
	if m.CreateWithRawMemoryFunc != nil {
		return m.CreateWithRawMemoryFunc(ctx, message)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	message.ID = uuid.New()
	memory := &models.Memory{
		ID:              uuid.New(),
		ProjectID:       message.ProjectID,
		Type:            models.MemoryTypeRaw,
		Text:            message.Content,
		SourceMessageID: &message.ID,
		Status:          models.MemoryStatusActive,
	}
	m.Created = append(m.Created, message)
	m.Memories = append(m.Memories, memory)
	return memory, nil
}

var _ repositories.MessageRepository = (*mockMessageRepo)(nil)

type mockMemoryRepo struct {
	mu    sync.Mutex
	Facts []*models.Memory

	CreateFactFunc             func(ctx context.Context, memory *models.Memory) error
	EarliestFactForMessageFunc func(ctx context.Context, projectID, messageID uuid.UUID) (*models.Memory, error)
}

func (m *mockMemoryRepo) CreateFact(ctx context.Context, memory *models.Memory) error {
	if m.CreateFactFunc != nil {
		return m.CreateFactFunc(ctx, memory)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	memory.ID = uuid.New()
	memory.Type = models.MemoryTypeFact
	memory.Status = models.MemoryStatusActive
	m.Facts = append(m.Facts, memory)
	return nil
}

func (m *mockMemoryRepo) EarliestFactForMessage(ctx context.Context, projectID, messageID uuid.UUID) (*models.Memory, error) {
	if m.EarliestFactForMessageFunc != nil {
		return m.EarliestFactForMessageFunc(ctx, projectID, messageID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, fact := range m.Facts {
		if fact.ProjectID == projectID && fact.SourceMessageID != nil && *fact.SourceMessageID == messageID {
			return fact, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

var _ repositories.MemoryRepository = (*mockMemoryRepo)(nil)

type mockEmbeddingRepo struct {
	mu       sync.Mutex
	Upserted map[uuid.UUID][]float32

	UpsertFunc  func(ctx context.Context, memoryID uuid.UUID, embedding []float32) error
	NearestFunc func(ctx context.Context, projectID uuid.UUID, queryEmbedding []float32, k int, includeRaw bool) ([]models.VectorMatch, error)
}

func (m *mockEmbeddingRepo) Upsert(ctx context.Context, memoryID uuid.UUID, embedding []float32) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, memoryID, embedding)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Upserted == nil {
		m.Upserted = make(map[uuid.UUID][]float32)
	}
	m.Upserted[memoryID] = embedding
	return nil
}

func (m *mockEmbeddingRepo) Nearest(ctx context.Context, projectID uuid.UUID, queryEmbedding []float32, k int, includeRaw bool) ([]models.VectorMatch, error) {
	if m.NearestFunc != nil {
		return m.NearestFunc(ctx, projectID, queryEmbedding, k, includeRaw)
	}
	return nil, nil
}

func (m *mockEmbeddingRepo) UpsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Upserted)
}

var _ repositories.EmbeddingRepository = (*mockEmbeddingRepo)(nil)

type mockEntityRepo struct {
	mu       sync.Mutex
	Entities map[string]*models.Entity // keyed on normalized_name|kind
	Mentions []models.EntityMention

	UpsertFunc        func(ctx context.Context, entity *models.Entity) error
	CreateMentionFunc func(ctx context.Context, entityID, memoryID uuid.UUID) error
}

func (m *mockEntityRepo) Upsert(ctx context.Context, entity *models.Entity) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, entity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Entities == nil {
		m.Entities = make(map[string]*models.Entity)
	}
	key := entity.NormalizedName + "|" + entity.Kind
	if existing, ok := m.Entities[key]; ok {
		entity.ID = existing.ID
		return nil
	}
	entity.ID = uuid.New()
	copied := *entity
	m.Entities[key] = &copied
	return nil
}

func (m *mockEntityRepo) CreateMention(ctx context.Context, entityID, memoryID uuid.UUID) error {
	if m.CreateMentionFunc != nil {
		return m.CreateMentionFunc(ctx, entityID, memoryID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Mentions = append(m.Mentions, models.EntityMention{EntityID: entityID, MemoryID: memoryID})
	return nil
}

var _ repositories.EntityRepository = (*mockEntityRepo)(nil)

type mockRelationRepo struct {
	mu        sync.Mutex
	Relations []*models.Relation

	CreateFunc func(ctx context.Context, relation *models.Relation) error
}

func (m *mockRelationRepo) Create(ctx context.Context, relation *models.Relation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, relation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	relation.ID = uuid.New()
	m.Relations = append(m.Relations, relation)
	return nil
}

var _ repositories.RelationRepository = (*mockRelationRepo)(nil)

type mockLinker struct {
	mu    sync.Mutex
	Calls int

	LinkExtractionFunc func(ctx context.Context, projectID, sourceMessageID uuid.UUID, result *models.ExtractionResult) error
}

func (m *mockLinker) LinkExtraction(ctx context.Context, projectID, sourceMessageID uuid.UUID, result *models.ExtractionResult) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.LinkExtractionFunc != nil {
		return m.LinkExtractionFunc(ctx, projectID, sourceMessageID, result)
	}
	return nil
}

func (m *mockLinker) Stats() LinkerStats {
	return LinkerStats{}
}

var _ KnowledgeLinker = (*mockLinker)(nil)
