package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inkstand-ai/inkstand/internal/api/handlers"
	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/service"
)

type MockSourceService struct {
	mock.Mock
}

func (m *MockSourceService) Create(ctx context.Context, input service.CreateSourceInput) (*domain.Source, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Source), args.Error(1)
}

func (m *MockSourceService) GetByID(ctx context.Context, id string) (*domain.Source, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Source), args.Error(1)
}

func (m *MockSourceService) ListSources(ctx context.Context, input service.ListSourcesInput) (*service.ListSourcesOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListSourcesOutput), args.Error(1)
}

func (m *MockSourceService) GetChunks(ctx context.Context, sourceID string) ([]*domain.SourceChunk, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SourceChunk), args.Error(1)
}

func (m *MockSourceService) Update(ctx context.Context, input service.UpdateSourceInput) (*domain.Source, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Source), args.Error(1)
}

func (m *MockSourceService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) Create(ctx context.Context, input service.CreateNoteInput) (*domain.Note, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteService) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteService) List(ctx context.Context) ([]*domain.Note, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

func (m *MockNoteService) Update(ctx context.Context, input service.UpdateNoteInput) (*domain.Note, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockInsightService struct {
	mock.Mock
}

func (m *MockInsightService) Create(ctx context.Context, input service.CreateInsightInput) (*domain.SourceInsight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceInsight), args.Error(1)
}

func (m *MockInsightService) GetByID(ctx context.Context, id string) (*domain.SourceInsight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceInsight), args.Error(1)
}

func (m *MockInsightService) ListBySource(ctx context.Context, sourceID string) ([]*domain.SourceInsight, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SourceInsight), args.Error(1)
}

func (m *MockInsightService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) ([]*service.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.SearchResult), args.Error(1)
}

type MockEmbeddingJobService struct {
	mock.Mock
}

func (m *MockEmbeddingJobService) Enqueue(ctx context.Context, itemType service.EmbedItemType, itemID string) (*domain.EmbeddingJob, error) {
	args := m.Called(ctx, itemType, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmbeddingJob), args.Error(1)
}

func (m *MockEmbeddingJobService) GetByID(ctx context.Context, id string) (*domain.EmbeddingJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmbeddingJob), args.Error(1)
}

func setupRouter() (http.Handler, *MockSourceService, *MockNoteService, *MockInsightService, *MockSearchService, *MockEmbeddingJobService) {
	sourceSvc := new(MockSourceService)
	noteSvc := new(MockNoteService)
	insightSvc := new(MockInsightService)
	searchSvc := new(MockSearchService)
	embeddingSvc := new(MockEmbeddingJobService)

	cfg := RouterConfig{
		SourceHandler:    handlers.NewSourceHandler(sourceSvc),
		NoteHandler:      handlers.NewNoteHandler(noteSvc),
		InsightHandler:   handlers.NewInsightHandler(insightSvc),
		SearchHandler:    handlers.NewSearchHandler(searchSvc),
		EmbeddingHandler: handlers.NewEmbeddingHandler(embeddingSvc),
	}

	router := NewRouter(cfg)
	return router, sourceSvc, noteSvc, insightSvc, searchSvc, embeddingSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_RequestIDHeaderSet(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_SourceRoutes(t *testing.T) {
	router, sourceSvc, _, _, _, _ := setupRouter()

	now := time.Now().UTC()
	source := &domain.Source{ID: "src-1", Title: "T", FullText: "text", CreatedAt: now, UpdatedAt: now}

	sourceSvc.On("ListSources", mock.Anything, mock.Anything).
		Return(&service.ListSourcesOutput{Items: []*domain.Source{source}}, nil)
	sourceSvc.On("GetByID", mock.Anything, "src-1").Return(source, nil)
	sourceSvc.On("GetChunks", mock.Anything, "src-1").Return([]*domain.SourceChunk{}, nil)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/sources"},
		{http.MethodGet, "/sources/src-1"},
		{http.MethodGet, "/sources/src-1/chunks"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
	sourceSvc.AssertExpectations(t)
}

func TestRouter_InsightRoutes(t *testing.T) {
	router, _, _, insightSvc, _, _ := setupRouter()

	insightSvc.On("ListBySource", mock.Anything, "src-1").Return([]*domain.SourceInsight{}, nil)
	insightSvc.On("Delete", mock.Anything, "ins-1").Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/sources/src-1/insights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/insights/ins-1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	insightSvc.AssertExpectations(t)
}

func TestRouter_SearchRoute(t *testing.T) {
	router, _, _, _, searchSvc, _ := setupRouter()

	searchSvc.On("Search", mock.Anything, service.SearchInput{Query: "q", Limit: 0}).
		Return([]*service.SearchResult{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(`{"query":"q"}`)))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	searchSvc.AssertExpectations(t)
}

func TestRouter_EmbedRoutes(t *testing.T) {
	router, _, _, _, _, embeddingSvc := setupRouter()

	job := &domain.EmbeddingJob{ID: "job-1", NoteID: "note-1", Status: domain.EmbeddingJobStatusPending, CreatedAt: time.Now().UTC()}
	embeddingSvc.On("Enqueue", mock.Anything, service.EmbedItemNote, "note-1").Return(job, nil)
	embeddingSvc.On("GetByID", mock.Anything, "job-1").Return(job, nil)

	req := httptest.NewRequest(http.MethodPost, "/embed", bytes.NewReader([]byte(`{"item_id":"note-1","item_type":"note"}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	embeddingSvc.AssertExpectations(t)
}

func TestRouter_OversizedBodyRejected(t *testing.T) {
	router, _, noteSvc, _, _, _ := setupRouter()

	body := strings.NewReader(`{"title":"big","content":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/notes", body)
	req.ContentLength = 6 * 1024 * 1024
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	noteSvc.AssertNotCalled(t, "Create")
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
