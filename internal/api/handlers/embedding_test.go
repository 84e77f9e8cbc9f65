package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/service"
)

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

func TestEmbeddingHandler_Embed_Accepted(t *testing.T) {
	mockSvc := new(MockEmbeddingJobService)
	handler := NewEmbeddingHandler(mockSvc)

	job := &domain.EmbeddingJob{
		ID:        "job-123",
		NoteID:    "note-1",
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	mockSvc.On("Enqueue", mock.Anything, service.EmbedItemNote, "note-1").Return(job, nil)

	body := `{"item_id":"note-1","item_type":"note"}`
	req := httptest.NewRequest(http.MethodPost, "/embed", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Embed(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "job-123", data["id"])
	assert.Equal(t, "pending", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestEmbeddingHandler_Embed_MissingItemID(t *testing.T) {
	mockSvc := new(MockEmbeddingJobService)
	handler := NewEmbeddingHandler(mockSvc)

	body := `{"item_type":"note"}`
	req := httptest.NewRequest(http.MethodPost, "/embed", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Embed(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "item_id is required")
	mockSvc.AssertNotCalled(t, "Enqueue")
}

func TestEmbeddingHandler_Embed_InvalidItemType(t *testing.T) {
	mockSvc := new(MockEmbeddingJobService)
	handler := NewEmbeddingHandler(mockSvc)

	mockSvc.On("Enqueue", mock.Anything, service.EmbedItemType("project"), "x-1").
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "item_type must be source, note or insight"))

	body := `{"item_id":"x-1","item_type":"project"}`
	req := httptest.NewRequest(http.MethodPost, "/embed", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Embed(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmbeddingHandler_GetJob_Success(t *testing.T) {
	mockSvc := new(MockEmbeddingJobService)
	handler := NewEmbeddingHandler(mockSvc)

	processedAt := time.Now().UTC()
	job := &domain.EmbeddingJob{
		ID:          "job-123",
		SourceID:    "src-1",
		Status:      domain.EmbeddingJobStatusCompleted,
		Retries:     1,
		CreatedAt:   processedAt.Add(-time.Minute),
		ProcessedAt: &processedAt,
	}
	mockSvc.On("GetByID", mock.Anything, "job-123").Return(job, nil)

	req := requestWithID(http.MethodGet, "/jobs/job-123", "job-123", nil)
	w := httptest.NewRecorder()

	handler.GetJob(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, float64(1), data["retries"])
	assert.NotEmpty(t, data["processed_at"])
	mockSvc.AssertExpectations(t)
}

func TestEmbeddingHandler_GetJob_TimestampsRenderedAsUTC(t *testing.T) {
	mockSvc := new(MockEmbeddingJobService)
	handler := NewEmbeddingHandler(mockSvc)

	zone := time.FixedZone("UTC+5", 5*60*60)
	processedAt := time.Date(2026, 3, 1, 17, 30, 0, 0, zone)
	job := &domain.EmbeddingJob{
		ID:          "job-123",
		SourceID:    "src-1",
		Status:      domain.EmbeddingJobStatusCompleted,
		CreatedAt:   time.Date(2026, 3, 1, 17, 0, 0, 0, zone),
		ProcessedAt: &processedAt,
	}
	mockSvc.On("GetByID", mock.Anything, "job-123").Return(job, nil)

	req := requestWithID(http.MethodGet, "/jobs/job-123", "job-123", nil)
	w := httptest.NewRecorder()

	handler.GetJob(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "2026-03-01T12:00:00Z", data["created_at"])
	assert.Equal(t, "2026-03-01T12:30:00Z", data["processed_at"])
}

func TestEmbeddingHandler_GetJob_NotFound(t *testing.T) {
	mockSvc := new(MockEmbeddingJobService)
	handler := NewEmbeddingHandler(mockSvc)

	mockSvc.On("GetByID", mock.Anything, "job-999").Return(nil, domain.ErrEmbeddingJobNotFound)

	req := requestWithID(http.MethodGet, "/jobs/job-999", "job-999", nil)
	w := httptest.NewRecorder()

	handler.GetJob(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}
