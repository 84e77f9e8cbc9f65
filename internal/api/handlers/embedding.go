package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkstand-ai/inkstand/internal/api"
	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/service"
)

type EmbeddingJobService interface {
	Enqueue(ctx context.Context, itemType service.EmbedItemType, itemID string) (*domain.EmbeddingJob, error)
	GetByID(ctx context.Context, id string) (*domain.EmbeddingJob, error)
}

type EmbeddingHandler struct {
	svc EmbeddingJobService
}

func NewEmbeddingHandler(svc EmbeddingJobService) *EmbeddingHandler {
	return &EmbeddingHandler{svc: svc}
}

type EmbedRequest struct {
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
}

type EmbeddingJobResponse struct {
	ID          string `json:"id"`
	SourceID    string `json:"source_id,omitempty"`
	NoteID      string `json:"note_id,omitempty"`
	InsightID   string `json:"insight_id,omitempty"`
	Status      string `json:"status"`
	Retries     int32  `json:"retries"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

func jobToResponse(j *domain.EmbeddingJob) *EmbeddingJobResponse {
	resp := &EmbeddingJobResponse{
		ID:        j.ID,
		SourceID:  j.SourceID,
		NoteID:    j.NoteID,
		InsightID: j.InsightID,
		Status:    string(j.Status),
		Retries:   j.Retries,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.UTC().Format(time.RFC3339),
	}
	if j.ProcessedAt != nil {
		resp.ProcessedAt = j.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Embed queues an embedding job for an existing source, note or insight.
func (h *EmbeddingHandler) Embed(w http.ResponseWriter, r *http.Request) {
	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ItemID == "" {
		api.Error(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if req.ItemType == "" {
		api.Error(w, http.StatusBadRequest, "item_type is required")
		return
	}

	job, err := h.svc.Enqueue(r.Context(), service.EmbedItemType(req.ItemType), req.ItemID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, jobToResponse(job))
}

// GetJob returns the status of an embedding job.
func (h *EmbeddingHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, jobToResponse(job))
}
