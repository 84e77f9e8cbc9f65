package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkstand-ai/inkstand/internal/api"
	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/service"
)

type InsightService interface {
	Create(ctx context.Context, input service.CreateInsightInput) (*domain.SourceInsight, error)
	GetByID(ctx context.Context, id string) (*domain.SourceInsight, error)
	ListBySource(ctx context.Context, sourceID string) ([]*domain.SourceInsight, error)
	Delete(ctx context.Context, id string) error
}

type InsightHandler struct {
	svc InsightService
}

func NewInsightHandler(svc InsightService) *InsightHandler {
	return &InsightHandler{svc: svc}
}

type CreateInsightRequest struct {
	InsightType string `json:"insight_type"`
	Content     string `json:"content"`
}

type InsightResponse struct {
	ID          string `json:"id"`
	SourceID    string `json:"source_id"`
	InsightType string `json:"insight_type"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

func insightToResponse(i *domain.SourceInsight) *InsightResponse {
	return &InsightResponse{
		ID:          i.ID,
		SourceID:    i.SourceID,
		InsightType: i.InsightType,
		Content:     i.Content,
		CreatedAt:   i.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *InsightHandler) Create(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		api.Error(w, http.StatusBadRequest, "source id is required")
		return
	}

	var req CreateInsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	insight, err := h.svc.Create(r.Context(), service.CreateInsightInput{
		SourceID:    sourceID,
		InsightType: req.InsightType,
		Content:     req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, insightToResponse(insight))
}

func (h *InsightHandler) ListBySource(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	if sourceID == "" {
		api.Error(w, http.StatusBadRequest, "source id is required")
		return
	}

	insights, err := h.svc.ListBySource(r.Context(), sourceID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*InsightResponse, 0, len(insights))
	for _, i := range insights {
		resp = append(resp, insightToResponse(i))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *InsightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "insightID")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "insight id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
