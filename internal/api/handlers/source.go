package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkstand-ai/inkstand/internal/api"
	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/service"
)

type SourceService interface {
	Create(ctx context.Context, input service.CreateSourceInput) (*domain.Source, error)
	GetByID(ctx context.Context, id string) (*domain.Source, error)
	ListSources(ctx context.Context, input service.ListSourcesInput) (*service.ListSourcesOutput, error)
	GetChunks(ctx context.Context, sourceID string) ([]*domain.SourceChunk, error)
	Update(ctx context.Context, input service.UpdateSourceInput) (*domain.Source, error)
	Delete(ctx context.Context, id string) error
}

type SourceHandler struct {
	svc SourceService
}

func NewSourceHandler(svc SourceService) *SourceHandler {
	return &SourceHandler{svc: svc}
}

type CreateSourceRequest struct {
	Title    string `json:"title"`
	FullText string `json:"full_text"`
	FilePath string `json:"file_path"`
}

type UpdateSourceRequest struct {
	Title    string `json:"title"`
	FullText string `json:"full_text"`
	FilePath string `json:"file_path"`
}

type SourceResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	FullText  string `json:"full_text"`
	FilePath  string `json:"file_path,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type SourceChunkResponse struct {
	ID         string `json:"id"`
	SourceID   string `json:"source_id"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
}

func sourceToResponse(s *domain.Source) *SourceResponse {
	return &SourceResponse{
		ID:        s.ID,
		Title:     s.Title,
		FullText:  s.FullText,
		FilePath:  s.FilePath,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: s.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *SourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.FullText == "" {
		api.Error(w, http.StatusBadRequest, "full_text is required")
		return
	}

	source, err := h.svc.Create(r.Context(), service.CreateSourceInput{
		Title:    req.Title,
		FullText: req.FullText,
		FilePath: req.FilePath,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, sourceToResponse(source))
}

func (h *SourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	source, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, sourceToResponse(source))
}

type SourceListResponse struct {
	Items   []*SourceResponse `json:"items"`
	Cursor  string            `json:"cursor,omitempty"`
	HasMore bool              `json:"has_more"`
}

func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.svc.ListSources(r.Context(), service.ListSourcesInput{
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*SourceResponse, len(output.Items))
	for i, s := range output.Items {
		items[i] = sourceToResponse(s)
	}

	api.Success(w, http.StatusOK, SourceListResponse{
		Items:   items,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

func (h *SourceHandler) GetChunks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	chunks, err := h.svc.GetChunks(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*SourceChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		resp = append(resp, &SourceChunkResponse{
			ID:         c.ID,
			SourceID:   c.SourceID,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
		})
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *SourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.FullText == "" {
		api.Error(w, http.StatusBadRequest, "full_text is required")
		return
	}

	source, err := h.svc.Update(r.Context(), service.UpdateSourceInput{
		SourceID: id,
		Title:    req.Title,
		FullText: req.FullText,
		FilePath: req.FilePath,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, sourceToResponse(source))
}

func (h *SourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
