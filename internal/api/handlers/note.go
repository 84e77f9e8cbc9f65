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

type NoteService interface {
	Create(ctx context.Context, input service.CreateNoteInput) (*domain.Note, error)
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	List(ctx context.Context) ([]*domain.Note, error)
	Update(ctx context.Context, input service.UpdateNoteInput) (*domain.Note, error)
	Delete(ctx context.Context, id string) error
}

type NoteHandler struct {
	svc NoteService
}

func NewNoteHandler(svc NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type NoteResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	HasEmbedding bool   `json:"has_embedding"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func noteToResponse(n *domain.Note) *NoteResponse {
	return &NoteResponse{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		HasEmbedding: len(n.Embedding) > 0,
		CreatedAt:    n.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    n.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	note, err := h.svc.Create(r.Context(), service.CreateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, noteToResponse(note))
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	note, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, noteToResponse(n))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	note, err := h.svc.Update(r.Context(), service.UpdateNoteInput{
		NoteID:  id,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
