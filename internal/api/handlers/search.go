package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/inkstand-ai/inkstand/internal/api"
	"github.com/inkstand-ai/inkstand/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) ([]*service.SearchResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SearchResultResponse struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	SourceID string  `json:"source_id,omitempty"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Score    float32 `json:"score"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.svc.Search(r.Context(), service.SearchInput{
		Query: req.Query,
		Limit: req.Limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*SearchResultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, &SearchResultResponse{
			ID:       res.ID,
			Kind:     res.Kind,
			SourceID: res.SourceID,
			Title:    res.Title,
			Content:  res.Content,
			Score:    res.Score,
		})
	}
	api.Success(w, http.StatusOK, resp)
}
