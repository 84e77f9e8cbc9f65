package service

import (
	"context"
	"sort"
	"strings"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/telemetry"
)

// NoteSearchResult is a note matched by vector search.
type NoteSearchResult struct {
	NoteID  string
	Title   string
	Content string
	Score   float32
}

// ChunkSearchResult is a source chunk matched by vector search, carrying
// enough context to show which source and position it came from.
type ChunkSearchResult struct {
	ChunkID     string
	SourceID    string
	SourceTitle string
	ChunkIndex  int
	Content     string
	Score       float32
}

// SearchResult is a unified hit across notes and source chunks.
type SearchResult struct {
	ID       string
	Kind     string // "note" or "chunk"
	SourceID string
	Title    string
	Content  string
	Score    float32
}

// NoteSearchRepositoryInterface defines vector search over notes
type NoteSearchRepositoryInterface interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*NoteSearchResult, error)
}

// ChunkSearchRepositoryInterface defines vector search over source chunks
type ChunkSearchRepositoryInterface interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*ChunkSearchResult, error)
}

// QueryEmbedder turns a search query into a vector.
type QueryEmbedder interface {
	EmbedDocument(ctx context.Context, text string, contentType ContentType, filePath string) ([]float32, error)
}

// SearchService embeds a query and runs it against notes and source chunks,
// merging the hits into one score-ordered list.
type SearchService struct {
	embedder  QueryEmbedder
	noteRepo  NoteSearchRepositoryInterface
	chunkRepo ChunkSearchRepositoryInterface
}

// NewSearchService creates a new SearchService instance
func NewSearchService(
	embedder QueryEmbedder,
	noteRepo NoteSearchRepositoryInterface,
	chunkRepo ChunkSearchRepositoryInterface,
) *SearchService {
	return &SearchService{
		embedder:  embedder,
		noteRepo:  noteRepo,
		chunkRepo: chunkRepo,
	}
}

// SearchInput represents input for a search operation
type SearchInput struct {
	Query string
	Limit int
}

// Search embeds the query once and searches notes and source chunks with
// the same vector.
func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]*SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrEmptyText
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	embedding, err := s.embedder.EmbedDocument(ctx, query, ContentTypePlain, "")
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	noteHits, err := s.noteRepo.SearchByEmbedding(ctx, embedding, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	chunkHits, err := s.chunkRepo.SearchByEmbedding(ctx, embedding, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	results := make([]*SearchResult, 0, len(noteHits)+len(chunkHits))
	for _, h := range noteHits {
		results = append(results, &SearchResult{
			ID:      h.NoteID,
			Kind:    "note",
			Title:   h.Title,
			Content: h.Content,
			Score:   h.Score,
		})
	}
	for _, h := range chunkHits {
		results = append(results, &SearchResult{
			ID:       h.ChunkID,
			Kind:     "chunk",
			SourceID: h.SourceID,
			Title:    h.SourceTitle,
			Content:  h.Content,
			Score:    h.Score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
