package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/telemetry"
)

// EmbeddingClient is the capability interface to an embedding provider: one
// batched call turning N texts into N vectors of fixed dimension, in input
// order. Implementations raise on any failure (auth, network, rate limit)
// without the core distinguishing subtypes.
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingNoteRepository loads notes and stores their document-level embedding.
type EmbeddingNoteRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// EmbeddingInsightRepository loads insights and stores their document-level embedding.
type EmbeddingInsightRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SourceInsight, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// EmbeddingSourceRepository loads sources for the per-chunk embedding path.
type EmbeddingSourceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Source, error)
}

// EmbeddingChunkRepository persists per-chunk embeddings for sources.
type EmbeddingChunkRepository interface {
	DeleteBySource(ctx context.Context, sourceID string) error
	InsertChunks(ctx context.Context, chunks []domain.SourceChunk) error
}

// EmbeddingService ties the chunker, the embedding provider and mean
// pooling together. Each invocation makes at most one provider call: all
// chunks of a document are embedded in a single batch.
type EmbeddingService struct {
	client      EmbeddingClient
	chunker     *Chunker
	noteRepo    EmbeddingNoteRepository
	insightRepo EmbeddingInsightRepository
	sourceRepo  EmbeddingSourceRepository
	chunkRepo   EmbeddingChunkRepository
}

// NewEmbeddingService creates a new EmbeddingService instance. client may be
// nil when no embedding provider is configured; every embedding operation
// then fails with a validation error.
func NewEmbeddingService(
	client EmbeddingClient,
	chunker *Chunker,
	noteRepo EmbeddingNoteRepository,
	insightRepo EmbeddingInsightRepository,
	sourceRepo EmbeddingSourceRepository,
	chunkRepo EmbeddingChunkRepository,
) *EmbeddingService {
	if chunker == nil {
		chunker = NewChunker(DefaultChunkConfig())
	}
	return &EmbeddingService{
		client:      client,
		chunker:     chunker,
		noteRepo:    noteRepo,
		insightRepo: insightRepo,
		sourceRepo:  sourceRepo,
		chunkRepo:   chunkRepo,
	}
}

// EmbedTexts generates embeddings for multiple texts in a single provider
// call, preserving input order. Empty input returns empty output without
// calling the provider. Provider failures are wrapped and propagated as-is;
// retry policy is the caller's concern.
func (s *EmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if s.client == nil {
		return nil, domain.ErrNoEmbeddingModel
	}

	log.Debug().Int("texts", len(texts)).Msg("generating embeddings")

	embeddings, err := s.client.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings for %d texts: %w", len(texts), err)
	}
	return embeddings, nil
}

// EmbedDocument generates a single embedding for text, chunking and mean
// pooling when the text exceeds the chunk size. Short text is embedded
// directly and the provider's vector returned unmodified; pooled vectors
// are unit-norm. contentType may be ContentTypeUnknown.
func (s *EmbeddingService) EmbedDocument(ctx context.Context, text string, contentType ContentType, filePath string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}

	if utf8.RuneCountInString(text) <= s.chunker.Config().Size {
		embeddings, err := s.EmbedTexts(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(embeddings) != 1 {
			return nil, fmt.Errorf("%w: got %d embeddings for 1 text",
				domain.ErrEmbeddingCountMismatch, len(embeddings))
		}
		return embeddings[0], nil
	}

	chunks := s.chunker.Split(text, contentType, filePath)
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunks
	}

	embeddings, err := s.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingCountMismatch, len(embeddings), len(chunks))
	}

	if len(embeddings) == 1 {
		return embeddings[0], nil
	}

	log.Debug().Int("chunks", len(chunks)).Msg("mean pooling chunk embeddings")
	return MeanPool(embeddings)
}

// EmbedSourceChunks deletes any previously stored chunk embeddings for the
// source and re-embeds its full text chunk by chunk, persisting one record
// per chunk with its zero-based order index. The delete-then-rewrite makes
// re-embedding idempotent: no stale chunks from a prior run with different
// boundaries survive. Returns the number of chunks created.
func (s *EmbeddingService) EmbedSourceChunks(ctx context.Context, sourceID, fullText, filePath string) (int, error) {
	if strings.TrimSpace(fullText) == "" {
		return 0, domain.ErrEmptyText
	}

	if err := s.chunkRepo.DeleteBySource(ctx, sourceID); err != nil {
		return 0, fmt.Errorf("failed to delete existing chunk embeddings: %w", err)
	}

	contentType := DetectContentType(fullText, filePath)
	chunks := s.chunker.Split(fullText, contentType, filePath)
	if len(chunks) == 0 {
		return 0, domain.ErrNoChunks
	}

	embeddings, err := s.EmbedTexts(ctx, chunks)
	if err != nil {
		return 0, err
	}

	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingCountMismatch, len(embeddings), len(chunks))
	}

	now := time.Now().UTC()
	records := make([]domain.SourceChunk, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.SourceChunk{
			ID:         uuid.NewString(),
			SourceID:   sourceID,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  embeddings[i],
			CreatedAt:  now,
		}
	}

	if err := s.chunkRepo.InsertChunks(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to insert chunk embeddings: %w", err)
	}

	log.Info().
		Str("source_id", sourceID).
		Str("content_type", string(contentType)).
		Int("chunks", len(records)).
		Msg("embedded source chunks")

	return len(records), nil
}

// EmbedNote generates and stores the embedding for a single note. Notes are
// markdown content; long notes are chunked and mean pooled.
func (s *EmbeddingService) EmbedNote(ctx context.Context, noteID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.EmbedNote", telemetry.SpanAttributes{
		NoteID:    noteID,
		Operation: "embed_note",
	})
	defer span.End()

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return err
	}

	embedding, err := s.EmbedDocument(ctx, note.Content, ContentTypeMarkdown, "")
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to embed note %s: %w", noteID, err)
	}

	if err := s.noteRepo.UpdateEmbedding(ctx, noteID, embedding); err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to update note embedding: %w", err)
	}

	return nil
}

// EmbedInsight generates and stores the embedding for a single source
// insight. Insight content is LLM-generated markdown.
func (s *EmbeddingService) EmbedInsight(ctx context.Context, insightID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.EmbedInsight", telemetry.SpanAttributes{
		InsightID: insightID,
		Operation: "embed_insight",
	})
	defer span.End()

	insight, err := s.insightRepo.GetByID(ctx, insightID)
	if err != nil {
		return err
	}

	embedding, err := s.EmbedDocument(ctx, insight.Content, ContentTypeMarkdown, "")
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to embed insight %s: %w", insightID, err)
	}

	if err := s.insightRepo.UpdateEmbedding(ctx, insightID, embedding); err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to update insight embedding: %w", err)
	}

	return nil
}

// EmbedSource re-embeds a source document through the per-chunk path.
func (s *EmbeddingService) EmbedSource(ctx context.Context, sourceID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.EmbedSource", telemetry.SpanAttributes{
		SourceID:  sourceID,
		Operation: "embed_source",
	})
	defer span.End()

	source, err := s.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return err
	}

	if _, err := s.EmbedSourceChunks(ctx, source.ID, source.FullText, source.FilePath); err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to embed source %s: %w", sourceID, err)
	}

	return nil
}
