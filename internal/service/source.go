package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/pagination"
	"github.com/inkstand-ai/inkstand/internal/telemetry"
)

// SourceRepositoryInterface defines the repository interface for source persistence
type SourceRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Source) error
	GetByID(ctx context.Context, id string) (*domain.Source, error)
	List(ctx context.Context) ([]*domain.Source, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*SourcePageResult, error)
	Update(ctx context.Context, s *domain.Source) error
	Delete(ctx context.Context, id string) error
}

type SourcePageResult struct {
	Items      []*domain.Source
	NextCursor string
	HasMore    bool
}

// SourceChunkReaderInterface exposes read access to persisted source chunks
type SourceChunkReaderInterface interface {
	ListBySource(ctx context.Context, sourceID string) ([]*domain.SourceChunk, error)
	CountBySource(ctx context.Context, sourceID string) (int, error)
}

// EmbeddingJobRepositoryInterface defines the repository interface for embedding job persistence
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// SourceService handles business logic for ingested sources. Creating or
// updating a source queues an embedding job; the worker chunks the full
// text and persists one embedding per chunk.
type SourceService struct {
	sourceRepo       SourceRepositoryInterface
	chunkReader      SourceChunkReaderInterface
	embeddingJobRepo EmbeddingJobRepositoryInterface
	txRunner         TxRunner
	uuidGen          UUIDGenerator
}

// NewSourceService creates a new SourceService instance
func NewSourceService(
	sourceRepo SourceRepositoryInterface,
	chunkReader SourceChunkReaderInterface,
	embeddingJobRepo EmbeddingJobRepositoryInterface,
	txRunner TxRunner,
) *SourceService {
	return &SourceService{
		sourceRepo:       sourceRepo,
		chunkReader:      chunkReader,
		embeddingJobRepo: embeddingJobRepo,
		txRunner:         txRunner,
		uuidGen:          &DefaultUUIDGenerator{},
	}
}

// CreateSourceInput represents the input for creating a source
type CreateSourceInput struct {
	Title    string
	FullText string
	FilePath string
}

// UpdateSourceInput represents the input for updating a source
type UpdateSourceInput struct {
	SourceID string
	Title    string
	FullText string
	FilePath string
}

// Create creates a new source and queues an embedding job for its chunks
func (s *SourceService) Create(ctx context.Context, input CreateSourceInput) (*domain.Source, error) {
	ctx, span := telemetry.StartSpan(ctx, "SourceService.Create", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	source := domain.NewSource(s.uuidGen.NewString(), input.Title, input.FullText, input.FilePath, now)

	if err := domain.ValidateSource(source); err != nil {
		span.SetError(err)
		return nil, err
	}

	job := &domain.EmbeddingJob{
		ID:        s.uuidGen.NewString(),
		SourceID:  source.ID,
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: now,
	}

	if s.txRunner != nil {
		if err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			if err := repos.Sources().Create(ctx, source); err != nil {
				return fmt.Errorf("failed to create source: %w", err)
			}
			if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
				return fmt.Errorf("failed to create embedding job: %w", err)
			}
			return nil
		}); err != nil {
			span.SetError(err)
			return nil, err
		}
		return source, nil
	}

	if err := s.sourceRepo.Create(ctx, source); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	if err := s.embeddingJobRepo.Create(ctx, job); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create embedding job: %w", err)
	}
	return source, nil
}

// GetByID retrieves a source by ID
func (s *SourceService) GetByID(ctx context.Context, id string) (*domain.Source, error) {
	return s.sourceRepo.GetByID(ctx, id)
}

// List retrieves all sources ordered by last update
func (s *SourceService) List(ctx context.Context) ([]*domain.Source, error) {
	return s.sourceRepo.List(ctx)
}

type ListSourcesInput struct {
	Cursor string
	Limit  int
}

type ListSourcesOutput struct {
	Items   []*domain.Source
	Cursor  string
	HasMore bool
}

// ListSources retrieves a page of sources using cursor pagination
func (s *SourceService) ListSources(ctx context.Context, input ListSourcesInput) (*ListSourcesOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SourceService.ListSources", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.sourceRepo.ListWithCursor(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListSourcesOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// GetChunks retrieves the persisted chunks of a source in chunk order
func (s *SourceService) GetChunks(ctx context.Context, sourceID string) ([]*domain.SourceChunk, error) {
	if _, err := s.sourceRepo.GetByID(ctx, sourceID); err != nil {
		return nil, err
	}
	return s.chunkReader.ListBySource(ctx, sourceID)
}

// Update replaces a source's content and queues a re-embedding job
func (s *SourceService) Update(ctx context.Context, input UpdateSourceInput) (*domain.Source, error) {
	ctx, span := telemetry.StartSpan(ctx, "SourceService.Update", telemetry.SpanAttributes{
		SourceID:  input.SourceID,
		Operation: "update",
	})
	defer span.End()

	source, err := s.sourceRepo.GetByID(ctx, input.SourceID)
	if err != nil {
		return nil, err
	}

	source.Title = input.Title
	source.FullText = input.FullText
	source.FilePath = input.FilePath

	if err := domain.ValidateSource(source); err != nil {
		span.SetError(err)
		return nil, err
	}

	job := &domain.EmbeddingJob{
		ID:        s.uuidGen.NewString(),
		SourceID:  source.ID,
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if s.txRunner != nil {
		if err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			if err := repos.Sources().Update(ctx, source); err != nil {
				return err
			}
			if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
				return fmt.Errorf("failed to create embedding job: %w", err)
			}
			return nil
		}); err != nil {
			span.SetError(err)
			return nil, err
		}
		return source, nil
	}

	if err := s.sourceRepo.Update(ctx, source); err != nil {
		span.SetError(err)
		return nil, err
	}
	if err := s.embeddingJobRepo.Create(ctx, job); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create embedding job: %w", err)
	}
	return source, nil
}

// Delete removes a source. Chunks and insights are removed by cascade.
func (s *SourceService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "SourceService.Delete", telemetry.SpanAttributes{
		SourceID:  id,
		Operation: "delete",
	})
	defer span.End()

	return s.sourceRepo.Delete(ctx, id)
}
