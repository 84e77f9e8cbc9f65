package service

import (
	"context"
	"fmt"
	"time"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/telemetry"
)

// EmbeddingJobReaderInterface defines read access to embedding jobs
type EmbeddingJobReaderInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
	GetByID(ctx context.Context, id string) (*domain.EmbeddingJob, error)
}

// EmbedItemType names the kind of item an embed request targets.
type EmbedItemType string

const (
	EmbedItemSource  EmbedItemType = "source"
	EmbedItemNote    EmbedItemType = "note"
	EmbedItemInsight EmbedItemType = "insight"
)

// EmbeddingJobService enqueues and inspects embedding jobs. It lets callers
// request a re-embed of an existing item without touching its content.
type EmbeddingJobService struct {
	jobRepo     EmbeddingJobReaderInterface
	sourceRepo  SourceRepositoryInterface
	noteRepo    NoteRepositoryInterface
	insightRepo InsightRepositoryInterface
	uuidGen     UUIDGenerator
}

// NewEmbeddingJobService creates a new EmbeddingJobService instance
func NewEmbeddingJobService(
	jobRepo EmbeddingJobReaderInterface,
	sourceRepo SourceRepositoryInterface,
	noteRepo NoteRepositoryInterface,
	insightRepo InsightRepositoryInterface,
) *EmbeddingJobService {
	return &EmbeddingJobService{
		jobRepo:     jobRepo,
		sourceRepo:  sourceRepo,
		noteRepo:    noteRepo,
		insightRepo: insightRepo,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

// Enqueue checks the target item exists and queues a pending embedding job
// for it.
func (s *EmbeddingJobService) Enqueue(ctx context.Context, itemType EmbedItemType, itemID string) (*domain.EmbeddingJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingJobService.Enqueue", telemetry.SpanAttributes{
		Operation: "enqueue",
	})
	defer span.End()

	job := &domain.EmbeddingJob{
		ID:        s.uuidGen.NewString(),
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	switch itemType {
	case EmbedItemSource:
		if _, err := s.sourceRepo.GetByID(ctx, itemID); err != nil {
			return nil, err
		}
		job.SourceID = itemID
	case EmbedItemNote:
		if _, err := s.noteRepo.GetByID(ctx, itemID); err != nil {
			return nil, err
		}
		job.NoteID = itemID
	case EmbedItemInsight:
		if _, err := s.insightRepo.GetByID(ctx, itemID); err != nil {
			return nil, err
		}
		job.InsightID = itemID
	default:
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation,
			"item_type must be source, note or insight", fmt.Errorf("got %q", itemType))
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create embedding job: %w", err)
	}
	return job, nil
}

// GetByID retrieves an embedding job by ID
func (s *EmbeddingJobService) GetByID(ctx context.Context, id string) (*domain.EmbeddingJob, error) {
	return s.jobRepo.GetByID(ctx, id)
}
