package service

import (
	"context"
	"fmt"
	"time"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/telemetry"
)

// InsightRepositoryInterface defines the repository interface for insight persistence
type InsightRepositoryInterface interface {
	Create(ctx context.Context, i *domain.SourceInsight) error
	GetByID(ctx context.Context, id string) (*domain.SourceInsight, error)
	ListBySource(ctx context.Context, sourceID string) ([]*domain.SourceInsight, error)
	Delete(ctx context.Context, id string) error
}

// InsightService handles business logic for source insights
type InsightService struct {
	insightRepo      InsightRepositoryInterface
	sourceRepo       SourceRepositoryInterface
	embeddingJobRepo EmbeddingJobRepositoryInterface
	txRunner         TxRunner
	uuidGen          UUIDGenerator
}

// NewInsightService creates a new InsightService instance
func NewInsightService(
	insightRepo InsightRepositoryInterface,
	sourceRepo SourceRepositoryInterface,
	embeddingJobRepo EmbeddingJobRepositoryInterface,
	txRunner TxRunner,
) *InsightService {
	return &InsightService{
		insightRepo:      insightRepo,
		sourceRepo:       sourceRepo,
		embeddingJobRepo: embeddingJobRepo,
		txRunner:         txRunner,
		uuidGen:          &DefaultUUIDGenerator{},
	}
}

// CreateInsightInput represents the input for creating an insight
type CreateInsightInput struct {
	SourceID    string
	InsightType string
	Content     string
}

// Create attaches an insight to a source and queues an embedding job
func (s *InsightService) Create(ctx context.Context, input CreateInsightInput) (*domain.SourceInsight, error) {
	ctx, span := telemetry.StartSpan(ctx, "InsightService.Create", telemetry.SpanAttributes{
		SourceID:  input.SourceID,
		Operation: "create",
	})
	defer span.End()

	if _, err := s.sourceRepo.GetByID(ctx, input.SourceID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	insight := domain.NewSourceInsight(s.uuidGen.NewString(), input.SourceID, input.InsightType, input.Content, now)

	if err := domain.ValidateSourceInsight(insight); err != nil {
		return nil, err
	}

	job := &domain.EmbeddingJob{
		ID:        s.uuidGen.NewString(),
		InsightID: insight.ID,
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: now,
	}

	if s.txRunner != nil {
		if err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			if err := repos.Insights().Create(ctx, insight); err != nil {
				return fmt.Errorf("failed to create insight: %w", err)
			}
			if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
				return fmt.Errorf("failed to create embedding job: %w", err)
			}
			return nil
		}); err != nil {
			span.SetError(err)
			return nil, err
		}
		return insight, nil
	}

	if err := s.insightRepo.Create(ctx, insight); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create insight: %w", err)
	}
	if err := s.embeddingJobRepo.Create(ctx, job); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create embedding job: %w", err)
	}
	return insight, nil
}

// GetByID retrieves an insight by ID
func (s *InsightService) GetByID(ctx context.Context, id string) (*domain.SourceInsight, error) {
	return s.insightRepo.GetByID(ctx, id)
}

// ListBySource retrieves the insights attached to a source
func (s *InsightService) ListBySource(ctx context.Context, sourceID string) ([]*domain.SourceInsight, error) {
	return s.insightRepo.ListBySource(ctx, sourceID)
}

// Delete removes an insight
func (s *InsightService) Delete(ctx context.Context, id string) error {
	return s.insightRepo.Delete(ctx, id)
}
