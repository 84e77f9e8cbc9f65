package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/inkstand-ai/inkstand/internal/domain"
)

const (
	// MaxAttempts bounds how many times a failing embed call is tried
	// before the job is marked failed.
	MaxAttempts = 5

	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
	backoffJitter  = 500 * time.Millisecond
)

// EmbeddingJobRepository defines the interface for embedding job persistence
type EmbeddingJobRepository interface {
	// ClaimPending atomically claims a batch of pending jobs for this worker.
	ClaimPending(ctx context.Context, limit int) ([]*domain.EmbeddingJob, error)

	// UpdateStatus updates the status of an embedding job
	UpdateStatus(ctx context.Context, id string, status domain.EmbeddingJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, id string) error
}

// EmbeddingGenerator defines the embedding operations the worker dispatches to
type EmbeddingGenerator interface {
	EmbedSource(ctx context.Context, sourceID string) error
	EmbedNote(ctx context.Context, noteID string) error
	EmbedInsight(ctx context.Context, insightID string) error
}

// EmbeddingWorker processes embedding jobs. Transient provider failures are
// retried with exponential backoff; validation failures are permanent and
// fail the job immediately.
type EmbeddingWorker struct {
	repo      EmbeddingJobRepository
	generator EmbeddingGenerator
	batchSize int
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance
func NewEmbeddingWorker(repo EmbeddingJobRepository, generator EmbeddingGenerator) *EmbeddingWorker {
	return &EmbeddingWorker{
		repo:      repo,
		generator: generator,
		batchSize: 100,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Info().Int("count", len(jobs)).Msg("worker: processing embedding jobs")

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("worker: job failed")
		}
	}

	return nil
}

func (w *EmbeddingWorker) processJob(ctx context.Context, job *domain.EmbeddingJob) error {
	backoff := retry.NewExponential(initialBackoff)
	backoff = retry.WithCappedDuration(maxBackoff, backoff)
	backoff = retry.WithJitter(backoffJitter, backoff)
	backoff = retry.WithMaxRetries(MaxAttempts-1, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		embedErr := w.dispatch(ctx, job)
		if embedErr == nil {
			return nil
		}
		if domain.IsValidation(embedErr) {
			return embedErr
		}
		if incErr := w.repo.IncrementRetries(ctx, job.ID); incErr != nil {
			log.Warn().Err(incErr).Str("job_id", job.ID).Msg("worker: failed to increment retries")
		}
		log.Warn().Err(embedErr).Str("job_id", job.ID).Msg("worker: embed attempt failed, will retry")
		return retry.RetryableError(embedErr)
	})
	if err != nil {
		if updateErr := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, err.Error()); updateErr != nil {
			return fmt.Errorf("failed to update job status to failed: %w", updateErr)
		}
		return err
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Info().Str("job_id", job.ID).Msg("worker: job completed")
	return nil
}

func (w *EmbeddingWorker) dispatch(ctx context.Context, job *domain.EmbeddingJob) error {
	switch {
	case job.SourceID != "":
		return w.generator.EmbedSource(ctx, job.SourceID)
	case job.NoteID != "":
		return w.generator.EmbedNote(ctx, job.NoteID)
	case job.InsightID != "":
		return w.generator.EmbedInsight(ctx, job.InsightID)
	default:
		return domain.ErrInvalidEmbeddingJob
	}
}
