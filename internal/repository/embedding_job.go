package repository

import (
	"context"
	"errors"
	"time"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EmbeddingJobRepository struct {
	db dbtx
}

func NewEmbeddingJobRepository(pool *pgxpool.Pool) *EmbeddingJobRepository {
	return &EmbeddingJobRepository{db: pool}
}

func NewEmbeddingJobRepositoryWithTx(tx pgx.Tx) *EmbeddingJobRepository {
	return &EmbeddingJobRepository{db: tx}
}

func (r *EmbeddingJobRepository) Create(ctx context.Context, job *domain.EmbeddingJob) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO embedding_jobs (id, source_id, note_id, insight_id, status, retries, error, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ID, nullableString(job.SourceID), nullableString(job.NoteID), nullableString(job.InsightID),
		job.Status, job.Retries, nullableString(job.Error), job.CreatedAt, job.ProcessedAt,
	)
	return err
}

func (r *EmbeddingJobRepository) GetByID(ctx context.Context, id string) (*domain.EmbeddingJob, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, source_id, note_id, insight_id, status, retries, error, created_at, processed_at
		 FROM embedding_jobs WHERE id = $1`,
		id,
	)
	job, err := scanEmbeddingJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmbeddingJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ClaimPending atomically flips a batch of pending jobs to processing and
// returns them. FOR UPDATE SKIP LOCKED keeps concurrent workers from
// claiming the same job.
func (r *EmbeddingJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.EmbeddingJob, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM embedding_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE embedding_jobs
		 SET status = $3,
		     claimed_at = now(),
		     error = NULL,
		     processed_at = NULL
		 FROM cte
		 WHERE embedding_jobs.id = cte.id
		 RETURNING embedding_jobs.id, embedding_jobs.source_id, embedding_jobs.note_id, embedding_jobs.insight_id,
		           embedding_jobs.status, embedding_jobs.retries, embedding_jobs.error,
		           embedding_jobs.created_at, embedding_jobs.processed_at`,
		domain.EmbeddingJobStatusPending, limit, domain.EmbeddingJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.EmbeddingJob
	for rows.Next() {
		job, err := scanEmbeddingJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *EmbeddingJobRepository) UpdateStatus(ctx context.Context, id string, status domain.EmbeddingJobStatus, errMsg string) error {
	var processedAt *time.Time
	if status == domain.EmbeddingJobStatusCompleted || status == domain.EmbeddingJobStatusFailed {
		now := time.Now().UTC()
		processedAt = &now
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE embedding_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		status, nullableString(errMsg), processedAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEmbeddingJobNotFound
	}
	return nil
}

func (r *EmbeddingJobRepository) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE embedding_jobs SET retries = retries + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEmbeddingJobNotFound
	}
	return nil
}

// RequeueStale flips jobs back to pending when they have sat in processing
// longer than olderThan since being claimed. Recovers work orphaned by a
// crashed worker.
func (r *EmbeddingJobRepository) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE embedding_jobs SET status = $1, claimed_at = NULL
		 WHERE status = $2 AND claimed_at < $3`,
		domain.EmbeddingJobStatusPending, domain.EmbeddingJobStatusProcessing,
		time.Now().UTC().Add(-olderThan),
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

func scanEmbeddingJob(row pgx.Row) (*domain.EmbeddingJob, error) {
	var job domain.EmbeddingJob
	var sourceID, noteID, insightID, errMsg pgtype.Text
	err := row.Scan(&job.ID, &sourceID, &noteID, &insightID, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt)
	if err != nil {
		return nil, err
	}
	if sourceID.Valid {
		job.SourceID = sourceID.String
	}
	if noteID.Valid {
		job.NoteID = noteID.String
	}
	if insightID.Valid {
		job.InsightID = insightID.String
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}
