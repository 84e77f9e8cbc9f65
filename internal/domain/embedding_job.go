package domain

import (
	"fmt"
	"time"
)

// EmbeddingJobStatus represents the status of an embedding job
type EmbeddingJobStatus string

const (
	EmbeddingJobStatusPending    EmbeddingJobStatus = "pending"
	EmbeddingJobStatusProcessing EmbeddingJobStatus = "processing"
	EmbeddingJobStatusCompleted  EmbeddingJobStatus = "completed"
	EmbeddingJobStatusFailed     EmbeddingJobStatus = "failed"
)

// EmbeddingJob represents an async embedding generation job. Exactly one of
// SourceID, NoteID and InsightID is set; it selects the pipeline path
// (per-chunk persistence for sources, single pooled vector for the rest).
type EmbeddingJob struct {
	ID          string
	SourceID    string
	NoteID      string
	InsightID   string
	Status      EmbeddingJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ValidateEmbeddingJob validates an EmbeddingJob instance
func ValidateEmbeddingJob(j *EmbeddingJob) error {
	if j == nil {
		return NewDomainError(ErrCodeValidation, "embedding job cannot be nil")
	}

	if j.ID == "" {
		return NewDomainError(ErrCodeValidation, "embedding job ID is required")
	}

	targets := 0
	for _, id := range []string{j.SourceID, j.NoteID, j.InsightID} {
		if id != "" {
			targets++
		}
	}
	if targets != 1 {
		return NewDomainErrorWithCause(ErrCodeValidation,
			"embedding job must reference exactly one of source, note or insight",
			fmt.Errorf("got %d references", targets))
	}

	if !isValidEmbeddingJobStatus(j.Status) {
		return NewDomainErrorWithCause(ErrCodeValidation,
			"embedding job Status is invalid", fmt.Errorf("status %q", j.Status))
	}

	if j.Retries < 0 {
		return NewDomainError(ErrCodeValidation, "embedding job Retries cannot be negative")
	}

	return nil
}

// isValidEmbeddingJobStatus checks if an EmbeddingJobStatus is valid
func isValidEmbeddingJobStatus(s EmbeddingJobStatus) bool {
	switch s {
	case EmbeddingJobStatusPending, EmbeddingJobStatusProcessing,
		EmbeddingJobStatusCompleted, EmbeddingJobStatusFailed:
		return true
	}
	return false
}
