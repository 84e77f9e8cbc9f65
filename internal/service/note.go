package service

import (
	"context"
	"fmt"
	"time"

	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/telemetry"
)

// NoteRepositoryInterface defines the repository interface for note persistence
type NoteRepositoryInterface interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	List(ctx context.Context) ([]*domain.Note, error)
	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, id string) error
}

// NoteService handles business logic for notes. Every create or content
// update queues an embedding job so the note's document-level vector stays
// in sync with its content.
type NoteService struct {
	noteRepo         NoteRepositoryInterface
	embeddingJobRepo EmbeddingJobRepositoryInterface
	txRunner         TxRunner
	uuidGen          UUIDGenerator
}

// NewNoteService creates a new NoteService instance
func NewNoteService(
	noteRepo NoteRepositoryInterface,
	embeddingJobRepo EmbeddingJobRepositoryInterface,
	txRunner TxRunner,
) *NoteService {
	return &NoteService{
		noteRepo:         noteRepo,
		embeddingJobRepo: embeddingJobRepo,
		txRunner:         txRunner,
		uuidGen:          &DefaultUUIDGenerator{},
	}
}

// CreateNoteInput represents the input for creating a note
type CreateNoteInput struct {
	Title   string
	Content string
}

// UpdateNoteInput represents the input for updating a note
type UpdateNoteInput struct {
	NoteID  string
	Title   string
	Content string
}

// Create creates a new note and queues an embedding job
func (s *NoteService) Create(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Create", telemetry.SpanAttributes{
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	note := domain.NewNote(s.uuidGen.NewString(), input.Title, input.Content, now)

	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}

	job := &domain.EmbeddingJob{
		ID:        s.uuidGen.NewString(),
		NoteID:    note.ID,
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: now,
	}

	if s.txRunner != nil {
		if err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			if err := repos.Notes().Create(ctx, note); err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}
			if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
				return fmt.Errorf("failed to create embedding job: %w", err)
			}
			return nil
		}); err != nil {
			span.SetError(err)
			return nil, err
		}
		return note, nil
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	if err := s.embeddingJobRepo.Create(ctx, job); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create embedding job: %w", err)
	}
	return note, nil
}

// GetByID retrieves a note by ID
func (s *NoteService) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	return s.noteRepo.GetByID(ctx, id)
}

// List retrieves all notes ordered by last update
func (s *NoteService) List(ctx context.Context) ([]*domain.Note, error) {
	return s.noteRepo.List(ctx)
}

// Update replaces a note's content and queues a re-embedding job
func (s *NoteService) Update(ctx context.Context, input UpdateNoteInput) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Update", telemetry.SpanAttributes{
		NoteID:    input.NoteID,
		Operation: "update",
	})
	defer span.End()

	note, err := s.noteRepo.GetByID(ctx, input.NoteID)
	if err != nil {
		return nil, err
	}

	note.Title = input.Title
	note.Content = input.Content

	if err := domain.ValidateNote(note); err != nil {
		return nil, err
	}

	job := &domain.EmbeddingJob{
		ID:        s.uuidGen.NewString(),
		NoteID:    note.ID,
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if s.txRunner != nil {
		if err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			if err := repos.Notes().Update(ctx, note); err != nil {
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
		return note, nil
	}

	if err := s.noteRepo.Update(ctx, note); err != nil {
		span.SetError(err)
		return nil, err
	}
	if err := s.embeddingJobRepo.Create(ctx, job); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create embedding job: %w", err)
	}
	return note, nil
}

// Delete removes a note
func (s *NoteService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Delete", telemetry.SpanAttributes{
		NoteID:    id,
		Operation: "delete",
	})
	defer span.End()

	return s.noteRepo.Delete(ctx, id)
}
