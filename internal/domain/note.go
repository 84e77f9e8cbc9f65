package domain

import (
	"strings"
	"time"
)

// Note represents a user- or AI-authored note. Notes carry a single
// document-level embedding: long notes are chunked, embedded in one batched
// call and mean pooled back into one vector.
type Note struct {
	ID        string
	Title     string
	Content   string
	Embedding []float32 // nil until an embedding job completes
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNote creates a new Note instance
func NewNote(id, title, content string, createdAt time.Time) *Note {
	return &Note{
		ID:        id,
		Title:     title,
		Content:   content,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// ValidateNote validates a Note instance
func ValidateNote(n *Note) error {
	if n == nil {
		return NewDomainError(ErrCodeValidation, "note cannot be nil")
	}
	if n.ID == "" {
		return NewDomainError(ErrCodeValidation, "note ID is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		return NewDomainError(ErrCodeValidation, "note Content is required")
	}
	return nil
}
