package domain

import (
	"strings"
	"time"
)

// Source represents an ingested document: a web page, an uploaded file, or
// pasted text. The full text is chunked and embedded per chunk so that
// vector search can hit individual passages rather than a pooled
// whole-document vector.
type Source struct {
	ID        string
	Title     string
	FullText  string
	FilePath  string // original file path, used as a content-type hint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SourceChunk is one bounded-size segment of a source's full text together
// with its embedding. ChunkIndex is the zero-based position of the chunk in
// the order the chunker emitted it.
type SourceChunk struct {
	ID         string
	SourceID   string
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}

// NewSource creates a new Source instance
func NewSource(id, title, fullText, filePath string, createdAt time.Time) *Source {
	return &Source{
		ID:        id,
		Title:     title,
		FullText:  fullText,
		FilePath:  filePath,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// ValidateSource validates a Source instance
func ValidateSource(s *Source) error {
	if s == nil {
		return NewDomainError(ErrCodeValidation, "source cannot be nil")
	}
	if s.ID == "" {
		return NewDomainError(ErrCodeValidation, "source ID is required")
	}
	if strings.TrimSpace(s.Title) == "" {
		return NewDomainError(ErrCodeValidation, "source Title is required")
	}
	return nil
}
