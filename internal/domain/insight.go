package domain

import (
	"strings"
	"time"
)

// SourceInsight is an AI-generated transformation of a source (summary, key
// points, etc). Like notes, insights carry a single document-level embedding.
type SourceInsight struct {
	ID          string
	SourceID    string
	InsightType string
	Content     string
	Embedding   []float32
	CreatedAt   time.Time
}

// NewSourceInsight creates a new SourceInsight instance
func NewSourceInsight(id, sourceID, insightType, content string, createdAt time.Time) *SourceInsight {
	return &SourceInsight{
		ID:          id,
		SourceID:    sourceID,
		InsightType: insightType,
		Content:     content,
		CreatedAt:   createdAt,
	}
}

// ValidateSourceInsight validates a SourceInsight instance
func ValidateSourceInsight(i *SourceInsight) error {
	if i == nil {
		return NewDomainError(ErrCodeValidation, "insight cannot be nil")
	}
	if i.ID == "" {
		return NewDomainError(ErrCodeValidation, "insight ID is required")
	}
	if i.SourceID == "" {
		return NewDomainError(ErrCodeValidation, "insight SourceID is required")
	}
	if strings.TrimSpace(i.Content) == "" {
		return NewDomainError(ErrCodeValidation, "insight Content is required")
	}
	return nil
}
