package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors. These are permanent failures: the job worker never
// retries them because re-running the same input cannot succeed.
var (
	ErrEmptyText               = NewDomainError(ErrCodeValidation, "text is empty or whitespace-only")
	ErrNoChunks                = NewDomainError(ErrCodeValidation, "chunking produced no chunks from non-empty text")
	ErrEmbeddingCountMismatch  = NewDomainError(ErrCodeValidation, "embedding count does not match chunk count")
	ErrNoEmbeddingModel        = NewDomainError(ErrCodeValidation, "no embedding model configured")
	ErrEmptyEmbeddings         = NewDomainError(ErrCodeValidation, "cannot mean pool an empty list of embeddings")
	ErrEmbeddingDimensionsVary = NewDomainError(ErrCodeValidation, "embeddings have inconsistent dimensions")
	ErrInvalidEmbeddingJob     = NewDomainError(ErrCodeValidation, "invalid embedding job")
	ErrMissingRequiredField    = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrSourceNotFound       = NewDomainError(ErrCodeNotFound, "source not found")
	ErrNoteNotFound         = NewDomainError(ErrCodeNotFound, "note not found")
	ErrInsightNotFound      = NewDomainError(ErrCodeNotFound, "insight not found")
	ErrEmbeddingJobNotFound = NewDomainError(ErrCodeNotFound, "embedding job not found")
)

// IsValidation reports whether err is (or wraps) a VALIDATION_ERROR coded
// DomainError. The embedding worker uses this to decide between failing a
// job permanently and scheduling a retry.
func IsValidation(err error) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == ErrCodeValidation
}
