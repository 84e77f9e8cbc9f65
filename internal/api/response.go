package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkstand-ai/inkstand/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

var domainStatusCodes = map[string]int{
	domain.ErrCodeValidation:       http.StatusBadRequest,
	domain.ErrCodeNotFound:         http.StatusNotFound,
	domain.ErrCodeAlreadyExists:    http.StatusConflict,
	domain.ErrCodeInvalidOperation: http.StatusBadRequest,
	domain.ErrCodeInternalError:    http.StatusInternalServerError,
}

// DomainErrorToHTTP maps domain errors, possibly wrapped, to HTTP status
// codes. Non-domain errors map to 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := domainStatusCodes[domainErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// HandleError writes an appropriate error response based on the error type
func HandleError(w http.ResponseWriter, err error) {
	Error(w, DomainErrorToHTTP(err), err.Error())
}
