package apperrors

import (
	"errors"
	"net/http"
	"time"
)

// StatusCode maps err onto the HTTP status reported at the boundary.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	Timestamp string      `json:"timestamp"`
}

const internalMessage = "Internal server error"

// NewErrorResponse builds the client-facing body for err. Internal errors never
// leak their message.
func NewErrorResponse(err error) ErrorResponse {
	detail := ErrorDetail{Code: Code(err), Message: err.Error()}
	var ce *CustomError
	if errors.As(err, &ce) {
		detail.Details = ce.Details
	}
	if detail.Code == CodeInternal {
		detail.Message = internalMessage
		detail.Details = nil
	}
	return ErrorResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
