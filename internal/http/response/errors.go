package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/festivo/festivo-api/internal/domain"
	"github.com/festivo/festivo-api/pkg/logger"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes clients are expected to branch on.
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeExpiredCode   = "CODE_EXPIRED"
	CodeInvalidCode   = "INVALID_CODE"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

// DomainError maps service-layer errors onto the wire. Anything unrecognized
// is a 500 with the detail kept out of the body.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "not found")
	case errors.Is(err, domain.ErrCodeExpired):
		WriteError(w, http.StatusBadRequest, "code has expired", CodeExpiredCode)
	case errors.Is(err, domain.ErrInvalidCode):
		WriteError(w, http.StatusBadRequest, "invalid code", CodeInvalidCode)
	case errors.Is(err, domain.ErrTooManyAttempts):
		RateLimit(w, "too many attempts, request a new code")
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, "forbidden")
	default:
		logger.Error("unhandled error", "error", err)
		InternalError(w, "internal error")
	}
}
