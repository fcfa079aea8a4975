// Package response writes the service's JSON envelopes. Success payloads go
// out as-is; errors use a structured {error, code} body so clients can branch
// on the code without parsing messages.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/festivo/festivo-api/pkg/logger"
)

func JSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, payload any)      { JSON(w, http.StatusOK, payload) }
func Created(w http.ResponseWriter, payload any) { JSON(w, http.StatusCreated, payload) }
func NoContent(w http.ResponseWriter)            { w.WriteHeader(http.StatusNoContent) }
