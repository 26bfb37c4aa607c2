// Package shared holds the JSON response helpers every handler uses, so
// error envelopes stay consistent across the API surface.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "facesign/pkg/domain-errors"
)

// ErrorResponse is the uniform JSON error envelope.
type ErrorResponse struct {
	Error        bool   `json:"error"`
	Code         string `json:"code"`
	ErrorMessage string `json:"errorMessage"`
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into its HTTP status and envelope.
// Internal errors map to a generic message so server details never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal error"
	if code != dErrors.CodeInternal && code != dErrors.CodeInvariantViolation {
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			message = domainErr.Message
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), ErrorResponse{
		Error:        true,
		Code:         string(code),
		ErrorMessage: message,
	})
}
