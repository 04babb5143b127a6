// Package api holds the JSON response and request validation helpers shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/mytheresa/storefront/app/log"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "err", err)
	}
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// WriteValidation answers 400 with one entry per rejected field.
func WriteValidation(w http.ResponseWriter, errs ValidationErrors) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "Invalid data",
		Errors: errs,
	})
}

// WriteInternal logs err and answers 500 with msg, keeping driver details out of the body.
func WriteInternal(w http.ResponseWriter, msg string, err error) {
	log.Error(msg, "err", err)
	WriteError(w, http.StatusInternalServerError, msg)
}
