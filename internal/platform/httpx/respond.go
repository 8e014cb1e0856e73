// Package httpx provides the JSON response envelope shared by the API
// handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard response body. Failures carry Error; list
// endpoints use ListEnvelope instead.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListEnvelope is the response body for paged list endpoints.
type ListEnvelope struct {
	Success         bool   `json:"success"`
	RecordsTotal    int64  `json:"recordsTotal"`
	RecordsFiltered int64  `json:"recordsFiltered"`
	Data            any    `json:"data"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK sends a success envelope with status 200.
func OK(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created sends a success envelope with status 201.
func Created(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Fail sends a failure envelope with the given status.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message, Error: message})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
