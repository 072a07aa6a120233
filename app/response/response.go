// Package response writes the JSON bodies shared by every route.
package response

import (
	"encoding/json"
	"net/http"
)

// Kind classifies a failed request. It travels in the "error" field.
type Kind string

const (
	BadRequest      Kind = "bad_request"
	NotFound        Kind = "not_found"
	TooManyRequests Kind = "too_many_requests"
	Internal        Kind = "internal_server_error"
)

// Status is the HTTP status answered for k.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case TooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Problem is the body of every non-2xx answer.
type Problem struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message"`
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fail answers with the status of k and a Problem carrying message.
func Fail(w http.ResponseWriter, k Kind, message string) {
	Write(w, k.Status(), Problem{Kind: k, Message: message})
}
