package api

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope for structured error responses.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable kind and a human message.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error kinds. Unknown classification is a value on success responses,
// never an error.
const (
	ErrKindInvalidArgument = "invalid_argument"
	ErrKindDeviceNotFound  = "device_not_found"
	ErrKindPermission      = "permission_error"
	ErrKindInternal        = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorBody{
		Error: ErrorDetail{
			Kind:    kind,
			Message: message,
		},
	})
}

// writeInvalidArgument writes a 400 error response.
func writeInvalidArgument(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrKindInvalidArgument, message)
}

// writeDeviceNotFound writes a 404 error response.
func writeDeviceNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrKindDeviceNotFound, message)
}

// writePermissionError writes a 502 error response. Permission prompts
// cross to the host agent; a failed prompt is an upstream failure.
func writePermissionError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadGateway, ErrKindPermission, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrKindInternal, message)
}
