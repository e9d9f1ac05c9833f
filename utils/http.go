package utils

import (
	"encoding/json"
	"net/http"
)

// Error kinds returned in ErrorResponse.Error.
const (
	KindBadRequest             = "BAD_REQUEST"
	KindUnauthenticated        = "UNAUTHENTICATED"
	KindForbidden              = "FORBIDDEN"
	KindNotFound               = "NOT_FOUND"
	KindMethodNotAllowed       = "METHOD_NOT_ALLOWED"
	KindConflict               = "CONFLICT"
	KindInvalidStateTransition = "INVALID_STATE_TRANSITION"
	KindRateLimited            = "RATE_LIMITED"
	KindPayloadTooLarge        = "PAYLOAD_TOO_LARGE"
	KindBadGateway             = "BAD_GATEWAY"
	KindInternal               = "INTERNAL_ERROR"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListResponse wraps a page of results.
type ListResponse struct {
	Data   interface{} `json:"data"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// WriteCreated writes a 201 Created response with optional data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// WriteList writes a 200 response for a paginated list.
func WriteList(w http.ResponseWriter, data interface{}, limit, offset int) error {
	return WriteJSON(w, http.StatusOK, ListResponse{Data: data, Limit: limit, Offset: offset})
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteBadRequest writes a 400 Bad Request response with error details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   KindBadRequest,
		Message: message,
		Details: details,
	})
}

// WriteUnauthenticated writes a 401 response for a request with no verifiable identity
func WriteUnauthenticated(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Authentication required"
	}
	return WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   KindUnauthenticated,
		Message: message,
	})
}

// WriteForbidden writes a 403 Forbidden response
func WriteForbidden(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	return WriteJSON(w, http.StatusForbidden, ErrorResponse{
		Error:   KindForbidden,
		Message: message,
	})
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteJSON(w, http.StatusNotFound, ErrorResponse{
		Error:   KindNotFound,
		Message: message,
	})
}

// WriteConflict writes a 409 Conflict response
func WriteConflict(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteJSON(w, http.StatusConflict, ErrorResponse{
		Error:   KindConflict,
		Message: message,
		Details: details,
	})
}

// WriteInvalidStateTransition writes a 409 for a workflow action attempted from the wrong state
func WriteInvalidStateTransition(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteJSON(w, http.StatusConflict, ErrorResponse{
		Error:   KindInvalidStateTransition,
		Message: message,
		Details: details,
	})
}

// WriteTooManyRequests writes a 429 Too Many Requests response
func WriteTooManyRequests(w http.ResponseWriter, message string, details map[string]interface{}) error {
	if message == "" {
		message = "Rate limit exceeded"
	}
	return WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Error:   KindRateLimited,
		Message: message,
		Details: details,
	})
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   KindInternal,
		Message: message,
	})
}

// WriteError writes an error response based on the status code
func WriteError(w http.ResponseWriter, status int, message string, details map[string]interface{}) error {
	var kind string
	switch status {
	case http.StatusBadRequest:
		kind = KindBadRequest
	case http.StatusUnauthorized:
		kind = KindUnauthenticated
	case http.StatusForbidden:
		kind = KindForbidden
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusMethodNotAllowed:
		kind = KindMethodNotAllowed
	case http.StatusConflict:
		kind = KindConflict
	case http.StatusRequestEntityTooLarge:
		kind = KindPayloadTooLarge
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	case http.StatusBadGateway:
		kind = KindBadGateway
	default:
		kind = KindInternal
	}

	return WriteJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: message,
		Details: details,
	})
}

// DecodeJSON decodes a request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
