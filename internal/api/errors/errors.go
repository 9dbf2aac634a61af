package errors

import (
	"errors"
	"net/http"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
	KindPayloadTooLarge    ErrorKind = "payload_too_large"
	KindTranscription      ErrorKind = "transcription_failed"
)

// APIError represents a structured API error response. Detail is the human
// readable message every client displays.
type APIError struct {
	Detail    string            `json:"detail"`
	Kind      ErrorKind         `json:"kind"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Detail
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(detail string, fields map[string]string) *APIError {
	return &APIError{
		Kind:   KindValidation,
		Detail: detail,
		Fields: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(detail string) *APIError {
	return &APIError{
		Kind:   KindNotFound,
		Detail: detail,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(detail string) *APIError {
	return &APIError{
		Kind:   KindUnauthorized,
		Detail: detail,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(detail string) *APIError {
	return &APIError{
		Kind:   KindInternal,
		Detail: detail,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(detail string) *APIError {
	return &APIError{
		Kind:   KindBadRequest,
		Detail: detail,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(detail string) *APIError {
	return &APIError{
		Kind:   KindServiceUnavailable,
		Detail: detail,
	}
}

// NewPayloadTooLargeError creates an error for uploads over the size limit
func NewPayloadTooLargeError(detail string) *APIError {
	return &APIError{
		Kind:   KindPayloadTooLarge,
		Detail: detail,
	}
}

// NewTranscriptionFailedError reports an engine failure. The detail carries
// the engine's message verbatim after a fixed prefix.
func NewTranscriptionFailedError(err error) *APIError {
	return &APIError{
		Kind:   KindTranscription,
		Detail: "Transcription failed: " + err.Error(),
	}
}

// AsAPIError returns err as an *APIError if it is one, unwrapping as needed
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
