package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound               ErrorType = "not_found"
	ErrorTypeValidation             ErrorType = "validation"
	ErrorTypeUnauthenticated        ErrorType = "unauthenticated"
	ErrorTypeForbidden              ErrorType = "forbidden"
	ErrorTypeRateLimit              ErrorType = "rate_limit"
	ErrorTypePayloadTooLarge        ErrorType = "payload_too_large"
	ErrorTypeConflict               ErrorType = "conflict"
	ErrorTypeInvalidStateTransition ErrorType = "invalid_state_transition"
	ErrorTypeResolutionFailure      ErrorType = "resolution_failure"
	ErrorTypeInternal               ErrorType = "internal"
	ErrorTypeExternal               ErrorType = "external"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail returns a copy of e carrying key=value in its details.
// The sentinels below are shared, so they are never mutated in place.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Type: e.Type, Message: e.Message, Err: e.Err, Details: details}
}

// Wrap returns a copy of e with err as its cause.
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{Type: e.Type, Message: e.Message, Err: err, Details: e.Details}
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

var (
	ErrCampaignNotFound = NewDomainError(ErrorTypeNotFound, "campaign not found", nil)
	ErrContentNotFound  = NewDomainError(ErrorTypeNotFound, "content not found", nil)
	ErrUserNotFound     = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrMemberNotFound   = NewDomainError(ErrorTypeNotFound, "membership not found", nil)
	ErrFeedbackNotFound = NewDomainError(ErrorTypeNotFound, "feedback not found", nil)
	ErrAssetNotFound    = NewDomainError(ErrorTypeNotFound, "asset not found", nil)

	ErrInvalidInput       = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrCampaignIDRequired = NewDomainError(ErrorTypeValidation, "campaign id is required", nil)
	ErrInvalidRole        = NewDomainError(ErrorTypeValidation, "invalid role", nil)
	ErrInvalidSchedule    = NewDomainError(ErrorTypeValidation, "scheduled time must be in the future", nil)

	ErrUnauthenticated = NewDomainError(ErrorTypeUnauthenticated, "authentication required", nil)
	ErrInvalidToken    = NewDomainError(ErrorTypeUnauthenticated, "invalid authentication token", nil)

	ErrForbidden         = NewDomainError(ErrorTypeForbidden, "You do not have permission to perform this action", nil)
	ErrAdminRoleRequired = NewDomainError(ErrorTypeForbidden, "only campaign admins can grant or revoke the admin role", nil)

	ErrRateLimitExceeded = NewDomainError(ErrorTypeRateLimit, "rate limit exceeded", nil)

	ErrAssetTooLarge = NewDomainError(ErrorTypePayloadTooLarge, "asset exceeds maximum size", nil)

	ErrDuplicateMember    = NewDomainError(ErrorTypeConflict, "user already holds this role in the campaign", nil)
	ErrContentNotEditable = NewDomainError(ErrorTypeConflict, "content can only be edited while in draft", nil)
	ErrLastAdmin          = NewDomainError(ErrorTypeConflict, "a campaign must keep at least one admin", nil)

	ErrInvalidStateTransition = NewDomainError(ErrorTypeInvalidStateTransition, "content is not in the required state for this transition", nil)

	ErrResolutionFailure = NewDomainError(ErrorTypeResolutionFailure, "failed to resolve roles", nil)

	ErrInternal          = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError     = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)
	ErrStorageFailed     = NewDomainError(ErrorTypeInternal, "storage operation failed", nil)

	ErrSentimentUnavailable = NewDomainError(ErrorTypeExternal, "sentiment provider unavailable", nil)
	ErrYouTubeUnavailable   = NewDomainError(ErrorTypeExternal, "youtube api unavailable", nil)
)

func hasType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool { return hasType(err, ErrorTypeNotFound) }

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return hasType(err, ErrorTypeValidation) }

// IsUnauthenticatedError checks if an error means no verifiable identity
func IsUnauthenticatedError(err error) bool { return hasType(err, ErrorTypeUnauthenticated) }

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool { return hasType(err, ErrorTypeForbidden) }

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool { return hasType(err, ErrorTypeRateLimit) }

// IsPayloadTooLargeError checks if an error is an oversized upload
func IsPayloadTooLargeError(err error) bool { return hasType(err, ErrorTypePayloadTooLarge) }

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool { return hasType(err, ErrorTypeConflict) }

// IsInvalidStateTransitionError checks if a workflow transition was attempted from the wrong state
func IsInvalidStateTransitionError(err error) bool {
	return hasType(err, ErrorTypeInvalidStateTransition)
}

// IsResolutionFailure checks if role resolution failed on data access
func IsResolutionFailure(err error) bool { return hasType(err, ErrorTypeResolutionFailure) }

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool { return hasType(err, ErrorTypeInternal) }

// IsExternalError checks if an error came from an upstream API
func IsExternalError(err error) bool { return hasType(err, ErrorTypeExternal) }

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// GetErrorMessage returns the public message of a domain error.
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapExternal wraps an error as an external provider error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}
