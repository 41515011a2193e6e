package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewUploadError wraps a blob-store write failure.
func NewUploadError(err error) error {
	return &DomainError{
		Code:       "UPLOAD_FAILED",
		Message:    "attachment upload failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewStorageError wraps a database read or write failure, keeping the cause.
func NewStorageError(operation string, err error) error {
	return &DomainError{
		Code:       "STORAGE_ERROR",
		Message:    fmt.Sprintf("storage operation %s failed", operation),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewEmailSendError wraps a provider delivery failure, keeping the cause.
func NewEmailSendError(err error, details map[string]any) error {
	return &DomainError{
		Code:       "EMAIL_SEND_FAILED",
		Message:    "error enviando email",
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}

// NewConfigError signals a missing required credential or setting.
func NewConfigError(setting string) error {
	return &DomainError{
		Code:       "CONFIG_MISSING",
		Message:    fmt.Sprintf("required configuration %s is not set", setting),
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND"
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
