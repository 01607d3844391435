package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the service.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeEmailInUse         = "EMAIL_IN_USE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeMissingFile        = "MISSING_FILE"
	CodeUnsupportedImage   = "UNSUPPORTED_IMAGE"
	CodeMailDelivery       = "MAIL_DELIVERY_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
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
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewEmailInUse(email string) error {
	return NewDomainError(CodeEmailInUse, "email in use", http.StatusConflict, map[string]any{"email": email})
}

// NewInvalidCredentials covers both unknown email and wrong password so the
// caller cannot distinguish the two cases.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "email or password is wrong", http.StatusUnauthorized, nil)
}

func NewEmailNotVerified() error {
	return NewDomainError(CodeEmailNotVerified, "email is not verified", http.StatusUnauthorized, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewAlreadyVerified() error {
	return NewDomainError(CodeAlreadyVerified, "verification has already been passed", http.StatusBadRequest, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewMissingFile() error {
	return NewDomainError(CodeMissingFile, "no file attached", http.StatusBadRequest, nil)
}

func NewUnsupportedImage(err error) error {
	return &DomainError{
		Code:       CodeUnsupportedImage,
		Message:    "unsupported image format",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewMailDeliveryError reports a failed outbound message. Registration keeps
// the created account when this is returned.
func NewMailDeliveryError(err error) error {
	return &DomainError{
		Code:       CodeMailDelivery,
		Message:    "failed to deliver email",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
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
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
