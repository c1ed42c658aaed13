package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// FormField is the key used for errors that belong to the whole form rather than one field.
const FormField = "__all__"

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Status  int                 `json:"status"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Err     error               `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so callers can test against the predefined values.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials  = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "please enter a correct email and password")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrConstraintViolation = New("CONSTRAINT_VIOLATION", http.StatusConflict, "constraint violation")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	clone.Fields = copyFields(err.Fields)
	return &clone
}

// Validation builds a VALIDATION_ERROR carrying per field messages.
func Validation(fields map[string][]string) *Error {
	clone := Clone(ErrValidation, "")
	clone.Fields = copyFields(fields)
	return clone
}

// FieldError is a shorthand for a validation error with a single message on one field.
func FieldError(field, message string) *Error {
	return Validation(map[string][]string{field: {message}})
}

// AsValidation converts a constraint violation into a validation error on the given field.
// Any other error is returned unchanged.
func AsValidation(err error, field, message string) error {
	appErr := FromError(err)
	if appErr == nil || appErr.Code != ErrConstraintViolation.Code {
		return err
	}
	converted := FieldError(field, message)
	converted.Err = err
	return converted
}

func copyFields(fields map[string][]string) map[string][]string {
	if fields == nil {
		return nil
	}
	out := make(map[string][]string, len(fields))
	for k, v := range fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}
