// Package apperror defines the error kinds the API surfaces to clients.
// Each kind maps to exactly one HTTP status so handlers can translate errors
// at the boundary without knowing where they came from.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType int

const (
	InternalError ErrorType = iota
	ValidationError
	AuthError
	NotFoundError
	ConflictError
)

func (t ErrorType) String() string {
	switch t {
	case ValidationError:
		return "validation_error"
	case AuthError:
		return "unauthorized"
	case NotFoundError:
		return "not_found"
	case ConflictError:
		return "conflict"
	default:
		return "internal_error"
	}
}

type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to its HTTP status.
// Conflicts on unique fields are reported as 400, same as other invalid input.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError, ConflictError:
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ClientCode is the machine-readable code placed in the error envelope.
func (e *AppError) ClientCode() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Type.String()
}

func New(errType ErrorType, code, message string, underlying error) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Err:     underlying,
	}
}

func NewValidationError(message string, underlying error) *AppError {
	return New(ValidationError, "", message, underlying)
}

func NewAuthError(message string, underlying error) *AppError {
	return New(AuthError, "", message, underlying)
}

func NewNotFoundError(message string, underlying error) *AppError {
	return New(NotFoundError, "", message, underlying)
}

func NewConflictError(code, message string, underlying error) *AppError {
	return New(ConflictError, code, message, underlying)
}

func NewInternalError(message string, underlying error) *AppError {
	return New(InternalError, "", message, underlying)
}

// FromError finds the first AppError in err's chain.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}

	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given kind.
func Is(err error, errType ErrorType) bool {
	ae, ok := FromError(err)
	return ok && ae.Type == errType
}
