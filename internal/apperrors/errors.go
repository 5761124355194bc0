package apperrors

import "errors"

// Taxonomy sentinels. Every error a service returns wraps exactly one of these.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// Stable discriminators reported to clients.
const (
	CodeValidation    = "validation_error"
	CodeAuth          = "auth_error"
	CodeAuthorization = "authorization_error"
	CodeNotFound      = "not_found"
	CodeConflict      = "conflict"
	CodeInternal      = "internal_error"
)

// CustomError carries a taxonomy sentinel plus a human-readable message.
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
	cause   error
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// Cause returns the underlying failure for internal errors, if any.
func (e *CustomError) Cause() error {
	return e.cause
}

// WithDetails attaches structured context.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

func newError(sentinel error, code, message string) *CustomError {
	return &CustomError{Err: sentinel, Message: message, Code: code}
}

func NewValidationError(message string) *CustomError {
	return newError(ErrValidation, CodeValidation, message)
}

func NewAuthError(message string) *CustomError {
	return newError(ErrUnauthenticated, CodeAuth, message)
}

func NewForbiddenError(message string) *CustomError {
	return newError(ErrForbidden, CodeAuthorization, message)
}

func NewResourceNotFoundError(message string) *CustomError {
	return newError(ErrNotFound, CodeNotFound, message)
}

func NewConflictError(message string) *CustomError {
	return newError(ErrConflict, CodeConflict, message)
}

// NewInternalError wraps an unexpected failure, usually from the record store.
func NewInternalError(cause error, message string) *CustomError {
	e := newError(ErrInternal, CodeInternal, message)
	e.cause = cause
	return e
}

// Internal wraps err as an internal error unless it already belongs to the taxonomy.
func Internal(err error, message string) error {
	if err == nil {
		return nil
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return err
	}
	return NewInternalError(err, message)
}

// Code returns the stable discriminator for err.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnauthenticated):
		return CodeAuth
	case errors.Is(err, ErrForbidden):
		return CodeAuthorization
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// Is reports whether err matches target or any of errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
