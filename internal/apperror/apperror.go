// Package apperror defines the error kinds the service layer reports.
//
// Every failure a caller can act on is an *AppError wrapping one of the
// sentinel errors below. Callers match kinds with errors.Is and read the
// human-readable Message (and optional Field) with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// The duplicate kinds wrap ErrConflict, so errors.Is(err, ErrConflict)
	// matches both of them as well.
	ErrDuplicateEmail    = fmt.Errorf("duplicate email: %w", ErrConflict)
	ErrDuplicateUsername = fmt.Errorf("duplicate username: %w", ErrConflict)

	ErrInvalidCredential = errors.New("invalid credential")
	ErrIdentityMismatch  = errors.New("identity mismatch")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateEmail reports a registration whose email is already stored.
func DuplicateEmail(email string) *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: fmt.Sprintf("email %s is already registered", email),
		Field:   "email",
	}
}

// DuplicateUsername reports a registration whose username is already taken.
func DuplicateUsername(username string) *AppError {
	return &AppError{
		Err:     ErrDuplicateUsername,
		Message: fmt.Sprintf("username %s is already taken", username),
		Field:   "username",
	}
}

// InvalidCredential is returned when a password does not match the stored hash.
// The message is the same for every caller so it leaks nothing about the account.
func InvalidCredential() *AppError {
	return &AppError{
		Err:     ErrInvalidCredential,
		Message: "invalid credentials",
	}
}

// IdentityMismatch is returned when a username/email pair does not resolve to
// one account, or when that account does not own the task being touched.
func IdentityMismatch(message string) *AppError {
	return &AppError{
		Err:     ErrIdentityMismatch,
		Message: message,
	}
}
