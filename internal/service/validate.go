package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/auth"
	"github.com/sakif/todo-service/internal/model"
)

// Validation limits.
const (
	MaxUsernameLength    = 50
	MaxEmailLength       = 254
	MinPasswordLength    = 6
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// ValidateUsername trims s and checks it is non-blank and not too long.
// It returns the trimmed value.
func ValidateUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed("username", "username is required")
	}
	if utf8.RuneCountInString(s) > MaxUsernameLength {
		return "", apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	return s, nil
}

// ValidateEmail accepts a single bare address such as "a@x.com".
// Display-name forms like "Alice <a@x.com>" are rejected.
func ValidateEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	if len(s) > MaxEmailLength {
		return "", apperror.ValidationFailed("email",
			fmt.Sprintf("email must be %d characters or less", MaxEmailLength))
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return "", apperror.ValidationFailed("email", "email must be a valid address")
	}
	return s, nil
}

// ValidatePassword requires at least one letter and one digit, and a length
// bcrypt can hash without truncation. The password is not trimmed.
func ValidatePassword(s string) error {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(s) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}

	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return apperror.ValidationFailed("password", "password must contain a letter and a digit")
	}
	return nil
}

// ValidateTitle trims and length-checks a task title.
func ValidateTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(s) > MaxTitleLength {
		return "", apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return s, nil
}

// ValidateDescription trims a description. Empty is allowed.
func ValidateDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return "", apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	return s, nil
}

// ValidatePriority normalises s ("high" → HIGH) or fails.
func ValidatePriority(s string) (model.Priority, error) {
	p, ok := model.ParsePriority(s)
	if !ok {
		return "", apperror.ValidationFailed("priority", "priority must be one of HIGH, MEDIUM, LOW")
	}
	return p, nil
}

// ValidateStatus normalises s ("in_progress" → IN_PROGRESS) or fails.
func ValidateStatus(s string) (model.Status, error) {
	st, ok := model.ParseStatus(s)
	if !ok {
		return "", apperror.ValidationFailed("status", "status must be one of TODO, IN_PROGRESS, COMPLETED")
	}
	return st, nil
}
