// Package service contains the business rules of the to-do backend.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, checks identity, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services take repository interfaces, not concrete stores, so the same code
// runs on SQLite, PostgreSQL, or the in-memory fakes in the tests.
// They return *apperror.AppError for every failure a caller can act on and
// know nothing about HTTP status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/auth"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/repository"
)

// UserService handles registration, authentication and account deletion.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewUserService wires a UserService. tokens may be nil, in which case Login
// returns the user without a session token.
func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// LoginResult bundles the authenticated user with the issued session token so
// the handler can set the cookie and respond in one step.
type LoginResult struct {
	User  *model.User
	Token string
}

// Register validates the input, rejects taken emails and usernames, hashes
// the password and stores the new account.
//
// The Exists checks give the common case a clean error. Two concurrent
// registrations can still race past them; the unique indexes then reject the
// loser with the same duplicate errors.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username, err := ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	email, err = ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/user: checking email: %w", err)
	}
	if taken {
		return nil, apperror.DuplicateEmail(email)
	}

	taken, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/user: checking username: %w", err)
	}
	if taken {
		return nil, apperror.DuplicateUsername(username)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/user: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/user: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Authenticate checks a password against the account named by identifier,
// which may be a username or an email. Email-shaped identifiers are looked up
// by email first and fall back to username.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperror.ValidationFailed("username", "username or email is required")
	}
	user, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := s.checkPassword(user, password); err != nil {
		s.logger.Warn("login rejected", slog.Int64("userID", user.ID))
		return nil, err
	}
	return user, nil
}

// Login authenticates and, when a TokenService is configured, issues a
// session token for the user.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{User: user}
	if s.tokens != nil {
		token, err := s.tokens.Generate(user.ID)
		if err != nil {
			return nil, fmt.Errorf("service/user: generating token for user %d: %w", user.ID, err)
		}
		result.Token = token
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return result, nil
}

// Delete removes the account registered under email after re-verifying the
// password. The user's tasks go with it in the same transaction.
func (s *UserService) Delete(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.checkPassword(user, password); err != nil {
		s.logger.Warn("account deletion rejected", slog.Int64("userID", user.ID))
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete user",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/user: deleting user %d: %w", user.ID, err)
	}

	s.logger.Info("user deleted", slog.Int64("userID", user.ID))
	return nil
}

// ListAll returns every registered user.
func (s *UserService) ListAll(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}
	return users, nil
}

// FindByEmail returns the user with this email or a NotFound error.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetByEmail(ctx, strings.TrimSpace(email))
}

// FindByUsername returns the user with this username or a NotFound error.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, strings.TrimSpace(username))
}

// FindByID returns the user with this id or a NotFound error.
func (s *UserService) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) lookup(ctx context.Context, identifier string) (*model.User, error) {
	if strings.Contains(identifier, "@") {
		user, err := s.users.GetByEmail(ctx, identifier)
		if err == nil || !errors.Is(err, apperror.ErrNotFound) {
			return user, err
		}
	}
	return s.users.GetByUsername(ctx, identifier)
}

func (s *UserService) checkPassword(user *model.User, password string) error {
	err := s.passwords.Verify(user.PasswordHash, password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrPasswordMismatch):
		return apperror.InvalidCredential()
	default:
		return fmt.Errorf("service/user: verifying password: %w", err)
	}
}
