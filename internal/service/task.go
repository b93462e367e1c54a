package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/repository"
)

// IdentityMode selects how strictly a caller's Identity is checked.
type IdentityMode string

const (
	// IdentityUsernameEmail requires the username to exist and the supplied
	// email to equal the one stored for it.
	IdentityUsernameEmail IdentityMode = "username_email"
	// IdentityUsername only requires the username to exist.
	IdentityUsername IdentityMode = "username"
)

// Valid reports whether m is a known mode.
func (m IdentityMode) Valid() bool {
	return m == IdentityUsernameEmail || m == IdentityUsername
}

// Identity is the username/email pair a caller presents for task operations.
type Identity struct {
	Username string
	Email    string
}

// IsZero reports whether no part of the identity was supplied.
func (id Identity) IsZero() bool {
	return strings.TrimSpace(id.Username) == "" && strings.TrimSpace(id.Email) == ""
}

// TaskInput carries the caller-controlled task fields. Priority and Status
// are raw strings so validation can report which one was wrong.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	Status      string
}

// TaskOptions configures a TaskService.
type TaskOptions struct {
	IdentityCheck IdentityMode

	// VerifyOwnerOnMutation makes Get, Update and Delete require an identity
	// that owns the task. When false, an identity that is supplied is still
	// checked, but a bare task id is accepted.
	VerifyOwnerOnMutation bool
}

// TaskService holds the task rules: identity checks, forced TODO on create,
// priority ordering on list, and whole-record updates.
type TaskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	opts   TaskOptions
	logger *slog.Logger
}

// NewTaskService wires a TaskService. An unset IdentityCheck defaults to
// IdentityUsernameEmail.
func NewTaskService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	opts TaskOptions,
	logger *slog.Logger,
) *TaskService {
	if !opts.IdentityCheck.Valid() {
		opts.IdentityCheck = IdentityUsernameEmail
	}
	return &TaskService{
		tasks:  tasks,
		users:  users,
		opts:   opts,
		logger: logger,
	}
}

// Create stores a new task owned by the identified user. Status in the input
// is ignored: every task starts as TODO.
func (s *TaskService) Create(ctx context.Context, identity Identity, input TaskInput) (*model.Task, error) {
	owner, err := s.resolveIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	title, err := ValidateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	description, err := ValidateDescription(input.Description)
	if err != nil {
		return nil, err
	}
	priority, err := ValidatePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      model.StatusTodo,
		UserID:      owner.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.Int64("userID", owner.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/task: creating task: %w", err)
	}

	s.logger.Info("task created",
		slog.Int64("taskID", task.ID),
		slog.Int64("userID", owner.ID),
		slog.String("priority", string(task.Priority)),
	)
	return task, nil
}

// ListForUser returns the identified user's tasks, HIGH priority first.
// A non-nil status narrows the result. Equal priorities keep ascending id order.
func (s *TaskService) ListForUser(ctx context.Context, identity Identity, status *model.Status) ([]model.Task, error) {
	owner, err := s.resolveIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByUser(ctx, owner.ID, repository.TaskFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("service/task: listing tasks of user %d: %w", owner.ID, err)
	}

	SortByPriority(tasks)
	return tasks, nil
}

// Get returns one task, subject to the ownership rule.
func (s *TaskService) Get(ctx context.Context, taskID int64, identity Identity) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, task, identity); err != nil {
		return nil, err
	}
	return task, nil
}

// Update replaces title, description, priority and status of a task. Every
// field is overwritten, so an empty description clears the stored one.
// Ownership is checked before the new fields are validated.
func (s *TaskService) Update(ctx context.Context, taskID int64, input TaskInput, identity Identity) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, task, identity); err != nil {
		return nil, err
	}

	title, err := ValidateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	description, err := ValidateDescription(input.Description)
	if err != nil {
		return nil, err
	}
	priority, err := ValidatePriority(input.Priority)
	if err != nil {
		return nil, err
	}
	status, err := ValidateStatus(input.Status)
	if err != nil {
		return nil, err
	}

	task.Title = title
	task.Description = description
	task.Priority = priority
	task.Status = status

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update task",
			slog.Int64("taskID", taskID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/task: updating task %d: %w", taskID, err)
	}

	s.logger.Info("task updated",
		slog.Int64("taskID", task.ID),
		slog.String("status", string(task.Status)),
	)
	return task, nil
}

// Delete removes a task, subject to the ownership rule.
func (s *TaskService) Delete(ctx context.Context, taskID int64, identity Identity) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.checkOwner(ctx, task, identity); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete task",
			slog.Int64("taskID", taskID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/task: deleting task %d: %w", taskID, err)
	}

	s.logger.Info("task deleted", slog.Int64("taskID", taskID))
	return nil
}

// SortByPriority orders tasks HIGH → MEDIUM → LOW in place. The sort is
// stable, so tasks of equal priority keep their incoming order.
func SortByPriority(tasks []model.Task) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		return b.Priority.Rank() - a.Priority.Rank()
	})
}

// resolveIdentity turns a username/email pair into the one account it names.
func (s *TaskService) resolveIdentity(ctx context.Context, identity Identity) (*model.User, error) {
	username := strings.TrimSpace(identity.Username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	email := strings.TrimSpace(identity.Email)
	if s.opts.IdentityCheck == IdentityUsernameEmail && email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.IdentityMismatch("no account matches username " + username)
		}
		return nil, fmt.Errorf("service/task: resolving identity: %w", err)
	}

	if s.opts.IdentityCheck == IdentityUsernameEmail && user.Email != email {
		s.logger.Warn("identity mismatch",
			slog.String("username", username),
		)
		return nil, apperror.IdentityMismatch("username and email do not belong to the same account")
	}
	return user, nil
}

// checkOwner applies the ownership rule to an existing task.
func (s *TaskService) checkOwner(ctx context.Context, task *model.Task, identity Identity) error {
	if identity.IsZero() {
		if s.opts.VerifyOwnerOnMutation {
			return apperror.IdentityMismatch("username and email are required to modify a task")
		}
		return nil
	}

	owner, err := s.resolveIdentity(ctx, identity)
	if err != nil {
		return err
	}
	if owner.ID != task.UserID {
		s.logger.Warn("task ownership mismatch",
			slog.Int64("taskID", task.ID),
			slog.Int64("userID", owner.ID),
		)
		return apperror.IdentityMismatch("task " + strconv.FormatInt(task.ID, 10) + " belongs to another account")
	}
	return nil
}
