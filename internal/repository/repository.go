// Package repository declares the storage contracts the services depend on.
//
// Services only ever see these interfaces. The sqlite and postgres packages
// provide the concrete implementations, and server.New picks one from config.
package repository

import (
	"context"

	"github.com/sakif/todo-service/internal/model"
)

// TaskFilter narrows ListByUser. A nil Status means "every status".
type TaskFilter struct {
	Status *model.Status
}

// UserRepository persists user accounts.
//
// Lookups return an apperror.ErrNotFound error when nothing matches.
// Create reports unique violations as apperror.ErrDuplicateEmail or
// apperror.ErrDuplicateUsername.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]model.User, error)

	// Delete removes the user's tasks and then the user row in one
	// transaction. Either both happen or neither does.
	Delete(ctx context.Context, id int64) error
}

// TaskRepository persists tasks. ListByUser returns rows in ascending id order.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	ListByUser(ctx context.Context, userID int64, filter TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id int64) error
}

// Store is a storage backend: both repositories plus its lifecycle.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	Ping(ctx context.Context) error
	Close() error
}
