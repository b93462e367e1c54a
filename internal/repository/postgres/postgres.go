// Package postgres implements the repository interfaces on PostgreSQL through
// a pgx connection pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/repository"
	"github.com/sakif/todo-service/internal/repository/migrations"
)

var _ repository.Store = (*Storage)(nil)

const uniqueViolation = "23505"

// Storage owns the pool shared by the user and task stores.
type Storage struct {
	pool  *pgxpool.Pool
	sqlDB *sql.DB
	users *UserStore
	tasks *TaskStore
}

// New connects to PostgreSQL, verifies the connection and migrates the schema.
// maxConns <= 0 keeps the pgxpool default.
func New(ctx context.Context, connString string, maxConns int32) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing config: %w", err)
	}

	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	// goose speaks database/sql; stdlib wraps the same pool for it.
	sqlDB := stdlib.OpenDBFromPool(pool)
	if _, err := migrations.Up(ctx, sqlDB, migrations.Postgres); err != nil {
		sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	s := &Storage{pool: pool, sqlDB: sqlDB}
	s.users = &UserStore{pool: pool}
	s.tasks = &TaskStore{pool: pool}
	return s, nil
}

func (s *Storage) Users() repository.UserRepository { return s.users }

func (s *Storage) Tasks() repository.TaskRepository { return s.tasks }

// Ping checks the pool can still reach the server.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (s *Storage) Close() error {
	err := s.sqlDB.Close()
	s.pool.Close()
	return err
}

// userConflict maps a unique violation on users to the matching duplicate
// error, or returns nil.
func userConflict(err error, username, email string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case "users_email_key":
		return apperror.DuplicateEmail(email)
	case "users_username_key":
		return apperror.DuplicateUsername(username)
	default:
		return nil
	}
}
