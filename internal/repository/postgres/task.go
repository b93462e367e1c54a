package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/repository"
)

var _ repository.TaskRepository = (*TaskStore)(nil)

// TaskStore is the tasks table.
type TaskStore struct {
	pool *pgxpool.Pool
}

const taskColumns = `id, title, description, priority, status, user_id, created_at, updated_at`

func scanTask(row pgx.Row) (*model.Task, error) {
	t := &model.Task{}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func taskNotFound(id int64) error {
	return apperror.NotFound("task", "id "+strconv.FormatInt(id, 10))
}

func (s *TaskStore) Create(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (title, description, priority, status, user_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.UserID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: creating task: %w", err)
	}
	return nil
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	task, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, taskNotFound(id)
		}
		return nil, fmt.Errorf("postgres: getting task %d: %w", id, err)
	}
	return task, nil
}

// ListByUser returns the user's tasks in id order, optionally filtered by status.
func (s *TaskStore) ListByUser(ctx context.Context, userID int64, filter repository.TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != nil {
		query += ` AND status = $2`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing tasks of user %d: %w", userID, err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) Update(ctx context.Context, task *model.Task) error {
	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				priority = $3,
				status = $4,
				updated_at = NOW()
			WHERE id = $5
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.ID,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taskNotFound(task.ID)
		}
		return fmt.Errorf("postgres: updating task %d: %w", task.ID, err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return taskNotFound(id)
	}
	return nil
}
