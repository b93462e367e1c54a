package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/repository"
)

// compile-time check that *TaskDB implements repository.TaskRepository
var _ repository.TaskRepository = (*TaskDB)(nil)

// TaskDB is the tasks table.
type TaskDB struct {
	db *DB
}

const taskColumns = `id, title, description, priority, status, user_id, created_at, updated_at`

func scanTask(row rowScanner) (*model.Task, error) {
	var t model.Task
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func taskNotFound(id int64) error {
	return apperror.NotFound("task", "id "+strconv.FormatInt(id, 10))
}

// Create inserts a task. The caller has already set UserID, Priority and Status.
func (t *TaskDB) Create(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	res, err := t.db.conn.ExecContext(ctx,
		`INSERT INTO tasks (title, description, priority, status, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new task id: %w", err)
	}
	task.ID = id
	return nil
}

// GetByID retrieves a single task.
func (t *TaskDB) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	row := t.db.conn.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, taskNotFound(id)
		}
		return nil, fmt.Errorf("sqlite: getting task %d: %w", id, err)
	}
	return task, nil
}

// ListByUser returns the user's tasks in ascending id order, optionally
// narrowed to one status. Sorting by priority is the service's job.
func (t *TaskDB) ListByUser(ctx context.Context, userID int64, filter repository.TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY id`

	rows, err := t.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks of user %d: %w", userID, err)
	}
	defer rows.Close()

	// Empty slice rather than nil so the JSON body is [] and not null.
	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating task rows: %w", err)
	}
	return tasks, nil
}

// Update overwrites the mutable fields of a task. user_id and created_at
// are never touched.
func (t *TaskDB) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()

	res, err := t.db.conn.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %d: %w", task.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return taskNotFound(task.ID)
	}
	return nil
}

// Delete removes a task by id.
func (t *TaskDB) Delete(ctx context.Context, id int64) error {
	res, err := t.db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return taskNotFound(id)
	}
	return nil
}
