package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/auth"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================
//
// fakeStore is an in-memory stand-in for a database. fakeUserRepo and
// fakeTaskRepo are two views onto it, so deleting a user can drop that
// user's tasks the way the real stores do.
//
// Set one of the *Err fields to simulate a database failure.

type fakeStore struct {
	users      map[int64]*model.User
	tasks      map[int64]*model.Task
	nextUserID int64
	nextTaskID int64

	createUserErr error
	deleteUserErr error
	listTasksErr  error
	updateTaskErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[int64]*model.User),
		tasks: make(map[int64]*model.Task),
	}
}

type fakeUserRepo struct{ st *fakeStore }

type fakeTaskRepo struct{ st *fakeStore }

var (
	_ repository.UserRepository = fakeUserRepo{}
	_ repository.TaskRepository = fakeTaskRepo{}
)

func (f fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.st.createUserErr != nil {
		return f.st.createUserErr
	}
	for _, u := range f.st.users {
		if u.Email == user.Email {
			return apperror.DuplicateEmail(user.Email)
		}
		if u.Username == user.Username {
			return apperror.DuplicateUsername(user.Username)
		}
	}
	f.st.nextUserID++
	user.ID = f.st.nextUserID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.st.users[user.ID] = &stored
	return nil
}

func (f fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.st.users[id]
	if !ok {
		return nil, apperror.NotFound("user", "id "+strconv.FormatInt(id, 10))
	}
	out := *u
	return &out, nil
}

func (f fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.st.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", "email "+email)
}

func (f fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.st.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", "username "+username)
}

func (f fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.st.users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b model.User) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f fakeUserRepo) Delete(_ context.Context, id int64) error {
	if f.st.deleteUserErr != nil {
		return f.st.deleteUserErr
	}
	if _, ok := f.st.users[id]; !ok {
		return apperror.NotFound("user", "id "+strconv.FormatInt(id, 10))
	}
	for tid, t := range f.st.tasks {
		if t.UserID == id {
			delete(f.st.tasks, tid)
		}
	}
	delete(f.st.users, id)
	return nil
}

func (f fakeTaskRepo) Create(_ context.Context, task *model.Task) error {
	f.st.nextTaskID++
	task.ID = f.st.nextTaskID
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	stored := *task
	f.st.tasks[task.ID] = &stored
	return nil
}

func (f fakeTaskRepo) GetByID(_ context.Context, id int64) (*model.Task, error) {
	t, ok := f.st.tasks[id]
	if !ok {
		return nil, apperror.NotFound("task", "id "+strconv.FormatInt(id, 10))
	}
	out := *t
	return &out, nil
}

func (f fakeTaskRepo) ListByUser(_ context.Context, userID int64, filter repository.TaskFilter) ([]model.Task, error) {
	if f.st.listTasksErr != nil {
		return nil, f.st.listTasksErr
	}
	out := []model.Task{}
	for _, t := range f.st.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b model.Task) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f fakeTaskRepo) Update(_ context.Context, task *model.Task) error {
	if f.st.updateTaskErr != nil {
		return f.st.updateTaskErr
	}
	if _, ok := f.st.tasks[task.ID]; !ok {
		return apperror.NotFound("task", "id "+strconv.FormatInt(task.ID, 10))
	}
	task.UpdatedAt = time.Now()
	stored := *task
	f.st.tasks[task.ID] = &stored
	return nil
}

func (f fakeTaskRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.st.tasks[id]; !ok {
		return apperror.NotFound("task", "id "+strconv.FormatInt(id, 10))
	}
	delete(f.st.tasks, id)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestUserService(t *testing.T, st *fakeStore) *UserService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewUserService(fakeUserRepo{st}, auth.NewPasswordService(4), tokens, newTestLogger())
}

func newTestTaskService(st *fakeStore, opts TaskOptions) *TaskService {
	return NewTaskService(fakeTaskRepo{st}, fakeUserRepo{st}, opts, newTestLogger())
}
