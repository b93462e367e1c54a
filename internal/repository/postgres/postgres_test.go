package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
	"github.com/sakif/todo-service/internal/repository"
	"github.com/sakif/todo-service/internal/repository/postgres"
)

// PostgresTestSuite runs the stores against a throwaway PostgreSQL container.
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		s.T().Skipf("docker not available: %v", err)
	}
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s.storage, err = postgres.New(s.ctx, s.connString, 4)
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest empties both tables so every test starts clean.
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "TRUNCATE tasks, users RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) createUser(username string) *model.User {
	u := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	require.NoError(s.T(), s.storage.Users().Create(s.ctx, u))
	return u
}

func (s *PostgresTestSuite) createTask(userID int64, title string) *model.Task {
	t := &model.Task{Title: title, Priority: model.PriorityMedium, Status: model.StatusTodo, UserID: userID}
	require.NoError(s.T(), s.storage.Tasks().Create(s.ctx, t))
	return t
}

func (s *PostgresTestSuite) TestPing() {
	assert.NoError(s.T(), s.storage.Ping(s.ctx))
}

func (s *PostgresTestSuite) TestUserCreateAndLookup() {
	created := s.createUser("alice")
	assert.NotZero(s.T(), created.ID)
	assert.False(s.T(), created.CreatedAt.IsZero())

	byEmail, err := s.storage.Users().GetByEmail(s.ctx, "alice@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, byEmail.ID)

	byName, err := s.storage.Users().GetByUsername(s.ctx, "alice")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.Email, byName.Email)

	exists, err := s.storage.Users().ExistsByEmail(s.ctx, "alice@example.com")
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *PostgresTestSuite) TestUserCreate_Duplicates() {
	s.createUser("alice")

	err := s.storage.Users().Create(s.ctx, &model.User{Username: "other", Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(s.T(), err, apperror.ErrDuplicateEmail)

	err = s.storage.Users().Create(s.ctx, &model.User{Username: "alice", Email: "new@example.com", PasswordHash: "x"})
	assert.ErrorIs(s.T(), err, apperror.ErrDuplicateUsername)
}

func (s *PostgresTestSuite) TestUserGetByID_NotFound() {
	_, err := s.storage.Users().GetByID(s.ctx, 999)
	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)
}

func (s *PostgresTestSuite) TestUserDelete_CascadesTasks() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	s.createTask(alice.ID, "a1")
	s.createTask(alice.ID, "a2")
	s.createTask(bob.ID, "b1")

	require.NoError(s.T(), s.storage.Users().Delete(s.ctx, alice.ID))

	tasks, err := s.storage.Tasks().ListByUser(s.ctx, alice.ID, repository.TaskFilter{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), tasks)

	bobTasks, err := s.storage.Tasks().ListByUser(s.ctx, bob.ID, repository.TaskFilter{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), bobTasks, 1)

	err = s.storage.Users().Delete(s.ctx, alice.ID)
	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)
}

func (s *PostgresTestSuite) TestTaskLifecycle() {
	owner := s.createUser("owner")
	task := s.createTask(owner.ID, "write tests")

	task.Status = model.StatusCompleted
	task.Priority = model.PriorityHigh
	require.NoError(s.T(), s.storage.Tasks().Update(s.ctx, task))

	got, err := s.storage.Tasks().GetByID(s.ctx, task.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), model.StatusCompleted, got.Status)
	assert.Equal(s.T(), model.PriorityHigh, got.Priority)

	completed := model.StatusCompleted
	filtered, err := s.storage.Tasks().ListByUser(s.ctx, owner.ID, repository.TaskFilter{Status: &completed})
	require.NoError(s.T(), err)
	assert.Len(s.T(), filtered, 1)

	require.NoError(s.T(), s.storage.Tasks().Delete(s.ctx, task.ID))
	_, err = s.storage.Tasks().GetByID(s.ctx, task.ID)
	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)

	err = s.storage.Tasks().Delete(s.ctx, task.ID)
	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)
}
