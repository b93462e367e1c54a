package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/todo-service/internal/apperror"
	"github.com/sakif/todo-service/internal/model"
)

func registerAlice(t *testing.T, svc *UserService) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), "alice", "a@x.com", "abc123")
	require.NoError(t, err)
	return user
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister(t *testing.T) {
	st := newFakeStore()
	svc := newTestUserService(t, st)

	user := registerAlice(t, svc)

	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, "abc123", user.PasswordHash, "password must be stored hashed")
	assert.NotEmpty(t, user.PasswordHash)
}

func TestRegister_DuplicateEmailLeavesFirstUserUnchanged(t *testing.T) {
	st := newFakeStore()
	svc := newTestUserService(t, st)
	first := registerAlice(t, svc)

	_, err := svc.Register(context.Background(), "alice2", "a@x.com", "zzz999")
	assert.ErrorIs(t, err, apperror.ErrDuplicateEmail)

	stored, err := svc.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, first.PasswordHash, stored.PasswordHash)
	assert.Len(t, st.users, 1)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	st := newFakeStore()
	svc := newTestUserService(t, st)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), "alice", "other@x.com", "abc123")
	assert.ErrorIs(t, err, apperror.ErrDuplicateUsername)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRegister_StoreConflictPassesThrough(t *testing.T) {
	st := newFakeStore()
	st.createUserErr = apperror.DuplicateEmail("a@x.com")
	svc := newTestUserService(t, st)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "abc123")
	assert.ErrorIs(t, err, apperror.ErrDuplicateEmail)
}

func TestRegister_StoreFailure(t *testing.T) {
	st := newFakeStore()
	st.createUserErr = errors.New("disk full")
	svc := newTestUserService(t, st)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	var appErr *apperror.AppError
	assert.False(t, errors.As(err, &appErr), "infrastructure errors are not domain errors")
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestUserService(t, newFakeStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "  ", "a@x.com", "abc123")
	assertValidation(t, err, "username")

	_, err = svc.Register(ctx, "alice", "not-an-email", "abc123")
	assertValidation(t, err, "email")

	_, err = svc.Register(ctx, "alice", "a@x.com", "short")
	assertValidation(t, err, "password")
}

// =========================================================================
// AUTHENTICATE / LOGIN TESTS
// =========================================================================

func TestAuthenticate(t *testing.T) {
	svc := newTestUserService(t, newFakeStore())
	alice := registerAlice(t, svc)
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{"username and right password", "alice", "abc123", nil},
		{"email and right password", "a@x.com", "abc123", nil},
		{"wrong password", "alice", "abc124", apperror.ErrInvalidCredential},
		{"unknown user", "bob", "abc123", apperror.ErrNotFound},
		{"unknown email", "b@x.com", "abc123", apperror.ErrNotFound},
		{"blank identifier", " ", "abc123", apperror.ErrValidation},
		{"blank password", "alice", "", apperror.ErrInvalidCredential},
		{"unknown user with blank password", "ghost", "", apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, tt.identifier, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, user.ID)
		})
	}
}

func TestLogin_IssuesToken(t *testing.T) {
	svc := newTestUserService(t, newFakeStore())
	alice := registerAlice(t, svc)

	result, err := svc.Login(context.Background(), "alice", "abc123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, result.User.ID)
	require.NotEmpty(t, result.Token)

	userID, err := svc.tokens.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, userID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestUserService(t, newFakeStore())
	registerAlice(t, svc)

	result, err := svc.Login(context.Background(), "alice", "nope123")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	assert.Nil(t, result)
}

// longPassword is 72 bytes, the most bcrypt reads.
var longPassword = "a1" + strings.Repeat("x", 70)

func registerLong(t *testing.T, svc *UserService) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), "long", "l@x.com", longPassword)
	require.NoError(t, err)
	return user
}

func TestAuthenticate_RejectsPasswordPastBcryptLimit(t *testing.T) {
	svc := newTestUserService(t, newFakeStore())
	long := registerLong(t, svc)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "long", longPassword)
	require.NoError(t, err)
	assert.Equal(t, long.ID, user.ID)

	user, err = svc.Authenticate(ctx, "long", longPassword+"WRONG-SUFFIX")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	assert.Nil(t, user)
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteUser_RemovesTasks(t *testing.T) {
	st := newFakeStore()
	users := newTestUserService(t, st)
	tasks := newTestTaskService(st, TaskOptions{})
	ctx := context.Background()

	registerAlice(t, users)
	identity := Identity{Username: "alice", Email: "a@x.com"}
	t1, err := tasks.Create(ctx, identity, TaskInput{Title: "one", Priority: "HIGH"})
	require.NoError(t, err)
	t2, err := tasks.Create(ctx, identity, TaskInput{Title: "two", Priority: "LOW"})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, "a@x.com", "abc123"))

	_, err = tasks.Get(ctx, t1.ID, Identity{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = tasks.Get(ctx, t2.ID, Identity{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = users.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteUser_UnknownEmail(t *testing.T) {
	svc := newTestUserService(t, newFakeStore())

	err := svc.Delete(context.Background(), "ghost@x.com", "abc123")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteUser_WrongPasswordKeepsAccount(t *testing.T) {
	st := newFakeStore()
	svc := newTestUserService(t, st)
	registerAlice(t, svc)

	err := svc.Delete(context.Background(), "a@x.com", "wrong1")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	assert.Len(t, st.users, 1)
}

func TestDeleteUser_PasswordPastBcryptLimitKeepsAccount(t *testing.T) {
	st := newFakeStore()
	svc := newTestUserService(t, st)
	registerLong(t, svc)

	err := svc.Delete(context.Background(), "l@x.com", longPassword+"different")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	assert.Len(t, st.users, 1)
}

func TestDeleteUser_StoreFailure(t *testing.T) {
	st := newFakeStore()
	svc := newTestUserService(t, st)
	registerAlice(t, svc)
	st.deleteUserErr = errors.New("connection reset")

	err := svc.Delete(context.Background(), "a@x.com", "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestLookups(t *testing.T) {
	svc := newTestUserService(t, newFakeStore())
	ctx := context.Background()
	alice := registerAlice(t, svc)
	_, err := svc.Register(ctx, "bob", "b@x.com", "bob123")
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := svc.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byID, err := svc.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = svc.FindByID(ctx, 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
