package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/todo-service/internal/apperror"
)

// userConflict maps a UNIQUE violation on the users table to the matching
// duplicate error. It returns nil for any other error.
//
// SQLite reports the failing column in the message, e.g.
// "UNIQUE constraint failed: users.email".
func userConflict(err error, username, email string) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return nil
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return apperror.DuplicateEmail(email)
	case strings.Contains(msg, "users.username"):
		return apperror.DuplicateUsername(username)
	default:
		return nil
	}
}
