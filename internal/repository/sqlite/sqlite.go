// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain. It registers itself with database/sql under the driver name
// "sqlite" through the blank import below.
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sakif/todo-service/internal/repository"
	"github.com/sakif/todo-service/internal/repository/migrations"
)

// compile-time check that *DB is a complete storage backend
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and hands out the user and task repositories.
type DB struct {
	conn  *sql.DB
	users *UserDB
	tasks *TaskDB
}

// New opens the SQLite database at dbPath and applies the embedded migrations.
//
// dbPath examples:
//   - "data/todo.db" → file-based database (persistent)
//   - ":memory:"     → in-memory database (tests; lost on close)
//
// SINGLE CONNECTION:
// The pool is capped at one connection. PRAGMA settings are per connection and
// every ":memory:" connection is its own empty database, so a single long-lived
// connection keeps foreign keys on and the schema visible. SQLite serialises
// writers anyway.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The tasks.user_id reference
	// and its ON DELETE CASCADE depend on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	if _, err := migrations.Up(context.Background(), conn, migrations.SQLite); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	db := &DB{conn: conn}
	db.users = &UserDB{db: db}
	db.tasks = &TaskDB{db: db}
	return db, nil
}

// Users returns the user repository backed by this database.
func (db *DB) Users() repository.UserRepository { return db.users }

// Tasks returns the task repository backed by this database.
func (db *DB) Tasks() repository.TaskRepository { return db.tasks }

// Ping verifies the database is still reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// withTx runs fn inside a transaction. fn's error rolls the transaction back;
// a nil return commits it.
//
// fn must only use tx: the pool holds a single connection, and tx owns it
// until withTx returns.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
