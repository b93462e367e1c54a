// Package migrations holds the schema for every supported database and applies
// it with goose. The SQL files are embedded, so the binary carries its schema.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Dialect selects the migration set and the goose dialect.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) goose() (goose.Dialect, error) {
	switch d {
	case SQLite:
		return goose.DialectSQLite3, nil
	case Postgres:
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("migrations: unknown dialect %q", d)
	}
}

// Up applies every pending migration for the dialect and returns the number
// of migrations that ran.
//
// A goose.Provider is used instead of the package-level goose functions so
// that two databases can be migrated in the same process without sharing
// global dialect state.
func Up(ctx context.Context, db *sql.DB, dialect Dialect) (int, error) {
	gd, err := dialect.goose()
	if err != nil {
		return 0, err
	}

	fsys, err := fs.Sub(files, string(dialect))
	if err != nil {
		return 0, fmt.Errorf("migrations: opening %s files: %w", dialect, err)
	}

	provider, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("migrations: creating provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations: applying %s migrations: %w", dialect, err)
	}

	return len(results), nil
}
