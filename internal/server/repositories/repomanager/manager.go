// Package repomanager vends repository implementations for the configured
// database and runs the embedded goose migrations for its dialect.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dmitrijs2005/signmanager/internal/dbx"
	"github.com/dmitrijs2005/signmanager/internal/filex"
	"github.com/dmitrijs2005/signmanager/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// gooseUp applies every pending migration in fsys. It is a variable so
// tests can stub it.
var gooseUp = func(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// migrate runs the migrations found under dir of an embedded tree. Each
// call builds its own provider, so no goose state is shared between
// databases.
func migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, embedded fs.FS, dir string) error {
	fsys, err := fs.Sub(embedded, dir)
	if err != nil {
		return fmt.Errorf("migrations dir %s: %w", dir, err)
	}
	return gooseUp(ctx, db, dialect, fsys)
}

// Open picks the driver from the DSN, opens the pool and returns it with
// the matching manager.
//
//	postgres://... postgresql://... host=...   -> pgx
//	sqlite://path, file:..., :memory:          -> sqlite (modernc)
func Open(dsn string) (*sql.DB, RepositoryManager, error) {
	driver, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, nil, err
	}

	if driver == driverSQLite {
		if path := sqliteFilePath(source); path != "" {
			if _, err := filex.EnsureParentDir(path); err != nil {
				return nil, nil, err
			}
		}
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}

	switch driver {
	case driverSQLite:
		// one writer at a time; also keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
		return db, NewSQLiteRepositoryManager(), nil
	default:
		return db, NewPostgresRepositoryManager(), nil
	}
}

const (
	driverPostgres = "pgx"
	driverSQLite   = "sqlite"
)

// ParseDSN maps a configured DSN to a database/sql driver name and the
// source string that driver expects.
func ParseDSN(dsn string) (driver, source string, err error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("database dsn is empty")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return driverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return driverSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return driverSQLite, dsn, nil
	case strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname="):
		return driverPostgres, dsn, nil
	}
	return "", "", fmt.Errorf("unsupported database dsn scheme")
}

// sqliteFilePath returns the on-disk path of a sqlite source, or "" for
// in-memory databases.
func sqliteFilePath(source string) string {
	if source == ":memory:" || strings.Contains(source, "mode=memory") {
		return ""
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(source, "file:"), "?")
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}
