package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/trailkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/trailkeeper/internal/client/repositories/hikes"
	"github.com/dmitrijs2005/trailkeeper/internal/client/repositories/observations"
	"github.com/dmitrijs2005/trailkeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/trailkeeper/internal/client/repositories/users"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Hikes        hikes.Repository
	Observations observations.Repository
	Users        users.Repository
	Session      session.Repository
}

// NewRepositories binds every repository to db, which may be a transaction.
func NewRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Hikes:        hikes.NewSQLiteRepository(db),
		Observations: observations.NewSQLiteRepository(db),
		Users:        users.NewSQLiteRepository(db),
		Session:      session.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and migrates it. The pool is
// limited to one connection so the foreign key pragma applies to every
// statement.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
