// Package store opens the agent's local sqlite database, applies schema
// migrations and hands out the repository bundle.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"habitsync/internal/agent/repositories/habits"
	"habitsync/internal/agent/repositories/metadata"
	"habitsync/internal/agent/repositories/profile"
	"habitsync/internal/agent/store/migrations"
)

type Repositories struct {
	Metadata metadata.Repository
	Habits   habits.Repository
	Profile  profile.Repository
}

type Store struct {
	DB    *sql.DB
	Repos *Repositories
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the sqlite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Store{
		DB: db,
		Repos: &Repositories{
			Metadata: metadata.NewSQLiteRepository(db),
			Habits:   habits.NewSQLiteRepository(db),
			Profile:  profile.NewSQLiteRepository(db),
		},
	}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
