package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"habitsync/internal/server/accounts"
	"habitsync/internal/server/flags"
	"habitsync/internal/server/migrations"
	"habitsync/internal/server/refreshtokens"
	"habitsync/internal/server/snapshots"
)

type PostgresRepositoryManager struct {
	db            *sql.DB
	accounts      accounts.Repository
	refreshTokens refreshtokens.Repository
	flags         flags.Repository
	snapshots     snapshots.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository {
	return m.accounts
}

func (m *PostgresRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *PostgresRepositoryManager) Flags() flags.Repository {
	return m.flags
}

func (m *PostgresRepositoryManager) Snapshots() snapshots.Repository {
	return m.snapshots
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	accountRepo, err := accounts.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("account repo creation error: %w", err)
	}

	refreshTokenRepo, err := refreshtokens.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("refresh token repo creation error: %w", err)
	}

	flagRepo, err := flags.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("flag repo creation error: %w", err)
	}

	snapshotRepo, err := snapshots.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("snapshot repo creation error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:            db,
		accounts:      accountRepo,
		refreshTokens: refreshTokenRepo,
		flags:         flagRepo,
		snapshots:     snapshotRepo,
	}

	err = m.RunMigrations(context.Background())
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
