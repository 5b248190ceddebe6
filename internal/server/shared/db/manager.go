package db

import (
	"context"
	"database/sql"

	"habitsync/internal/server/accounts"
	"habitsync/internal/server/flags"
	"habitsync/internal/server/refreshtokens"
	"habitsync/internal/server/snapshots"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Accounts() accounts.Repository
	RefreshTokens() refreshtokens.Repository
	Flags() flags.Repository
	Snapshots() snapshots.Repository
}
