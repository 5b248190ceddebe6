package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"habitsync/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *Account) (*Account, error) {

	query :=
		`INSERT INTO accounts (name, passphrase_hash)
         VALUES ($1, $2)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Name, account.PassphraseHash).Scan(&account.ID)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Account, error) {
	query :=
		`SELECT id, name, passphrase_hash, data_version FROM accounts
		 WHERE name = $1
		 `

	account := &Account{}
	err := r.db.QueryRowContext(ctx, query, name).
		Scan(&account.ID, &account.Name, &account.PassphraseHash, &account.DataVersion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	query :=
		`SELECT id, name, passphrase_hash, data_version FROM accounts
		 WHERE id = $1
		 `

	account := &Account{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&account.ID, &account.Name, &account.PassphraseHash, &account.DataVersion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return account, nil
}

func (r *PostgresRepository) BumpDataVersion(ctx context.Context, id string) (int64, error) {
	query :=
		`UPDATE accounts SET data_version = data_version + 1
		 WHERE id = $1
		 RETURNING data_version
		 `

	var version int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&version); err != nil {
		return 0, fmt.Errorf("error performing sql request: %v", err)
	}
	return version, nil
}
