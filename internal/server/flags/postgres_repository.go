package flags

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

func (r *PostgresRepository) Get(ctx context.Context, accountID, key string) (*Flag, error) {
	query :=
		`SELECT key, value, updated_at FROM account_flags
		 WHERE account_id = $1 AND key = $2
		 `

	flag := &Flag{}
	err := r.db.QueryRowContext(ctx, query, accountID, key).
		Scan(&flag.Key, &flag.Value, &flag.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return flag, nil
}

func (r *PostgresRepository) Set(ctx context.Context, accountID, key string, value bool) error {
	query :=
		`INSERT INTO account_flags (account_id, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (account_id, key) DO UPDATE
		     SET value = excluded.value, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, accountID, key, value); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *PostgresRepository) GetAll(ctx context.Context, accountID string) ([]Flag, error) {
	query :=
		`SELECT key, value, updated_at FROM account_flags
		 WHERE account_id = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var result []Flag
	for rows.Next() {
		var f Flag
		if err := rows.Scan(&f.Key, &f.Value, &f.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
