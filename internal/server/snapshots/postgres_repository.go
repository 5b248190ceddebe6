package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) GetHabits(ctx context.Context, accountID string) ([]Habit, error) {
	query :=
		`SELECT id, name, kind, created_at FROM habits
		 WHERE account_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var result []Habit
	for rows.Next() {
		var h Habit
		if err := rows.Scan(&h.ID, &h.Name, &h.Kind, &h.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetProfile(ctx context.Context, accountID string) (*Profile, error) {
	query :=
		`SELECT name, gender, age_group FROM profiles
		 WHERE account_id = $1
		 `

	p := &Profile{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&p.Name, &p.Gender, &p.AgeGroup)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return p, nil
}

func (r *PostgresRepository) ReplaceHabits(ctx context.Context, accountID string, habits []Habit) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM habits WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	query :=
		`INSERT INTO habits (id, account_id, name, kind, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	for _, h := range habits {
		if _, err := r.db.ExecContext(ctx, query,
			h.ID, accountID, h.Name, h.Kind, h.CreatedAt); err != nil {
			return fmt.Errorf("error performing sql request: %v", err)
		}
	}
	return nil
}

func (r *PostgresRepository) SaveProfile(ctx context.Context, accountID string, profile *Profile) error {
	query :=
		`INSERT INTO profiles (account_id, name, gender, age_group)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account_id) DO UPDATE
		     SET name = excluded.name,
		         gender = excluded.gender,
		         age_group = excluded.age_group
		 `

	if _, err := r.db.ExecContext(ctx, query,
		accountID, profile.Name, profile.Gender, profile.AgeGroup); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}
