package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"habitsync/internal/agent/models"
	"habitsync/internal/dbx"
)

// The profile table holds at most one row, keyed by a fixed id.
const rowID = 1

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowContext(ctx,
		`SELECT name, gender, age_group FROM profile WHERE id = ?`, rowID).
		Scan(&p.Name, &p.Gender, &p.AgeGroup)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, p *models.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profile (id, name, gender, age_group) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			gender = excluded.gender,
			age_group = excluded.age_group
	`, rowID, p.Name, p.Gender, p.AgeGroup)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profile WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
