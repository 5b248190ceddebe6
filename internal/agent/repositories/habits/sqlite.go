package habits

import (
	"context"
	"fmt"
	"time"

	"habitsync/internal/agent/models"
	"habitsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Habit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, kind, created_at FROM habits ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to select habits: %w", err)
	}
	defer rows.Close()

	var result []models.Habit
	for rows.Next() {
		var item models.Habit
		var createdAt string
		if err := rows.Scan(&item.ID, &item.Name, &item.Kind, &createdAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			item.CreatedAt = t
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count habits: %w", err)
	}
	return n, nil
}

// ReplaceAll swaps the cached habit list for the one from a snapshot.
// Callers wanting atomicity should run it inside dbx.WithTx.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, habits []models.Habit) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM habits`); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}
	for _, h := range habits {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO habits (id, name, kind, created_at) VALUES (?, ?, ?, ?)`,
			h.ID, h.Name, h.Kind, h.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to insert habit %s: %w", h.ID, err)
		}
	}
	return nil
}
