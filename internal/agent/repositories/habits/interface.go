// Package habits is the local cache of the account's habit list, replaced
// wholesale by each applied sync snapshot.
package habits

import (
	"context"

	"habitsync/internal/agent/models"
)

type Repository interface {
	GetAll(ctx context.Context) ([]models.Habit, error)
	Count(ctx context.Context) (int, error)
	ReplaceAll(ctx context.Context, habits []models.Habit) error
}
