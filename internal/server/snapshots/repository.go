// Package snapshots stores the account's habit list and profile, the data
// pulled by agents as a single snapshot.
package snapshots

import (
	"context"
	"time"
)

type Habit struct {
	ID        string
	Name      string
	Kind      string
	CreatedAt time.Time
}

type Profile struct {
	Name     string
	Gender   string
	AgeGroup string
}

type Repository interface {
	GetHabits(ctx context.Context, accountID string) ([]Habit, error)
	GetProfile(ctx context.Context, accountID string) (*Profile, error)
	ReplaceHabits(ctx context.Context, accountID string, habits []Habit) error
	SaveProfile(ctx context.Context, accountID string, profile *Profile) error
}
