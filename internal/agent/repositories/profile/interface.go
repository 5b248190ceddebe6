// Package profile is the local cache of the account's profile row.
package profile

import (
	"context"

	"habitsync/internal/agent/models"
)

type Repository interface {
	// Load returns the cached profile, or nil when none has synced yet.
	Load(ctx context.Context) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context) error
}
