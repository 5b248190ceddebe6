// Package flags stores account-scoped boolean flags with last-writer-wins
// semantics.
package flags

import (
	"context"
	"time"
)

// Flag is one account-scoped key/value row.
type Flag struct {
	Key       string
	Value     bool
	UpdatedAt time.Time
}

type Repository interface {
	Get(ctx context.Context, accountID, key string) (*Flag, error)
	Set(ctx context.Context, accountID, key string, value bool) error
	GetAll(ctx context.Context, accountID string) ([]Flag, error)
}
