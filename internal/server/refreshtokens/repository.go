package refreshtokens

import (
	"context"
	"time"
)

// RefreshToken is a stored long-lived session credential.
type RefreshToken struct {
	AccountID string
	Token     string
	ExpiresAt time.Time
}

type Repository interface {
	Create(ctx context.Context, accountID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
