// Package metadata stores small device-local key/value pairs: onboarding
// flags, the device id and cached session tokens. Values survive restarts and
// are destroyed only by wiping the database file.
package metadata

import "context"

// Well-known keys.
const (
	KeyOnboardingCompleted = "onboarding_completed"
	KeyCategoriesSeeded    = "categories_seeded"
	KeyDeviceID            = "device_id"
	KeyAccessToken         = "access_token"
	KeyRefreshToken        = "refresh_token"

	// Last observed account-wide flag and snapshot version, refreshed on
	// every successful pull.
	KeyRemoteOnboardingCompleted = "remote_onboarding_completed"
	KeySyncVersion               = "sync_version"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
