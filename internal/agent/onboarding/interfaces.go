package onboarding

import (
	"context"
	"time"
)

// LocalFlags is the device-owned flag store. Flags are monotonic: once a
// flag reads true it is never reset by this package.
type LocalFlags interface {
	OnboardingCompleted(ctx context.Context) (bool, error)
	MarkOnboardingCompleted(ctx context.Context) error

	// CategoriesSeeded reports whether default-category seeding ever ran on
	// this device. It is a cheap proxy for "a predecessor version of the app
	// ran here" and feeds migration detection.
	CategoriesSeeded(ctx context.Context) (bool, error)
}

// RemoteFlags is the view of the account-wide, eventually consistent flag
// store. Synchronize pulls in the background; SynchronizeAndWait blocks up to
// the given timeout and reports whether a pull completed before the deadline.
type RemoteFlags interface {
	Synchronize(ctx context.Context)
	SynchronizeAndWait(ctx context.Context, timeout time.Duration) bool
	OnboardingCompleted(ctx context.Context) (bool, error)
	MarkOnboardingCompleted(ctx context.Context) error
}

// AccountProbe checks whether the remote store is currently backed by a
// signed-in, reachable account. Implementations must honor ctx deadlines.
type AccountProbe interface {
	Check(ctx context.Context) (bool, error)
}

// DataProbe recomputes a fresh DataSummary from local domain storage. The
// result is never cached across suspension points by callers.
type DataProbe interface {
	Summary(ctx context.Context) (DataSummary, error)
}

// Presenter is the UI boundary for welcome/toast outcomes. IsModalActive
// reports whether a blocking modal currently covers the screen.
type Presenter interface {
	ShowWelcome(ctx context.Context, s DataSummary)
	ShowStillSyncing(ctx context.Context)
	IsModalActive() bool
}
