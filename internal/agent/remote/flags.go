package remote

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"habitsync/internal/agent/repositories/habits"
	"habitsync/internal/agent/repositories/metadata"
	"habitsync/internal/agent/repositories/profile"
	"habitsync/internal/dbx"
	"habitsync/internal/logging"
	"habitsync/internal/protocol"
)

// FlagStore exposes the account-wide flags over the sync client and caches
// the last observed value locally, so a device that saw the flag once keeps
// honoring it offline. Applying a pulled snapshot also refreshes the local
// habit and profile caches in the same transaction.
type FlagStore struct {
	client Client
	db     *sql.DB
	meta   metadata.Repository
	logger logging.Logger
}

func NewFlagStore(client Client, db *sql.DB, meta metadata.Repository, logger logging.Logger) *FlagStore {
	return &FlagStore{
		client: client,
		db:     db,
		meta:   meta,
		logger: logger.With("module", "flag_store"),
	}
}

// Synchronize kicks off a pull without waiting for it. The pull is detached
// from ctx so a coalesced trigger does not abort a transfer already in flight.
func (f *FlagStore) Synchronize(ctx context.Context) {
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := f.pull(bg); err != nil {
			f.logger.Debug(bg, "background pull failed", "error", err)
		}
	}()
}

// SynchronizeAndWait pulls with a deadline and reports whether the pull
// finished in time.
func (f *FlagStore) SynchronizeAndWait(ctx context.Context, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := f.pull(ctx); err != nil {
		f.logger.Debug(ctx, "pull failed", "error", err)
		return false
	}
	return true
}

// OnboardingCompleted asks the server directly and falls back to the last
// observed value when the server cannot be reached.
func (f *FlagStore) OnboardingCompleted(ctx context.Context) (bool, error) {
	value, err := f.client.GetFlag(ctx, protocol.FlagOnboardingCompleted)
	if err != nil {
		cached, cacheErr := f.meta.GetBool(ctx, metadata.KeyRemoteOnboardingCompleted)
		if cacheErr != nil {
			return false, err
		}
		return cached, nil
	}

	if err := f.meta.SetBool(ctx, metadata.KeyRemoteOnboardingCompleted, value); err != nil {
		f.logger.Warn(ctx, "failed to cache remote flag", "error", err)
	}
	return value, nil
}

func (f *FlagStore) MarkOnboardingCompleted(ctx context.Context) error {
	if err := f.client.SetFlag(ctx, protocol.FlagOnboardingCompleted, true); err != nil {
		return err
	}
	if err := f.meta.SetBool(ctx, metadata.KeyRemoteOnboardingCompleted, true); err != nil {
		f.logger.Warn(ctx, "failed to cache remote flag", "error", err)
	}
	return nil
}

func (f *FlagStore) sinceVersion(ctx context.Context) int64 {
	raw, err := f.meta.Get(ctx, metadata.KeySyncVersion)
	if err != nil || len(raw) == 0 {
		return 0
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (f *FlagStore) pull(ctx context.Context) error {
	snap, err := f.client.Pull(ctx, f.sinceVersion(ctx))
	if err != nil {
		return err
	}
	return f.apply(ctx, snap)
}

// apply overwrites the local caches with a snapshot in one transaction.
func (f *FlagStore) apply(ctx context.Context, snap *protocol.Snapshot) error {
	err := dbx.WithTx(ctx, f.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		habitRepo := habits.NewSQLiteRepository(tx)
		if err := habitRepo.ReplaceAll(ctx, habitsFromSnapshot(snap)); err != nil {
			return err
		}

		profileRepo := profile.NewSQLiteRepository(tx)
		if snap.Profile != nil {
			return profileRepo.Save(ctx, profileFromSnapshot(snap.Profile))
		}
		return profileRepo.Delete(ctx)
	})
	if err != nil {
		return err
	}

	for _, flag := range snap.Flags {
		if flag.Key != protocol.FlagOnboardingCompleted {
			continue
		}
		if err := f.meta.SetBool(ctx, metadata.KeyRemoteOnboardingCompleted, flag.Value); err != nil {
			f.logger.Warn(ctx, "failed to cache remote flag", "error", err)
		}
	}

	version := strconv.FormatInt(snap.Version, 10)
	if err := f.meta.Set(ctx, metadata.KeySyncVersion, []byte(version)); err != nil {
		f.logger.Warn(ctx, "failed to record sync version", "error", err)
	}

	f.logger.Debug(ctx, "snapshot applied",
		"habits", len(snap.Habits), "version", snap.Version)
	return nil
}
