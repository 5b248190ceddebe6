// Package sync implements the data-plane operations behind pull, push and
// the account flag calls.
package sync

import (
	"context"
	"errors"
	"time"

	"habitsync/internal/common"
	"habitsync/internal/logging"
	"habitsync/internal/protocol"
	"habitsync/internal/server/accounts"
	"habitsync/internal/server/flags"
	"habitsync/internal/server/snapshots"
)

type Service struct {
	accounts  accounts.Repository
	flags     flags.Repository
	snapshots snapshots.Repository
	logger    logging.Logger
}

func NewService(accountRepo accounts.Repository, flagRepo flags.Repository, snapshotRepo snapshots.Repository, logger logging.Logger) *Service {
	return &Service{
		accounts:  accountRepo,
		flags:     flagRepo,
		snapshots: snapshotRepo,
		logger:    logger.With("module", "sync"),
	}
}

// Pull assembles the full account snapshot. Agents that already hold the
// current version still get the full payload; the transfer is small and the
// agent applies it idempotently.
func (s *Service) Pull(ctx context.Context, accountID string) (*protocol.Snapshot, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, s.internal(ctx, "account load failed", err)
	}

	habitRows, err := s.snapshots.GetHabits(ctx, accountID)
	if err != nil {
		return nil, s.internal(ctx, "habit load failed", err)
	}

	profileRow, err := s.snapshots.GetProfile(ctx, accountID)
	if err != nil {
		return nil, s.internal(ctx, "profile load failed", err)
	}

	flagRows, err := s.flags.GetAll(ctx, accountID)
	if err != nil {
		return nil, s.internal(ctx, "flag load failed", err)
	}

	snap := &protocol.Snapshot{
		Habits:  make([]protocol.Habit, 0, len(habitRows)),
		Flags:   make([]protocol.FlagValue, 0, len(flagRows)),
		Version: account.DataVersion,
	}
	for _, h := range habitRows {
		snap.Habits = append(snap.Habits, protocol.Habit{
			ID: h.ID, Name: h.Name, Kind: h.Kind, CreatedAt: h.CreatedAt,
		})
	}
	if profileRow != nil {
		snap.Profile = &protocol.Profile{
			Name: profileRow.Name, Gender: profileRow.Gender, AgeGroup: profileRow.AgeGroup,
		}
	}
	for _, f := range flagRows {
		snap.Flags = append(snap.Flags, protocol.FlagValue{
			Key: f.Key, Value: f.Value, UpdatedAt: f.UpdatedAt,
		})
	}

	return snap, nil
}

// Push stores the uploaded habits and/or profile and returns the new data
// version. Omitted sections are left untouched.
func (s *Service) Push(ctx context.Context, accountID string, params protocol.PushParams) (int64, error) {
	if params.Habits != nil {
		rows := make([]snapshots.Habit, 0, len(params.Habits))
		for _, h := range params.Habits {
			createdAt := h.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			rows = append(rows, snapshots.Habit{
				ID: h.ID, Name: h.Name, Kind: h.Kind, CreatedAt: createdAt,
			})
		}
		if err := s.snapshots.ReplaceHabits(ctx, accountID, rows); err != nil {
			return 0, s.internal(ctx, "habit store failed", err)
		}
	}

	if params.Profile != nil {
		row := &snapshots.Profile{
			Name:     params.Profile.Name,
			Gender:   params.Profile.Gender,
			AgeGroup: params.Profile.AgeGroup,
		}
		if err := s.snapshots.SaveProfile(ctx, accountID, row); err != nil {
			return 0, s.internal(ctx, "profile store failed", err)
		}
	}

	version, err := s.accounts.BumpDataVersion(ctx, accountID)
	if err != nil {
		return 0, s.internal(ctx, "version bump failed", err)
	}
	return version, nil
}

// GetFlag reads one account flag. An absent flag reads as false.
func (s *Service) GetFlag(ctx context.Context, accountID, key string) (*protocol.FlagValue, error) {
	flag, err := s.flags.Get(ctx, accountID, key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &protocol.FlagValue{Key: key, Value: false}, nil
		}
		return nil, s.internal(ctx, "flag load failed", err)
	}

	return &protocol.FlagValue{Key: flag.Key, Value: flag.Value, UpdatedAt: flag.UpdatedAt}, nil
}

// SetFlag writes one account flag and returns the new data version.
func (s *Service) SetFlag(ctx context.Context, accountID, key string, value bool) (int64, error) {
	if err := s.flags.Set(ctx, accountID, key, value); err != nil {
		return 0, s.internal(ctx, "flag store failed", err)
	}

	version, err := s.accounts.BumpDataVersion(ctx, accountID)
	if err != nil {
		return 0, s.internal(ctx, "version bump failed", err)
	}
	return version, nil
}

func (s *Service) internal(ctx context.Context, msg string, err error) error {
	s.logger.Error(ctx, msg, "error", err)
	return common.ErrInternal
}
