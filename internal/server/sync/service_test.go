package sync

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"habitsync/internal/common"
	"habitsync/internal/logging"
	"habitsync/internal/protocol"
	"habitsync/internal/server/accounts"
	"habitsync/internal/server/flags"
	"habitsync/internal/server/snapshots"
)

type memAccountRepo struct {
	account *accounts.Account
}

func (m *memAccountRepo) Create(ctx context.Context, a *accounts.Account) (*accounts.Account, error) {
	m.account = a
	return a, nil
}

func (m *memAccountRepo) GetByName(ctx context.Context, name string) (*accounts.Account, error) {
	if m.account != nil && m.account.Name == name {
		return m.account, nil
	}
	return nil, common.ErrNotFound
}

func (m *memAccountRepo) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	if m.account != nil && m.account.ID == id {
		return m.account, nil
	}
	return nil, common.ErrNotFound
}

func (m *memAccountRepo) BumpDataVersion(ctx context.Context, id string) (int64, error) {
	m.account.DataVersion++
	return m.account.DataVersion, nil
}

type memFlagRepo struct {
	rows map[string]flags.Flag
}

func (m *memFlagRepo) Get(ctx context.Context, accountID, key string) (*flags.Flag, error) {
	if f, ok := m.rows[key]; ok {
		return &f, nil
	}
	return nil, common.ErrNotFound
}

func (m *memFlagRepo) Set(ctx context.Context, accountID, key string, value bool) error {
	if m.rows == nil {
		m.rows = map[string]flags.Flag{}
	}
	m.rows[key] = flags.Flag{Key: key, Value: value, UpdatedAt: time.Now()}
	return nil
}

func (m *memFlagRepo) GetAll(ctx context.Context, accountID string) ([]flags.Flag, error) {
	var out []flags.Flag
	for _, f := range m.rows {
		out = append(out, f)
	}
	return out, nil
}

type memSnapshotRepo struct {
	habits  []snapshots.Habit
	profile *snapshots.Profile
}

func (m *memSnapshotRepo) GetHabits(ctx context.Context, accountID string) ([]snapshots.Habit, error) {
	return m.habits, nil
}

func (m *memSnapshotRepo) GetProfile(ctx context.Context, accountID string) (*snapshots.Profile, error) {
	return m.profile, nil
}

func (m *memSnapshotRepo) ReplaceHabits(ctx context.Context, accountID string, habits []snapshots.Habit) error {
	m.habits = habits
	return nil
}

func (m *memSnapshotRepo) SaveProfile(ctx context.Context, accountID string, profile *snapshots.Profile) error {
	m.profile = profile
	return nil
}

func newTestSync() (*Service, *memAccountRepo, *memFlagRepo, *memSnapshotRepo) {
	accRepo := &memAccountRepo{account: &accounts.Account{ID: "acc-1", Name: "sam"}}
	flagRepo := &memFlagRepo{}
	snapRepo := &memSnapshotRepo{}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(accRepo, flagRepo, snapRepo, logger), accRepo, flagRepo, snapRepo
}

func TestPushThenPull_RoundTrip(t *testing.T) {
	svc, _, _, _ := newTestSync()
	ctx := context.Background()

	version, err := svc.Push(ctx, "acc-1", protocol.PushParams{
		Habits: []protocol.Habit{
			{ID: "h1", Name: "run", Kind: "build", CreatedAt: time.Now().UTC()},
		},
		Profile: &protocol.Profile{Name: "Sam", Gender: "f", AgeGroup: "25_34"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	snap, err := svc.Pull(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, snap.Habits, 1)
	require.Equal(t, "run", snap.Habits[0].Name)
	require.NotNil(t, snap.Profile)
	require.Equal(t, "Sam", snap.Profile.Name)
	require.Equal(t, int64(1), snap.Version)
}

func TestPush_PartialSectionsLeaveRestUntouched(t *testing.T) {
	svc, _, _, snapRepo := newTestSync()
	ctx := context.Background()

	snapRepo.profile = &snapshots.Profile{Name: "Sam"}

	_, err := svc.Push(ctx, "acc-1", protocol.PushParams{
		Habits: []protocol.Habit{{ID: "h1", Name: "read"}},
	})
	require.NoError(t, err)
	require.NotNil(t, snapRepo.profile, "profile must survive a habits-only push")
	require.Len(t, snapRepo.habits, 1)
}

func TestGetFlag_AbsentReadsFalse(t *testing.T) {
	svc, _, _, _ := newTestSync()

	flag, err := svc.GetFlag(context.Background(), "acc-1", protocol.FlagOnboardingCompleted)
	require.NoError(t, err)
	require.False(t, flag.Value)
}

func TestSetFlag_BumpsVersionAndSticks(t *testing.T) {
	svc, _, _, _ := newTestSync()
	ctx := context.Background()

	version, err := svc.SetFlag(ctx, "acc-1", protocol.FlagOnboardingCompleted, true)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	flag, err := svc.GetFlag(ctx, "acc-1", protocol.FlagOnboardingCompleted)
	require.NoError(t, err)
	require.True(t, flag.Value)

	snap, err := svc.Pull(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, snap.Flags, 1)
	require.Equal(t, int64(1), snap.Version)
}
