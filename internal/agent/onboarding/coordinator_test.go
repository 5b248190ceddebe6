package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type coordFixture struct {
	local     *fakeLocal
	remote    *fakeRemote
	probe     *fakeProbe
	data      *fakeData
	presenter *fakePresenter
	coord     *Coordinator
}

func newCoordFixture(t *testing.T, local *fakeLocal, remote *fakeRemote, probe *fakeProbe, data *fakeData) *coordFixture {
	t.Helper()
	log := testLogger()
	presenter := &fakePresenter{}

	engine := NewEngine(local, remote, probe, data, log)
	waiter := NewWaiter(remote, data, time.Millisecond, 5*time.Millisecond, log)
	gate := NewGate(presenter, log)

	coord := NewCoordinator(context.Background(), engine, waiter, gate, local,
		Options{WelcomeMaxRetries: 3, ToastMaxRetries: 2}, log)
	t.Cleanup(coord.Close)

	return &coordFixture{
		local: local, remote: remote, probe: probe, data: data,
		presenter: presenter, coord: coord,
	}
}

func TestCheckOnboardingStatus_FreshInstallOffline(t *testing.T) {
	// Airplane mode on a fresh install: probe times out, user is new.
	fx := newCoordFixture(t, &fakeLocal{}, &fakeRemote{}, &fakeProbe{err: context.DeadlineExceeded}, &fakeData{})

	d := fx.coord.CheckOnboardingStatus(context.Background())
	require.Equal(t, ShowOnboarding, d)
	require.False(t, fx.coord.WelcomePending())
}

func TestCheckOnboardingStatus_SecondDeviceEventuallyWelcomes(t *testing.T) {
	remote := &fakeRemote{completed: true}
	data := &fakeData{summaries: []DataSummary{{}, {HabitsCount: 3, HasProfile: true, ProfileName: "Sam"}, completeSummary}}
	fx := newCoordFixture(t, &fakeLocal{}, remote, &fakeProbe{available: true}, data)

	d := fx.coord.CheckOnboardingStatus(context.Background())
	require.Equal(t, PendingReturningWelcome, d)
	require.True(t, fx.coord.WelcomePending())

	require.Eventually(t, func() bool {
		return fx.presenter.welcomeCount() == 1
	}, time.Second, 5*time.Millisecond)
	require.False(t, fx.coord.WelcomePending())
}

func TestCheckOnboardingStatus_SecondDeviceGivesUpWithoutData(t *testing.T) {
	remote := &fakeRemote{completed: true}
	fx := newCoordFixture(t, &fakeLocal{}, remote, &fakeProbe{available: true}, &fakeData{})

	d := fx.coord.CheckOnboardingStatus(context.Background())
	require.Equal(t, PendingReturningWelcome, d)

	require.Eventually(t, func() bool {
		return fx.presenter.stillSyncingCount() == 1
	}, time.Second, 5*time.Millisecond)
	require.Zero(t, fx.presenter.welcomeCount())
}

func TestOnDataMightHaveChanged_OverlappingTriggersCoalesce(t *testing.T) {
	remote := &fakeRemote{completed: true}
	// Data never completes, so each attempt runs its full budget unless
	// superseded.
	fx := newCoordFixture(t, &fakeLocal{}, remote, &fakeProbe{available: true}, &fakeData{})

	fx.coord.OnDataMightHaveChanged(TriggerRemoteChange)
	time.Sleep(2 * time.Millisecond)
	fx.coord.OnDataMightHaveChanged(TriggerRemoteChange)

	require.Eventually(t, func() bool {
		return fx.presenter.stillSyncingCount() >= 1
	}, time.Second, 5*time.Millisecond)

	// Give the superseded attempt time to misbehave if it were going to.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, fx.presenter.stillSyncingCount(), "only the latest attempt may present")
}

func TestWelcome_PresentedAtMostOnce(t *testing.T) {
	remote := &fakeRemote{completed: true}
	data := &fakeData{summaries: []DataSummary{completeSummary}}
	fx := newCoordFixture(t, &fakeLocal{}, remote, &fakeProbe{available: true}, data)

	require.Equal(t, PendingReturningWelcome, fx.coord.CheckOnboardingStatus(context.Background()))
	require.Eventually(t, func() bool {
		return fx.presenter.welcomeCount() == 1
	}, time.Second, 5*time.Millisecond)

	fx.coord.OnDataMightHaveChanged(TriggerForeground)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, fx.presenter.welcomeCount())
}

func TestOnWelcomeDismissed_SetsLocalFlag(t *testing.T) {
	local := &fakeLocal{}
	fx := newCoordFixture(t, local, &fakeRemote{}, &fakeProbe{available: true}, &fakeData{})

	require.NoError(t, fx.coord.OnWelcomeDismissed(context.Background()))
	require.True(t, local.isCompleted())

	// From here on every pass takes the local fast path.
	require.Equal(t, SkipSilently, fx.coord.CheckOnboardingStatus(context.Background()))
}

func TestModalGating_EndToEnd(t *testing.T) {
	remote := &fakeRemote{completed: true}
	data := &fakeData{summaries: []DataSummary{completeSummary}}
	fx := newCoordFixture(t, &fakeLocal{}, remote, &fakeProbe{available: true}, data)
	fx.presenter.setModal(true)

	fx.coord.CheckOnboardingStatus(context.Background())

	// The outcome resolves but must stay parked behind the modal.
	time.Sleep(50 * time.Millisecond)
	require.Zero(t, fx.presenter.welcomeCount())

	fx.presenter.setModal(false)
	fx.coord.OnModalDismissed(context.Background())
	require.Equal(t, 1, fx.presenter.welcomeCount())
}
