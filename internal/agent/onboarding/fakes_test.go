package onboarding

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"habitsync/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeLocal struct {
	mu        sync.Mutex
	completed bool
	seeded    bool

	completedErr error
	seededErr    error
	markErr      error
	markCalls    int
}

func (f *fakeLocal) OnboardingCompleted(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completedErr != nil {
		return false, f.completedErr
	}
	return f.completed, nil
}

func (f *fakeLocal) MarkOnboardingCompleted(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	if f.markErr != nil {
		return f.markErr
	}
	f.completed = true
	return nil
}

func (f *fakeLocal) CategoriesSeeded(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seededErr != nil {
		return false, f.seededErr
	}
	return f.seeded, nil
}

func (f *fakeLocal) isCompleted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

type fakeRemote struct {
	mu        sync.Mutex
	completed bool

	completedErr error
	markErr      error

	syncCalls     int
	syncWaitCalls int

	// onSyncWait, when set, runs on every SynchronizeAndWait; tests use it to
	// simulate data arriving from the server.
	onSyncWait func(call int)
}

func (f *fakeRemote) Synchronize(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncCalls++
}

func (f *fakeRemote) SynchronizeAndWait(ctx context.Context, timeout time.Duration) bool {
	f.mu.Lock()
	f.syncWaitCalls++
	call := f.syncWaitCalls
	hook := f.onSyncWait
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return true
}

func (f *fakeRemote) OnboardingCompleted(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completedErr != nil {
		return false, f.completedErr
	}
	return f.completed, nil
}

func (f *fakeRemote) MarkOnboardingCompleted(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.completed = true
	return nil
}

func (f *fakeRemote) isCompleted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *fakeRemote) syncWaits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncWaitCalls
}

type fakeProbe struct {
	available bool
	err       error
	delay     time.Duration
}

func (f *fakeProbe) Check(ctx context.Context) (bool, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return false, f.err
	}
	return f.available, nil
}

type fakeData struct {
	mu sync.Mutex

	// summaries are returned per call in order; the last one repeats.
	summaries []DataSummary
	err       error
	calls     int
}

func (f *fakeData) Summary(ctx context.Context) (DataSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return DataSummary{}, f.err
	}
	if len(f.summaries) == 0 {
		return DataSummary{}, nil
	}
	i := f.calls - 1
	if i >= len(f.summaries) {
		i = len(f.summaries) - 1
	}
	return f.summaries[i], nil
}

func (f *fakeData) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePresenter struct {
	mu           sync.Mutex
	modal        bool
	welcomes     []DataSummary
	stillSyncing int
}

func (f *fakePresenter) ShowWelcome(ctx context.Context, s DataSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, s)
}

func (f *fakePresenter) ShowStillSyncing(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stillSyncing++
}

func (f *fakePresenter) IsModalActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modal
}

func (f *fakePresenter) setModal(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modal = v
}

func (f *fakePresenter) welcomeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.welcomes)
}

func (f *fakePresenter) stillSyncingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stillSyncing
}

var completeSummary = DataSummary{
	HabitsCount:     3,
	HasProfile:      true,
	ProfileName:     "Sam",
	ProfileGender:   "f",
	ProfileAgeGroup: "25_34",
}
