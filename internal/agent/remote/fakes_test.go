package remote

import (
	"context"
	"io"
	"log/slog"
	"time"

	"habitsync/internal/logging"
	"habitsync/internal/protocol"
)

func newTestLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClient scripts the sync client used by FlagStore and the probe.
type fakeClient struct {
	signedIn bool

	pingErr   error
	pingDelay time.Duration

	flagValue  bool
	flagErr    error
	setFlagErr error
	setCalls   int

	snapshot *protocol.Snapshot
	pullErr  error
	pullCh   chan int64
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) SignIn(ctx context.Context, account, passphrase string) error { return nil }

func (f *fakeClient) Ping(ctx context.Context) error {
	if f.pingDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.pingDelay):
		}
	}
	return f.pingErr
}

func (f *fakeClient) GetFlag(ctx context.Context, key string) (bool, error) {
	return f.flagValue, f.flagErr
}

func (f *fakeClient) SetFlag(ctx context.Context, key string, value bool) error {
	f.setCalls++
	return f.setFlagErr
}

func (f *fakeClient) Pull(ctx context.Context, sinceVersion int64) (*protocol.Snapshot, error) {
	if f.pullCh != nil {
		f.pullCh <- sinceVersion
	}
	return f.snapshot, f.pullErr
}

func (f *fakeClient) Push(ctx context.Context, params protocol.PushParams) (int64, error) {
	return 0, nil
}

func (f *fakeClient) Notifications() <-chan protocol.ChangeEvent { return nil }

func (f *fakeClient) SignedIn() bool { return f.signedIn }
