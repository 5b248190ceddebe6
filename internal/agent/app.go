package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/google/uuid"

	"habitsync/internal/agent/cli"
	"habitsync/internal/agent/config"
	"habitsync/internal/agent/onboarding"
	"habitsync/internal/agent/remote"
	"habitsync/internal/agent/repositories/metadata"
	"habitsync/internal/agent/store"
	"habitsync/internal/logging"
)

// App assembles the agent: local store, sync client, onboarding coordinator
// and the interactive shell.
type App struct {
	config    *config.Config
	logger    logging.Logger
	store     *store.Store
	client    *remote.WSClient
	coord     *onboarding.Coordinator
	presenter *cli.ConsolePresenter
	shell     *cli.Shell
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	st, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	deviceID, err := ensureDeviceID(ctx, st.Repos.Metadata)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client, err := remote.Dial(ctx, cfg.ServerURL, deviceID, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("server dial error: %w", err)
	}
	restoreSession(ctx, st.Repos.Metadata, client, logger)

	flagStore := remote.NewFlagStore(client, st.DB, st.Repos.Metadata, logger)
	probe := remote.NewAccountStatusProbe(client, cfg.AccountProbeTimeout, logger)
	local := &localFlags{meta: st.Repos.Metadata}
	data := &dataProbe{habits: st.Repos.Habits, profile: st.Repos.Profile}

	presenter := cli.NewConsolePresenter(os.Stdout)
	engine := onboarding.NewEngine(local, flagStore, probe, data, logger)
	waiter := onboarding.NewWaiter(flagStore, data, cfg.RetryUnit, cfg.SyncWaitTimeout, logger)
	gate := onboarding.NewGate(presenter, logger)
	coord := onboarding.NewCoordinator(ctx, engine, waiter, gate, local, onboarding.Options{
		WelcomeMaxRetries: cfg.WelcomeMaxRetries,
		ToastMaxRetries:   cfg.ToastMaxRetries,
	}, logger)

	shell := cli.NewShell(client, coord, st.Repos.Habits, st.Repos.Profile, presenter, os.Stdin, os.Stdout, logger)

	return &App{
		config:    cfg,
		logger:    logger,
		store:     st,
		client:    client,
		coord:     coord,
		presenter: presenter,
		shell:     shell,
	}, nil
}

// ensureDeviceID returns the persisted device id, generating one on first run.
func ensureDeviceID(ctx context.Context, meta metadata.Repository) (string, error) {
	raw, err := meta.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return "", fmt.Errorf("device id read error: %w", err)
	}
	if len(raw) > 0 {
		return string(raw), nil
	}

	id := uuid.NewString()
	if err := meta.Set(ctx, metadata.KeyDeviceID, []byte(id)); err != nil {
		return "", fmt.Errorf("device id write error: %w", err)
	}
	return id, nil
}

// restoreSession reinstalls persisted tokens and arranges for fresh pairs to
// be written back.
func restoreSession(ctx context.Context, meta metadata.Repository, client *remote.WSClient, logger logging.Logger) {
	access, _ := meta.Get(ctx, metadata.KeyAccessToken)
	refresh, _ := meta.Get(ctx, metadata.KeyRefreshToken)
	if len(access) > 0 {
		client.SetTokens(string(access), string(refresh))
	}

	client.OnTokens = func(accessToken, refreshToken string) {
		bg := context.WithoutCancel(ctx)
		if err := meta.Set(bg, metadata.KeyAccessToken, []byte(accessToken)); err != nil {
			logger.Warn(bg, "failed to persist access token", "error", err)
		}
		if err := meta.Set(bg, metadata.KeyRefreshToken, []byte(refreshToken)); err != nil {
			logger.Warn(bg, "failed to persist refresh token", "error", err)
		}
	}
}

func (a *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

// Run performs the launch reconciliation pass, then serves triggers and the
// interactive shell until shutdown.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.initSignalHandler(cancel)

	decision := a.coord.CheckOnboardingStatus(ctx)
	a.handleLaunchDecision(ctx, decision)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.watchNotifications(ctx)
		return nil
	})
	g.Go(func() error {
		a.foregroundTicker(ctx)
		return nil
	})
	g.Go(func() error {
		a.shell.Run(ctx)
		cancel()
		return nil
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) handleLaunchDecision(ctx context.Context, decision onboarding.Decision) {
	switch decision {
	case onboarding.ShowOnboarding:
		fmt.Println("Looks like you're new here. Let's set up your first habit!")
	case onboarding.PendingReturningWelcome:
		a.logger.Info(ctx, "returning user detected, waiting for data")
	case onboarding.SkipSilently:
	}
}

// watchNotifications turns server change pushes into reconciliation triggers.
func (a *App) watchNotifications(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-a.client.Notifications():
			if !ok {
				return
			}
			a.logger.Debug(ctx, "change notification", "scope", ev.Scope, "version", ev.Version)
			a.coord.OnDataMightHaveChanged(onboarding.TriggerRemoteChange)
		}
	}
}

// foregroundTicker approximates app-foreground events for a long-running
// process.
func (a *App) foregroundTicker(ctx context.Context) {
	ticker := time.NewTicker(a.config.ForegroundPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.coord.OnDataMightHaveChanged(onboarding.TriggerForeground)
		}
	}
}

func (a *App) close() {
	a.coord.Close()
	_ = a.client.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Error(context.Background(), "store close error", "error", err)
	}
}
