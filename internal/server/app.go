// Package server initializes and runs the sync server: storage, account
// services and the websocket endpoint, with graceful shutdown on signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"habitsync/internal/logging"
	"habitsync/internal/server/accounts"
	"habitsync/internal/server/config"
	"habitsync/internal/server/shared/db"
	syncsvc "habitsync/internal/server/sync"
	"habitsync/internal/server/ws"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	accountService *accounts.Service
	syncService    *syncsvc.Service
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	as := accounts.NewService(m.Accounts(), m.RefreshTokens(), c, logger)
	ss := syncsvc.NewService(m.Accounts(), m.Flags(), m.Snapshots(), logger)

	return &App{config: c, logger: logger, accountService: as, syncService: ss}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startWSServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := ws.NewServer(app.config.EndpointAddr, app.accountService, app.syncService, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting sync server...", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startWSServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
