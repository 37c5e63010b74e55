// Package server wires the reference gigbook API: configuration, storage
// (PostgreSQL or in-memory), services and the HTTP endpoint, plus graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gigbook/internal/logging"
	"github.com/dmitrijs2005/gigbook/internal/server/config"
	"github.com/dmitrijs2005/gigbook/internal/server/httpserver"
	"github.com/dmitrijs2005/gigbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gigbook/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	server *httpserver.HTTPServer
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	rm, err := repomanager.New(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us, err := services.NewUserService(rm.Users(), rm.RefreshTokens(), c)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}
	ls := services.NewLogService(rm.Logs())

	s := httpserver.NewHTTPServer(c.Address, c.ShutdownTimeout, logger, us, ls)

	return &App{config: c, logger: logger, repos: rm, server: s}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run applies pending migrations, then serves until ctx is cancelled or a
// termination signal arrives. Storage is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.repos.Close(); err != nil {
			app.logger.Error(ctx, "closing storage failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...", "storage", storageKind(app.config))

	if err := app.repos.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, "migrations failed", "error", err)
		return err
	}

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

func storageKind(c *config.Config) string {
	if c.DatabaseDSN == "" {
		return "memory"
	}
	return "postgres"
}
