package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gigbook/internal/client/cli"
	"github.com/dmitrijs2005/gigbook/internal/client/client"
	"github.com/dmitrijs2005/gigbook/internal/client/config"
	"github.com/dmitrijs2005/gigbook/internal/client/credentials"
	"github.com/dmitrijs2005/gigbook/internal/client/services"
	"github.com/dmitrijs2005/gigbook/internal/client/store"
	"github.com/dmitrijs2005/gigbook/internal/logging"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	engine := store.NewEngine(cfg.DatabasePath(), logger)
	defer engine.Close()

	var creds credentials.Store
	switch cfg.CredentialBackend {
	case config.BackendFile:
		s, err := credentials.OpenSQLiteStore(ctx, cfg.CredentialsPath())
		if err != nil {
			return err
		}
		defer s.Close()
		creds = s
	default:
		creds = credentials.NewKeyringStore(cfg.KeyringService)
	}

	var api client.Client
	if !cfg.Offline {
		baseURL, err := cfg.ResolveBaseURL()
		if err != nil {
			return err
		}
		api = client.NewHTTPClient(client.Options{BaseURL: baseURL, Timeout: cfg.HTTPTimeout}, creds, logger)
	}

	session := services.NewSession(engine, creds, api, logger)
	shows := services.NewShowLog(engine, api, logger)

	app := cli.NewApp(session, shows, api, os.Stdin, os.Stdout)
	return app.Run(ctx, cfg.OnlineCheckInterval)
}
