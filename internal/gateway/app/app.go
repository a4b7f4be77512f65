package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"codegate/internal/analysis"
	"codegate/internal/gateway/config"
	"codegate/internal/gateway/handler"
	"codegate/internal/gateway/server"
	"codegate/internal/githost"
	"codegate/internal/lint"
	"codegate/internal/vault"
)

type App struct {
	server *server.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	stores, err := initStores(cfg, logger)
	if err != nil {
		return nil, err
	}

	creds, err := vault.New(cfg.EncryptionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential vault: %w", err)
	}

	fetcher := githost.NewClient(githost.Config{
		BaseURL:          cfg.GitHub.BaseURL,
		FetchConcurrency: cfg.GitHub.FetchConcurrency,
		Extensions:       cfg.GitHub.Extensions,
		Logger:           logger,
	})
	engine := lint.NewEngine(logger)

	svc := analysis.NewService(
		stores.tasks,
		fetcher,
		engine,
		creds,
		stores.reports,
		stores.snapshots,
		logger,
		analysis.Config{},
	)

	analysisHandler := handler.NewAnalysisHandler(svc, logger)
	mux := server.NewMux(analysisHandler)
	srv := server.New(cfg.Port, mux, logger)

	return &App{server: srv}, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	return slog.New(h).With("service", "codegate", "env", cfg.Env)
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
