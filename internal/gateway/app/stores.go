package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"codegate/internal/analysis"
	"codegate/internal/gateway/config"
	reportrepo "codegate/internal/gateway/repository/report"
	snapshotrepo "codegate/internal/gateway/repository/snapshot"
	"codegate/internal/taskctx"
)

type gatewayStores struct {
	reports   analysis.ReportStore
	tasks     taskctx.Store
	snapshots analysis.SnapshotStore
}

func initStores(cfg *config.Config, logger *slog.Logger) (*gatewayStores, error) {
	snapshots := initSnapshotStore(cfg, logger)

	if cfg.DatabaseURL != "" {
		return initPostgresStores(cfg, snapshots, logger)
	}

	logger.Warn("DATABASE_URL is not set, using in-memory stores")
	return &gatewayStores{
		reports:   reportrepo.NewMemoryStore(),
		tasks:     taskctx.NewMemoryStore(),
		snapshots: snapshots,
	}, nil
}

func initPostgresStores(cfg *config.Config, snapshots analysis.SnapshotStore, logger *slog.Logger) (*gatewayStores, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	reports, err := reportrepo.NewPostgresStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report store: %w", err)
	}
	tasks, err := taskctx.NewPostgresStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task context store: %w", err)
	}

	logger.Info("stores: postgres")
	return &gatewayStores{
		reports:   reports,
		tasks:     tasks,
		snapshots: snapshots,
	}, nil
}

func initSnapshotStore(cfg *config.Config, logger *slog.Logger) analysis.SnapshotStore {
	if !cfg.Snapshot.Enabled {
		return nil
	}
	s3, err := snapshotrepo.NewS3Store(snapshotrepo.S3Config{
		Endpoint:  cfg.Snapshot.Endpoint,
		Region:    cfg.Snapshot.Region,
		AccessKey: cfg.Snapshot.AccessKey,
		SecretKey: cfg.Snapshot.SecretKey,
		Bucket:    cfg.Snapshot.Bucket,
		UseSSL:    cfg.Snapshot.UseSSL,
	})
	if err != nil {
		logger.Warn("snapshot store disabled", "err", err)
		return nil
	}
	logger.Info("snapshot store: s3", "bucket", cfg.Snapshot.Bucket, "endpoint", cfg.Snapshot.Endpoint)
	return s3
}
