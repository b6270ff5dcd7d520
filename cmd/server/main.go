package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"terroir/internal/assistant"
	"terroir/internal/assistant/claude"
	"terroir/internal/assistant/openai"
	"terroir/internal/config"
	"terroir/internal/domain"
	"terroir/internal/handler"
	"terroir/internal/importer"
	"terroir/internal/integrity"
	"terroir/internal/logging"
	"terroir/internal/metrics"
	"terroir/internal/port"
	"terroir/internal/repository/postgres"
	"terroir/internal/repository/sqlite"
	"terroir/internal/router"
	"terroir/internal/service"
	s3storage "terroir/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dossiers, audits, err := openStore(ctx, &cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	// Raw import archive is optional
	var archive port.ObjectStorage
	if cfg.Import.ArchiveRaw {
		archive, err = s3storage.NewArchive(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 archive: %w", err)
		}
	}

	// Register assistant providers explicitly
	assistant.RegisterProvider("claude", func(c *config.AssistantProviderConfig) (port.DossierAssistant, error) {
		return claude.New(c), nil
	})
	assistant.RegisterProvider("openai", func(c *config.AssistantProviderConfig) (port.DossierAssistant, error) {
		return openai.New(c), nil
	})
	chain, err := assistant.FromConfig(&cfg.Assistant)
	if err != nil {
		return fmt.Errorf("failed to initialize assistants: %w", err)
	}
	var drafter port.DossierAssistant
	if chain.Len() > 0 {
		drafter = chain
	} else {
		slog.Warn("no research assistant configured; drafting disabled")
	}

	pipeline := importer.New(
		importer.WithCache(cfg.Import.CacheSize),
		importer.WithMaxInputBytes(cfg.Import.MaxInputBytes),
	)
	m := metrics.New(pipeline.CachedPreviews)

	importSvc := service.NewImportService(
		pipeline,
		dossiers,
		audits,
		archive,
		drafter,
		integrity.NewNoopChecker(),
		m,
		cfg.Import,
		cfg.S3,
	)

	r := router.Setup(
		cfg,
		m,
		handler.NewImportHandler(importSvc),
		handler.NewDossierHandler(importSvc),
		handler.NewHealthHandler(db),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Port, "db_driver", cfg.DB.Driver, "assistants", chain.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.DBConfig) (*sqlx.DB, port.DossierRepository, port.ImportAuditRepository, error) {
	switch domain.DBDriver(cfg.Driver) {
	case domain.DBDriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return db, sqlite.NewDossierRepo(db), sqlite.NewImportAuditRepo(db), nil
	default:
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, postgres.NewDossierRepo(db), postgres.NewImportAuditRepo(db), nil
	}
}
