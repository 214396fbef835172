package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/application/service"
	"github.com/apdesk/apdesk/internal/config"
	"github.com/apdesk/apdesk/internal/infrastructure/external/airtable"
	"github.com/apdesk/apdesk/internal/infrastructure/external/lark"
	"github.com/apdesk/apdesk/internal/infrastructure/external/openai"
	"github.com/apdesk/apdesk/internal/infrastructure/persistence/repository"
	"github.com/apdesk/apdesk/internal/infrastructure/persistence/sqlite"
	"github.com/apdesk/apdesk/internal/infrastructure/storage"
	"github.com/apdesk/apdesk/internal/infrastructure/worker"
	httpserver "github.com/apdesk/apdesk/internal/interfaces/http"
	"github.com/apdesk/apdesk/pkg/database"
	"github.com/apdesk/apdesk/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Pick up a local .env before viper reads the environment
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting AP Desk",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Local working store
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	for _, dir := range []string{
		cfg.Ingest.InboxDir,
		cfg.Ingest.ArchiveDir,
		cfg.Ingest.QuarantineDir,
		cfg.Export.OutputDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("Failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	txManager := sqlite.NewDB(db.DB, logger)
	activityRepo := repository.NewActivityRepository(db.DB, logger)
	fileHashRepo := repository.NewFileHashRepository(db.DB, logger)
	exportRepo := repository.NewExportRepository(db.DB, logger)

	// External adapters
	store := airtable.NewClient(airtable.Config{
		APIKey:     cfg.Airtable.APIKey,
		BaseID:     cfg.Airtable.BaseID,
		Table:      cfg.Airtable.InvoiceTable,
		BaseURL:    cfg.Airtable.BaseURL,
		Timeout:    cfg.Airtable.Timeout,
		MaxRetries: cfg.Airtable.MaxRetries,
	}, logger)

	extractor := openai.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)

	vault := storage.NewLocalVault(cfg.Ingest.ArchiveDir, cfg.Ingest.QuarantineDir, logger)

	var notifier port.Notifier
	if cfg.Lark.AppID != "" {
		notifier = lark.NewNotifier(lark.Config{
			AppID:          cfg.Lark.AppID,
			AppSecret:      cfg.Lark.AppSecret,
			ReviewerOpenID: cfg.Lark.ReviewerOpenID,
		}, logger)
		logger.Info("Reviewer notifications enabled")
	}

	// Application services
	kv := utils.NewKVLogger(logger)
	dedupeService := service.NewDedupeService(fileHashRepo, store, kv)
	ingestService := service.NewIngestService(
		dedupeService,
		extractor,
		store,
		vault,
		notifier,
		cfg.Ingest.InboxDir,
		kv,
	)
	worklistService := service.NewWorklistService(store, activityRepo, txManager, kv)
	reviewService := service.NewReviewService(store, activityRepo, notifier, kv)
	exportService := service.NewExportService(store, exportRepo, activityRepo, txManager, cfg.Export.OutputDir, kv)

	// Background workers
	manager := worker.NewManager(logger)
	manager.Register(worker.NewIngestWorker(ingestService, cfg.Ingest.ScanInterval, logger))
	manager.Register(worker.NewSyncWorker(worklistService, cfg.Ingest.SyncInterval, logger))

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, worklistService, reviewService, exportService, kv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := manager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server failed", zap.Error(err))
	}

	manager.StopAll()
	logger.Info("Server exited successfully")
}
