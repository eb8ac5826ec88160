package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/brfin/caixa-api/internal/document"
	"github.com/brfin/caixa-api/internal/ingest/handler"
	"github.com/brfin/caixa-api/internal/ingest/repository"
	"github.com/brfin/caixa-api/internal/ingest/service"
	"github.com/brfin/caixa-api/internal/jobs/inmemory"
	"github.com/brfin/caixa-api/internal/reports"
	"github.com/brfin/caixa-api/pkg/config"
	"github.com/brfin/caixa-api/pkg/db"
	"github.com/brfin/caixa-api/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Repositories
	IngestRepo repository.IngestRepository
	ReportRepo *reports.Repository

	// Job infrastructure
	JobStore *inmemory.Store
	Queue    *inmemory.Queue

	// Services
	IngestService *service.IngestService
	ReportService *reports.Service

	// Handlers
	IngestAPI  *handler.IngestAPI
	ReportsAPI *reports.API
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initMetrics()
	deps.initRepositories()

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initMetrics wires the Prometheus registry when metrics are enabled.
func (d *Dependencies) initMetrics() {
	if !d.Config.Observability.MetricsEnabled {
		return
	}
	d.Registry = prometheus.NewRegistry()
	d.Metrics = metrics.New(d.Registry)
	d.Logger.Info("metrics registry initialized")
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.IngestRepo = repository.NewPostgresIngestRepository(d.DB.Pool)
	d.ReportRepo = reports.NewRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.JobStore = inmemory.NewStore()
	d.Queue = inmemory.NewQueue(
		d.Config.Ingest.QueueSize,
		d.Config.Ingest.WorkerCount,
		d.Config.Ingest.MaxRetries,
		d.JobStore,
	)

	d.IngestService = service.NewIngestService(
		d.IngestRepo,
		document.NewJSONExtractor(),
		d.Metrics,
		d.Logger,
	)

	d.ReportService = reports.NewService(d.ReportRepo, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	uploadDir := filepath.Join(os.TempDir(), "caixa-uploads")
	if err := os.MkdirAll(uploadDir, 0o700); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	d.IngestAPI = handler.NewIngestAPI(d.IngestService, d.Queue, d.JobStore, uploadDir, d.Logger)
	d.ReportsAPI = reports.NewAPI(d.ReportService, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Queue != nil {
		if err := d.Queue.Close(); err != nil {
			d.Logger.Warn("failed to close job queue", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
