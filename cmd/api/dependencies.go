package main

import (
	"fmt"
	"log/slog"
	"time"

	importhandler "github.com/paisa-app/paisa-api/internal/domain/import/handler"
	importrepo "github.com/paisa-app/paisa-api/internal/domain/import/repository"
	importservice "github.com/paisa-app/paisa-api/internal/domain/import/service"
	"github.com/paisa-app/paisa-api/pkg/config"
	"github.com/paisa-app/paisa-api/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	AccountStore     importrepo.AccountStore
	CategoryStore    importrepo.CategoryStore
	TransactionStore importrepo.TransactionStore

	// Services
	ImportService *importservice.ImportService

	// Handlers
	ImportHandler *importhandler.ImportHandler
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

	deps.initRepositories()
	deps.initServices()
	deps.initHandlers()

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

func (d *Dependencies) initRepositories() {
	d.AccountStore = importrepo.NewPostgresAccountStore(d.DB.Pool)
	d.CategoryStore = importrepo.NewPostgresCategoryStore(d.DB.Pool)
	d.TransactionStore = importrepo.NewPostgresTransactionStore(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices() {
	d.ImportService = importservice.NewImportService(
		d.AccountStore,
		d.CategoryStore,
		d.TransactionStore,
		d.Logger,
		d.Config.Import.MaxRows,
		d.Config.Import.PreviewRows,
	)

	d.Logger.Info("services initialized")
}

func (d *Dependencies) initHandlers() {
	d.ImportHandler = importhandler.NewImportHandler(
		d.ImportService,
		d.Config.Import.MaxUploadBytes,
		d.Logger,
	)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
