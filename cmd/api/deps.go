package main

import (
	"fmt"
	"log/slog"

	"fintrack/internal/domain/expense"
	"fintrack/internal/infrastructure/memory"
	"fintrack/internal/infrastructure/postgres"
	httphandlers "fintrack/internal/interfaces/http"
	"fintrack/internal/shared/auth"
	"fintrack/internal/shared/config"
	"fintrack/internal/shared/logging"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	// DB is nil when the memory backend is selected.
	DB *postgres.DB

	ExpenseService *expense.Service

	// Handlers
	ExpenseHandler *httphandlers.ExpenseHandler
	HealthHandler  *httphandlers.HealthHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{JWT: auth.NewJWT(cfg.JWT.Secret)}

	repo, err := deps.openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	deps.ExpenseService = expense.NewService(repo,
		expense.WithDefaultCurrency(cfg.Expense.DefaultCurrency),
		expense.WithLocation(cfg.Expense.Location),
	)
	deps.ExpenseHandler = httphandlers.NewExpenseHandler(deps.ExpenseService)

	var pinger httphandlers.Pinger
	if deps.DB != nil {
		pinger = deps.DB
	}
	deps.HealthHandler = httphandlers.NewHealthHandler(pinger)

	return deps, nil
}

func (d *Dependencies) openStorage(cfg *config.Config, logger *slog.Logger) (expense.Repository, error) {
	logger = logger.With(logging.FieldComponent, "storage", "backend", cfg.Storage.Backend)

	if cfg.Storage.Backend == config.BackendMemory {
		logger.Warn("using in-memory expense storage, data is lost on restart")
		return memory.NewExpenseRepository(), nil
	}

	db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolConfig{})
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.DBName)

	if cfg.Storage.AutoMigrate {
		version, err := postgres.RunMigrations(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		logger.Info("schema up to date", "version", version)
	}

	d.DB = db
	return postgres.NewExpenseRepository(db), nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
