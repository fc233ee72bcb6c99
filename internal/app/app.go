// Package app wires the document store, repositories, services and router into one application context.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/phuslu/log"

	"github.com/woodid012/renew-portfolio-api/internal/api"
	"github.com/woodid012/renew-portfolio-api/internal/backend"
	"github.com/woodid012/renew-portfolio-api/internal/config"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/metrics"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
	"github.com/woodid012/renew-portfolio-api/internal/service"
)

// App holds the shared store client and everything built on it.
// It is constructed once at startup and closed at shutdown.
type App struct {
	Config   *config.Config
	Store    database.Store
	Metrics  *metrics.Metrics
	Services api.Services
	Handler  http.Handler
}

// New opens the configured store and wires the application around it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a, err := NewWithStore(ctx, cfg, store)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	return a, nil
}

// NewWithStore wires the application around an already opened store.
func NewWithStore(ctx context.Context, cfg *config.Config, store database.Store) (*App, error) {
	if err := repository.EnsureIndexes(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	m := metrics.New()

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(store)
	settingsRepo := repository.NewModelSettingsRepository(store)
	settingRepo := repository.NewAppSettingRepository(store)
	assetRepo := repository.NewAssetInputRepository(store)
	cashFlowRepo := repository.NewCashFlowRepository(store)

	// Create services
	allocator := service.NewUniqueIDAllocator(portfolioRepo, m)
	gateway := backend.NewGateway(cfg.BackendURL(), m)

	svc := api.Services{
		System:      service.NewSystemService(store, gateway, cfg.Database.Driver, gateway.BaseURL()),
		Portfolio:   service.NewPortfolioService(portfolioRepo, settingRepo, allocator),
		Settings:    service.NewSettingsService(settingsRepo),
		Asset:       service.NewAssetService(assetRepo, cashFlowRepo),
		Import:      service.NewImportService(portfolioRepo, allocator, cfg.Import.File),
		Maintenance: service.NewMaintenanceService(portfolioRepo, settingsRepo, settingRepo, allocator, m),
		Gateway:     gateway,
		Metrics:     m,
	}

	log.Info().Str("driver", cfg.Database.Driver).Str("backend", gateway.BaseURL()).Msg("application wired")

	return &App{
		Config:   cfg,
		Store:    store,
		Metrics:  m,
		Services: svc,
		Handler:  api.NewRouter(svc, cfg),
	}, nil
}

// StartMaintenance runs the startup backfill when enabled and schedules the periodic one.
func (a *App) StartMaintenance(ctx context.Context) error {
	if a.Config.Maintenance.BackfillOnStartup {
		if _, err := a.Services.Maintenance.BackfillUniqueIDs(ctx); err != nil {
			log.Error().Err(err).Msg("startup unique_id backfill failed")
		}
	}
	return a.Services.Maintenance.Start(a.Config.Maintenance.BackfillSchedule)
}

// Close stops scheduled maintenance and closes the store.
func (a *App) Close(ctx context.Context) error {
	a.Services.Maintenance.Stop(ctx)
	return a.Store.Close(ctx)
}
