package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/woodid012/renew-portfolio-api/internal/api/handlers"
	custommiddleware "github.com/woodid012/renew-portfolio-api/internal/api/middleware"
	"github.com/woodid012/renew-portfolio-api/internal/backend"
	"github.com/woodid012/renew-portfolio-api/internal/config"
	"github.com/woodid012/renew-portfolio-api/internal/metrics"
	"github.com/woodid012/renew-portfolio-api/internal/service"
)

// Services groups the dependencies the router hands to its handlers.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Settings    *service.SettingsService
	Asset       *service.AssetService
	Import      *service.ImportService
	Maintenance *service.MaintenanceService
	Gateway     *backend.Gateway
	Metrics     *metrics.Metrics
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(svc.Metrics))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Method(http.MethodGet, "/metrics", svc.Metrics.Handler())

	systemHandler := handlers.NewSystemHandler(svc.System)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings)
	assetHandler := handlers.NewAssetHandler(svc.Asset)
	maintenanceHandler := handlers.NewMaintenanceHandler(svc.Import, svc.Maintenance)
	modelHandler := handlers.NewModelHandler(svc.Gateway)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})
		r.Get("/test-connection", systemHandler.TestConnection)

		// Portfolio configuration
		r.Get("/list-portfolios", portfolioHandler.ListPortfolios)
		r.Post("/create-portfolio", portfolioHandler.CreatePortfolio)
		r.Get("/get-portfolio-unique-id", portfolioHandler.GetPortfolioUniqueID)
		r.Get("/portfolio", portfolioHandler.GetPortfolio)
		r.Post("/save-portfolio", portfolioHandler.SavePortfolio)
		r.Post("/update-platform-name", portfolioHandler.UpdatePlatformName)
		r.Post("/update-portfolio-title", portfolioHandler.UpdatePortfolioTitle)
		r.Delete("/delete-portfolio", portfolioHandler.DeletePortfolio)
		r.Get("/default-portfolio", portfolioHandler.GetDefaultPortfolio)
		r.Post("/default-portfolio", portfolioHandler.SetDefaultPortfolio)

		// Model settings
		r.Get("/model-settings", settingsHandler.GetModelSettings)
		r.Post("/model-settings", settingsHandler.SaveModelSettings)

		// Assets and imports
		r.Post("/import-portfolio", maintenanceHandler.ImportPortfolio)
		r.Post("/merge-asset-fields", assetHandler.MergeAssetFields)
		r.Get("/asset-cashflows", assetHandler.AssetCashflows)
		r.Post("/maintenance/backfill-unique-ids", maintenanceHandler.BackfillUniqueIDs)

		// Modeling backend proxy
		r.Route("/model", func(r chi.Router) {
			r.Use(custommiddleware.RateLimit(cfg.Backend.RateLimit, cfg.Backend.RateBurst))
			r.Post("/run-model", modelHandler.RunModel)
			r.Post("/sensitivity", modelHandler.Sensitivity)
			r.Post("/sensitivity-stream", modelHandler.SensitivityStream)
			r.Post("/price-curves/upload", modelHandler.UploadPriceCurves)
			r.Post("/price-curves/analyze", modelHandler.AnalyzePriceCurves)
			r.Get("/asset-cashflows", modelHandler.AssetCashflows)
		})
	})

	return r
}
