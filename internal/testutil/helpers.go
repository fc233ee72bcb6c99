package testutil

import (
	"math/rand"
	"testing"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
	"github.com/woodid012/renew-portfolio-api/internal/service"
)

// NewTestAllocator creates a unique_id allocator checking against the store's portfolios.
func NewTestAllocator(t *testing.T, store database.Store) *service.UniqueIDAllocator {
	t.Helper()

	return service.NewUniqueIDAllocator(repository.NewPortfolioRepository(store), nil)
}

func NewTestPortfolioService(t *testing.T, store database.Store) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewPortfolioRepository(store),
		repository.NewAppSettingRepository(store),
		NewTestAllocator(t, store),
	)
}

func NewTestSettingsService(t *testing.T, store database.Store) *service.SettingsService {
	t.Helper()

	return service.NewSettingsService(repository.NewModelSettingsRepository(store))
}

func NewTestAssetService(t *testing.T, store database.Store) *service.AssetService {
	t.Helper()

	return service.NewAssetService(
		repository.NewAssetInputRepository(store),
		repository.NewCashFlowRepository(store),
	)
}

// NewTestImportService creates an ImportService reading the reserved portfolio from path.
func NewTestImportService(t *testing.T, store database.Store, path string) *service.ImportService {
	t.Helper()

	return service.NewImportService(
		repository.NewPortfolioRepository(store),
		NewTestAllocator(t, store),
		path,
	)
}

func NewTestMaintenanceService(t *testing.T, store database.Store) *service.MaintenanceService {
	t.Helper()

	return service.NewMaintenanceService(
		repository.NewPortfolioRepository(store),
		repository.NewModelSettingsRepository(store),
		repository.NewAppSettingRepository(store),
		NewTestAllocator(t, store),
		nil,
	)
}

// MakeUniqueID generates a well-formed 21-character unique_id.
func MakeUniqueID() string {
	return gonanoid.Must()
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeAssetName generates a unique asset name for testing.
func MakeAssetName(base string) string {
	if base == "" {
		base = "Asset"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
