package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/version"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemService handles system-related operations
type SystemService struct {
	store   Pinger
	backend Pinger
	driver  string
	baseURL string
}

// NewSystemService creates a new SystemService
func NewSystemService(store, backend Pinger, driver, baseURL string) *SystemService {
	return &SystemService{
		store:   store,
		backend: backend,
		driver:  driver,
		baseURL: baseURL,
	}
}

// CheckDatabase pings the document store.
func (s *SystemService) CheckDatabase(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CheckHealth pings the store and the modeling backend in parallel.
// The service is healthy only when the store answers; an unreachable backend is reported but not fatal.
func (s *SystemService) CheckHealth(ctx context.Context) model.HealthStatus {
	var dbErr, backendErr error

	var g errgroup.Group
	g.Go(func() error {
		dbErr = s.store.Ping(ctx)
		return nil
	})
	g.Go(func() error {
		backendErr = s.backend.Ping(ctx)
		return nil
	})
	_ = g.Wait()

	status := model.HealthStatus{Status: "healthy", Database: "connected", Backend: "reachable"}
	if backendErr != nil {
		status.Backend = "unreachable"
	}
	if dbErr != nil {
		status.Status = "unhealthy"
		status.Database = "disconnected"
		status.Error = dbErr.Error()
	}
	return status
}

// CheckVersion returns the application version and the configured dependencies.
func (s *SystemService) CheckVersion() model.VersionInfo {
	return model.VersionInfo{
		AppVersion: version.Version,
		Database:   s.driver,
		Backend:    s.baseURL,
	}
}
