package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/woodid012/renew-portfolio-api/internal/service"
	"github.com/woodid012/renew-portfolio-api/internal/version"
)

var testNow = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

// TestSystemService_CheckHealth tests the combined store and backend health report.
//
// WHY: Only the document store is required to serve requests. A down modeling backend
// degrades the model routes but must not flag the whole service unhealthy.
func TestSystemService_CheckHealth(t *testing.T) {
	ctx := context.Background()
	down := errors.New("connection refused")

	tests := []struct {
		name     string
		store    error
		backend  error
		status   string
		database string
		upstream string
	}{
		{"all up", nil, nil, "healthy", "connected", "reachable"},
		{"backend down", nil, down, "healthy", "connected", "unreachable"},
		{"store down", down, nil, "unhealthy", "disconnected", "reachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewSystemService(stubPinger{tt.store}, stubPinger{tt.backend}, "sqlite", "http://backend")
			got := svc.CheckHealth(ctx)

			if got.Status != tt.status || got.Database != tt.database || got.Backend != tt.upstream {
				t.Errorf("Expected %s/%s/%s, got %+v", tt.status, tt.database, tt.upstream, got)
			}
			if tt.store != nil && got.Error != tt.store.Error() {
				t.Errorf("Expected error %q, got %q", tt.store.Error(), got.Error)
			}
		})
	}
}

// TestSystemService_CheckVersion tests the version report.
func TestSystemService_CheckVersion(t *testing.T) {
	svc := service.NewSystemService(stubPinger{}, stubPinger{}, "mongodb", "http://backend:8000")
	info := svc.CheckVersion()

	if info.AppVersion != version.Version || info.Database != "mongodb" || info.Backend != "http://backend:8000" {
		t.Errorf("Unexpected version info: %+v", info)
	}
}
