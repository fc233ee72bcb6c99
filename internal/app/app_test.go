package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/woodid012/renew-portfolio-api/internal/app"
	"github.com/woodid012/renew-portfolio-api/internal/config"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
	"github.com/woodid012/renew-portfolio-api/internal/testutil"
	"github.com/woodid012/renew-portfolio-api/internal/validation"
)

// TestNewWithStore tests application wiring on an embedded store.
//
// WHY: Startup runs the unique_id backfill before serving. A wiring mistake or a failing
// startup job should surface here rather than on the first production request.
func TestNewWithStore(t *testing.T) {
	ctx := context.Background()
	store, err := database.OpenSQLite(ctx, database.MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	testutil.NewPortfolio().WithUniqueID("legacy").Build(t, store)

	cfg := config.NewDefaultConfig()
	cfg.Database.Driver = "sqlite"
	a, err := app.NewWithStore(ctx, cfg, store)
	if err != nil {
		t.Fatalf("NewWithStore() returned unexpected error: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(context.Background()); err != nil {
			t.Errorf("Close() returned unexpected error: %v", err)
		}
	})

	if err := a.StartMaintenance(ctx); err != nil {
		t.Fatalf("StartMaintenance() returned unexpected error: %v", err)
	}

	docs := testutil.FindDocuments(t, store, repository.CollectionPortfolios, database.All())
	if len(docs) != 1 || !validation.IsUniqueID(docs[0][model.FieldUniqueID].(string)) {
		t.Errorf("Expected the startup backfill to replace the legacy id, got %v", docs)
	}

	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/test-connection", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}
