package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/woodid012/renew-portfolio-api/internal/api/handlers"
	"github.com/woodid012/renew-portfolio-api/internal/testutil"
)

// TestMaintenanceHandler_ImportPortfolio tests the POST /api/import-portfolio endpoint.
//
// WHY: The import reads a server-side file. A missing file must be a 404 the operator can
// act on, and repeated imports must report "updated" rather than creating duplicates.
func TestMaintenanceHandler_ImportPortfolio(t *testing.T) {
	t.Run("missing file is 404", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		handler := handlers.NewMaintenanceHandler(
			testutil.NewTestImportService(t, store, filepath.Join(t.TempDir(), "absent.json")),
			testutil.NewTestMaintenanceService(t, store),
		)

		w := httptest.NewRecorder()
		handler.ImportPortfolio(w, httptest.NewRequest(http.MethodPost, "/api/import-portfolio", nil))

		if w.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", w.Code)
		}
		if body := testutil.DecodeJSON(t, w); body["error"] != "Import file not found" {
			t.Errorf("Unexpected error: %v", body["error"])
		}
	})

	t.Run("uploads then updates", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		path := filepath.Join(t.TempDir(), "zebre.json")
		if err := os.WriteFile(path, []byte(`{"asset_inputs": [{"name": "Solar A"}, {"name": "Wind B"}]}`), 0o600); err != nil {
			t.Fatalf("Failed to write import file: %v", err)
		}
		handler := handlers.NewMaintenanceHandler(
			testutil.NewTestImportService(t, store, path),
			testutil.NewTestMaintenanceService(t, store),
		)

		w := httptest.NewRecorder()
		handler.ImportPortfolio(w, httptest.NewRequest(http.MethodPost, "/api/import-portfolio", nil))
		first := testutil.DecodeJSON(t, w)
		if first["message"] != "ZEBRE data uploaded successfully" || first["action"] != "created" || first["assetsCount"] != float64(2) {
			t.Errorf("Unexpected first import: %v", first)
		}

		w = httptest.NewRecorder()
		handler.ImportPortfolio(w, httptest.NewRequest(http.MethodPost, "/api/import-portfolio", nil))
		second := testutil.DecodeJSON(t, w)
		if second["message"] != "ZEBRE data updated successfully" || second["action"] != "updated" {
			t.Errorf("Unexpected second import: %v", second)
		}
		if second["unique_id"] != first["unique_id"] || second["documentId"] != first["documentId"] {
			t.Errorf("Expected the same portfolio, got %v and %v", first, second)
		}
	})
}

// TestMaintenanceHandler_BackfillUniqueIDs tests the POST /api/maintenance/backfill-unique-ids endpoint.
func TestMaintenanceHandler_BackfillUniqueIDs(t *testing.T) {
	store := testutil.SetupTestDB(t)
	testutil.NewPortfolio().WithUniqueID("legacy").Build(t, store)
	testutil.CreatePortfolio(t, store, "Acme")
	handler := handlers.NewMaintenanceHandler(
		testutil.NewTestImportService(t, store, ""),
		testutil.NewTestMaintenanceService(t, store),
	)

	w := httptest.NewRecorder()
	handler.BackfillUniqueIDs(w, httptest.NewRequest(http.MethodPost, "/api/maintenance/backfill-unique-ids", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := testutil.DecodeJSON(t, w)
	if body["scanned"] != float64(2) || body["assigned"] != float64(1) {
		t.Errorf("Unexpected counts: %v", body)
	}
	reassigned, ok := body["reassigned"].(map[string]any)
	if !ok || reassigned["legacy"] == nil {
		t.Errorf("Expected legacy to be reassigned, got %v", body["reassigned"])
	}
}
