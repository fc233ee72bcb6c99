package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/woodid012/renew-portfolio-api/internal/api/handlers"
	"github.com/woodid012/renew-portfolio-api/internal/testutil"
)

// TestAssetHandler_MergeAssetFields tests the POST /api/merge-asset-fields endpoint.
func TestAssetHandler_MergeAssetFields(t *testing.T) {
	t.Run("reports matched and missing assets", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		testutil.CreateAssetInput(t, store, "Solar A", map[string]any{"capacity": 100.0})
		handler := handlers.NewAssetHandler(testutil.NewTestAssetService(t, store))

		w := httptest.NewRecorder()
		handler.MergeAssetFields(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/merge-asset-fields", map[string]any{
			"assets": map[string]any{
				"Solar A": map[string]any{"capacity": 110.0},
				"Ghost":   map[string]any{"capacity": 1.0},
			},
		}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		body := testutil.DecodeJSON(t, w)
		if body["matched"] != float64(1) || body["modified"] != float64(1) || body["skipped"] != float64(1) {
			t.Errorf("Unexpected counts: %v", body)
		}
		if missing, ok := body["missing"].([]any); !ok || len(missing) != 1 || missing[0] != "Ghost" {
			t.Errorf("Expected Ghost missing, got %v", body["missing"])
		}
	})

	t.Run("missing assets object is 400", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		handler := handlers.NewAssetHandler(testutil.NewTestAssetService(t, store))

		w := httptest.NewRecorder()
		handler.MergeAssetFields(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/merge-asset-fields", map[string]any{}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestAssetHandler_AssetCashflows tests the GET /api/asset-cashflows endpoint.
//
// WHY: asset_id arrives as a query string and is stored as a number, so it must be
// parsed before querying; bad input is a client error, not an empty result.
func TestAssetHandler_AssetCashflows(t *testing.T) {
	store := testutil.SetupTestDB(t)
	testutil.CreateCashFlow(t, store, 3, "2026-02-01", 20)
	testutil.CreateCashFlow(t, store, 3, "2026-01-01", 10)
	handler := handlers.NewAssetHandler(testutil.NewTestAssetService(t, store))

	tests := []struct {
		name    string
		assetID string
		status  int
		error   string
		count   int
	}{
		{"returns sorted records", "3", http.StatusOK, "", 2},
		{"unknown asset is empty", "4", http.StatusOK, "", 0},
		{"missing parameter", "", http.StatusBadRequest, "Missing asset_id parameter", 0},
		{"non-integer", "abc", http.StatusBadRequest, "asset_id must be an integer", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/asset-cashflows", map[string]string{"asset_id": tt.assetID})
			w := httptest.NewRecorder()

			handler.AssetCashflows(w, req)

			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, w.Code)
			}
			body := testutil.DecodeJSON(t, w)
			if tt.error != "" {
				if body["error"] != tt.error {
					t.Errorf("Expected error %q, got %v", tt.error, body["error"])
				}
				return
			}
			data, ok := body["data"].([]any)
			if !ok || len(data) != tt.count {
				t.Fatalf("Expected %d records, got %v", tt.count, body["data"])
			}
			if tt.count > 0 && data[0].(map[string]any)["date"] != "2026-01-01" {
				t.Errorf("Expected records sorted by date, got %v", data)
			}
		})
	}
}
