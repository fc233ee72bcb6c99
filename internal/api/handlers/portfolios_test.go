package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/woodid012/renew-portfolio-api/internal/api/handlers"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/testutil"
)

func newPortfolioHandler(t *testing.T, store database.Store) *handlers.PortfolioHandler {
	t.Helper()
	return handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, store))
}

// TestPortfolioHandler_ListPortfolios tests the GET /api/list-portfolios endpoint.
//
// WHY: This feeds the portfolio picker on every page load. The envelope shape, including a
// null defaultPortfolio when none is set, is what the frontend destructures.
func TestPortfolioHandler_ListPortfolios(t *testing.T) {
	t.Run("empty store returns an empty list and null default", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		w := httptest.NewRecorder()

		newPortfolioHandler(t, store).ListPortfolios(w, httptest.NewRequest(http.MethodGet, "/api/list-portfolios", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %q", ct)
		}
		body := testutil.DecodeJSON(t, w)
		if body["success"] != true {
			t.Errorf("Expected success true, got %v", body["success"])
		}
		if list, ok := body["portfolios"].([]any); !ok || len(list) != 0 {
			t.Errorf("Expected empty portfolios array, got %v", body["portfolios"])
		}
		if v, ok := body["defaultPortfolio"]; !ok || v != nil {
			t.Errorf("Expected null defaultPortfolio, got %v", v)
		}
	})

	t.Run("lists portfolios with their labels", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		p := testutil.NewPortfolio().WithName("Acme").WithTitle("Acme Energy").WithAssets(2).Build(t, store)
		w := httptest.NewRecorder()

		newPortfolioHandler(t, store).ListPortfolios(w, httptest.NewRequest(http.MethodGet, "/api/list-portfolios", nil))

		body := testutil.DecodeJSON(t, w)
		list := body["portfolios"].([]any)
		if len(list) != 1 {
			t.Fatalf("Expected 1 portfolio, got %d", len(list))
		}
		entry := list[0].(map[string]any)
		if entry["unique_id"] != p.UniqueID || entry["name"] != "Acme" || entry["title"] != "Acme Energy" {
			t.Errorf("Unexpected entry: %v", entry)
		}
		if entry["assetCount"] != float64(2) {
			t.Errorf("Expected assetCount 2, got %v", entry["assetCount"])
		}
	})
}

// TestPortfolioHandler_CreatePortfolio tests the POST /api/create-portfolio endpoint.
//
// WHY: Create is idempotent by name. The message tells the UI whether it created or found
// a portfolio, and both cases must return the same unique_id.
func TestPortfolioHandler_CreatePortfolio(t *testing.T) {
	t.Run("creates then reports existing", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		handler := newPortfolioHandler(t, store)

		w := httptest.NewRecorder()
		handler.CreatePortfolio(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/create-portfolio", map[string]string{"portfolio": "Acme"}))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		first := testutil.DecodeJSON(t, w)
		if first["message"] != "Portfolio created successfully" || first["portfolio"] != "Acme" {
			t.Errorf("Unexpected create response: %v", first)
		}

		w = httptest.NewRecorder()
		handler.CreatePortfolio(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/create-portfolio", map[string]string{"portfolio": "Acme"}))
		second := testutil.DecodeJSON(t, w)
		if second["message"] != "Portfolio already exists" {
			t.Errorf("Expected existing message, got %v", second["message"])
		}
		if second["unique_id"] != first["unique_id"] || second["_id"] != first["_id"] {
			t.Errorf("Expected the same portfolio, got %v and %v", first, second)
		}
	})

	t.Run("missing name is 400", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		w := httptest.NewRecorder()

		newPortfolioHandler(t, store).CreatePortfolio(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/create-portfolio", map[string]string{}))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", w.Code)
		}
		if body := testutil.DecodeJSON(t, w); body["error"] != "Portfolio name is required" {
			t.Errorf("Unexpected error: %v", body["error"])
		}
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		req := httptest.NewRequest(http.MethodPost, "/api/create-portfolio", http.NoBody)
		w := httptest.NewRecorder()

		newPortfolioHandler(t, store).CreatePortfolio(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestPortfolioHandler_GetPortfolioUniqueID tests the GET /api/get-portfolio-unique-id endpoint.
//
// WHY: Bookmarked URLs carry names or titles. The lookup must resolve them to the stable id
// and echo the token in a 404 so the UI can show what failed.
func TestPortfolioHandler_GetPortfolioUniqueID(t *testing.T) {
	store := testutil.SetupTestDB(t)
	p := testutil.NewPortfolio().WithName("Acme").WithTitle("Acme Energy").Build(t, store)
	handler := newPortfolioHandler(t, store)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"by unique_id", p.UniqueID, http.StatusOK},
		{"by name", "Acme", http.StatusOK},
		{"by title", "Acme Energy", http.StatusOK},
		{"unknown", "Nowhere", http.StatusNotFound},
		{"missing", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/get-portfolio-unique-id", map[string]string{"portfolio": tt.token})
			w := httptest.NewRecorder()

			handler.GetPortfolioUniqueID(w, req)

			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			body := testutil.DecodeJSON(t, w)
			switch tt.status {
			case http.StatusOK:
				if body["unique_id"] != p.UniqueID || body["portfolio"] != tt.token {
					t.Errorf("Unexpected response: %v", body)
				}
			case http.StatusNotFound:
				if body["error"] != "Portfolio not found" || body["portfolio"] != tt.token {
					t.Errorf("Expected the token to be echoed, got %v", body)
				}
			}
		})
	}
}

// TestPortfolioHandler_GetPortfolio tests the GET /api/portfolio endpoint.
func TestPortfolioHandler_GetPortfolio(t *testing.T) {
	store := testutil.SetupTestDB(t)
	p := testutil.NewPortfolio().WithName("Acme").WithAssets(1).Build(t, store)

	w := httptest.NewRecorder()
	newPortfolioHandler(t, store).GetPortfolio(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio", map[string]string{"portfolio": "Acme"}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := testutil.DecodeJSON(t, w)
	if body["_id"] != p.ID || body["PlatformName"] != "Acme" || body["unique_id"] != p.UniqueID {
		t.Errorf("Unexpected document: %v", body)
	}
	if assets, ok := body["asset_inputs"].([]any); !ok || len(assets) != 1 {
		t.Errorf("Expected one asset, got %v", body["asset_inputs"])
	}
}

// TestPortfolioHandler_SavePortfolio tests the POST /api/save-portfolio endpoint.
func TestPortfolioHandler_SavePortfolio(t *testing.T) {
	t.Run("replaces the document", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		p := testutil.CreatePortfolio(t, store, "Acme")

		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).SavePortfolio(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/save-portfolio", map[string]any{
			"_id":          p.ID,
			"PlatformName": "Acme",
			"asset_inputs": []map[string]any{{"name": "Solar A"}},
		}))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		body := testutil.DecodeJSON(t, w)
		if body["success"] != true || body["unique_id"] != p.UniqueID || body["matched"] != float64(1) {
			t.Errorf("Unexpected response: %v", body)
		}
	})

	t.Run("keys outside the model survive save and load", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		p := testutil.CreatePortfolio(t, store, "Acme")
		handler := newPortfolioHandler(t, store)

		w := httptest.NewRecorder()
		handler.SavePortfolio(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/save-portfolio", map[string]any{
			"_id":             p.ID,
			"unique_id":       p.UniqueID,
			"PlatformName":    "Acme",
			"portfolio_costs": map[string]any{"capex": 120.5},
			"notes":           "phase 2 pending",
		}))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		handler.GetPortfolio(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio", map[string]string{"portfolio": p.UniqueID}))
		body := testutil.DecodeJSON(t, w)
		if body["notes"] != "phase 2 pending" {
			t.Errorf("Expected notes to be kept, got %v", body["notes"])
		}
		if costs, ok := body["portfolio_costs"].(map[string]any); !ok || costs["capex"] != 120.5 {
			t.Errorf("Expected portfolio_costs to be kept, got %v", body["portfolio_costs"])
		}
		if body["_id"] != p.ID || body["PortfolioTitle"] != "Acme" {
			t.Errorf("Unexpected document: %v", body)
		}
	})

	t.Run("missing _id is 400", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).SavePortfolio(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/save-portfolio", map[string]any{"PlatformName": "Acme"}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestPortfolioHandler_Rename tests the update-platform-name and update-portfolio-title endpoints.
//
// WHY: The UI distinguishes "updated" from "unchanged" and shows the previous value on
// change. Legacy clients send the title under platformName.
func TestPortfolioHandler_Rename(t *testing.T) {
	t.Run("title change then unchanged", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		p := testutil.CreatePortfolio(t, store, "Acme")
		handler := newPortfolioHandler(t, store)
		payload := map[string]string{"unique_id": p.UniqueID, "portfolioTitle": "Acme Energy"}

		w := httptest.NewRecorder()
		handler.UpdatePortfolioTitle(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/update-portfolio-title", payload))
		body := testutil.DecodeJSON(t, w)
		if body["message"] != "PortfolioTitle updated successfully" || body["previousTitle"] != "Acme" {
			t.Errorf("Unexpected update response: %v", body)
		}
		if body["documentsModified"] != float64(1) {
			t.Errorf("Expected documentsModified 1, got %v", body["documentsModified"])
		}

		w = httptest.NewRecorder()
		handler.UpdatePortfolioTitle(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/update-portfolio-title", payload))
		body = testutil.DecodeJSON(t, w)
		if body["message"] != "PortfolioTitle unchanged (already set to this value)" {
			t.Errorf("Unexpected unchanged response: %v", body)
		}
		if modified, ok := body["documentsModified"]; !ok || modified != float64(0) {
			t.Errorf("Expected documentsModified 0, got %v", modified)
		}
		if _, ok := body["previousTitle"]; ok {
			t.Error("Expected no previousTitle when unchanged")
		}
	})

	t.Run("legacy platformName key sets the title", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		p := testutil.CreatePortfolio(t, store, "Acme")

		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).UpdatePortfolioTitle(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/update-portfolio-title",
			map[string]string{"unique_id": p.UniqueID, "platformName": "Legacy Title"}))

		body := testutil.DecodeJSON(t, w)
		if body["portfolioTitle"] != "Legacy Title" {
			t.Errorf("Expected title from platformName, got %v", body)
		}
	})

	t.Run("platform name change", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		p := testutil.CreatePortfolio(t, store, "Acme")

		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).UpdatePlatformName(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/update-platform-name",
			map[string]string{"unique_id": p.UniqueID, "platformName": "Apex"}))

		body := testutil.DecodeJSON(t, w)
		if body["message"] != "PlatformName updated successfully" || body["previousPlatformName"] != "Acme" {
			t.Errorf("Unexpected response: %v", body)
		}
	})

	t.Run("unknown unique_id is 404", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		id := testutil.MakeUniqueID()

		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).UpdatePlatformName(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/update-platform-name",
			map[string]string{"unique_id": id, "platformName": "Apex"}))

		if w.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", w.Code)
		}
		body := testutil.DecodeJSON(t, w)
		if body["error"] != "Portfolio not found for the provided unique_id" || body["unique_id"] != id {
			t.Errorf("Unexpected response: %v", body)
		}
	})

	t.Run("missing fields are 400", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).UpdatePortfolioTitle(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/update-portfolio-title", map[string]string{}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestPortfolioHandler_DeletePortfolio tests the DELETE /api/delete-portfolio endpoint.
//
// WHY: Delete has several distinct outcomes the UI reports differently; the reserved
// import portfolio must be refused with 400.
func TestPortfolioHandler_DeletePortfolio(t *testing.T) {
	t.Run("deletes by unique_id", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		p := testutil.CreatePortfolio(t, store, "Acme")

		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).DeletePortfolio(w, testutil.NewJSONRequest(t, http.MethodDelete, "/api/delete-portfolio", map[string]string{"unique_id": p.UniqueID}))

		body := testutil.DecodeJSON(t, w)
		if w.Code != http.StatusOK || body["message"] != "Portfolio deleted successfully" || body["deletedCount"] != float64(1) {
			t.Errorf("Unexpected response %d: %v", w.Code, body)
		}
		if body["platformName"] != "Acme" {
			t.Errorf("Expected platformName Acme, got %v", body["platformName"])
		}
	})

	t.Run("unknown unique_id reports nothing to delete", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).DeletePortfolio(w, testutil.NewJSONRequest(t, http.MethodDelete, "/api/delete-portfolio", map[string]string{"unique_id": testutil.MakeUniqueID()}))

		body := testutil.DecodeJSON(t, w)
		if w.Code != http.StatusOK || body["message"] != "Portfolio does not exist" {
			t.Errorf("Unexpected response %d: %v", w.Code, body)
		}
	})

	t.Run("unknown name is 404", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).DeletePortfolio(w, testutil.NewJSONRequest(t, http.MethodDelete, "/api/delete-portfolio", map[string]string{"portfolio": "Nowhere"}))

		if w.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", w.Code)
		}
		if body := testutil.DecodeJSON(t, w); body["error"] != `Portfolio "Nowhere" not found or missing unique_id` {
			t.Errorf("Unexpected error: %v", body["error"])
		}
	})

	t.Run("reserved portfolio is 400", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		testutil.CreatePortfolio(t, store, model.ReservedPortfolioName)

		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).DeletePortfolio(w, testutil.NewJSONRequest(t, http.MethodDelete, "/api/delete-portfolio", map[string]string{"portfolio": model.ReservedPortfolioName}))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", w.Code)
		}
		if body := testutil.DecodeJSON(t, w); body["error"] != "Cannot delete default portfolio (ZEBRE)" {
			t.Errorf("Unexpected error: %v", body["error"])
		}
	})

	t.Run("no identifier is 400", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		w := httptest.NewRecorder()
		newPortfolioHandler(t, store).DeletePortfolio(w, testutil.NewJSONRequest(t, http.MethodDelete, "/api/delete-portfolio", map[string]string{}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestPortfolioHandler_DefaultPortfolio tests GET and POST /api/default-portfolio.
func TestPortfolioHandler_DefaultPortfolio(t *testing.T) {
	store := testutil.SetupTestDB(t)
	p := testutil.CreatePortfolio(t, store, "Acme")
	handler := newPortfolioHandler(t, store)

	t.Run("unknown unique_id is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.SetDefaultPortfolio(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/default-portfolio", map[string]string{"unique_id": "missing"}))

		if w.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", w.Code)
		}
		if body := testutil.DecodeJSON(t, w); body["error"] != `Portfolio with unique_id "missing" not found` {
			t.Errorf("Unexpected error: %v", body["error"])
		}
	})

	t.Run("set then get", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.SetDefaultPortfolio(w, testutil.NewJSONRequest(t, http.MethodPost, "/api/default-portfolio", map[string]string{"unique_id": p.UniqueID}))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		handler.GetDefaultPortfolio(w, httptest.NewRequest(http.MethodGet, "/api/default-portfolio", nil))
		if body := testutil.DecodeJSON(t, w); body["defaultPortfolio"] != p.UniqueID {
			t.Errorf("Expected default %s, got %v", p.UniqueID, body["defaultPortfolio"])
		}
	})
}
