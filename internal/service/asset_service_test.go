package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
	"github.com/woodid012/renew-portfolio-api/internal/testutil"
)

// TestAssetService_MergeFields tests partial updates of asset inputs by name.
//
// WHY: Overrides arrive from spreadsheets that may name assets which do not exist yet.
// Those are reported back instead of failing the batch, and untouched fields must survive.
func TestAssetService_MergeFields(t *testing.T) {
	ctx := context.Background()

	t.Run("merges known assets and reports missing ones", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		testutil.CreateAssetInput(t, store, "Solar A", map[string]any{"capacity": 100.0, "region": "NSW"})
		testutil.CreateAssetInput(t, store, "Wind B", map[string]any{"capacity": 50.0})

		res, err := testutil.NewTestAssetService(t, store).MergeFields(ctx, map[string]map[string]any{
			"Solar A": {"capacity": 120.0},
			"Wind B":  {"capacity": 50.0},
			"Ghost":   {"capacity": 1.0},
		})
		if err != nil {
			t.Fatalf("MergeFields() returned unexpected error: %v", err)
		}

		if res.Matched != 2 || res.Modified != 1 || res.Skipped != 1 {
			t.Errorf("Expected matched 2, modified 1, skipped 1, got %+v", res)
		}
		if len(res.Missing) != 1 || res.Missing[0] != "Ghost" {
			t.Errorf("Expected Ghost to be missing, got %v", res.Missing)
		}

		docs := testutil.FindDocuments(t, store, repository.CollectionAssetInputs, database.Eq("name", "Solar A"))
		if len(docs) != 1 {
			t.Fatalf("Expected one Solar A document, got %d", len(docs))
		}
		if docs[0]["capacity"] != 120.0 || docs[0]["region"] != "NSW" {
			t.Errorf("Expected capacity 120 and region NSW, got %v", docs[0])
		}
	})

	t.Run("empty override for an existing asset counts as matched", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		testutil.CreateAssetInput(t, store, "Solar A", map[string]any{"capacity": 100.0})

		res, err := testutil.NewTestAssetService(t, store).MergeFields(ctx, map[string]map[string]any{
			"Solar A": {},
			"Ghost":   {},
		})
		if err != nil {
			t.Fatalf("MergeFields() returned unexpected error: %v", err)
		}

		if res.Matched != 1 || res.Modified != 0 || res.Skipped != 1 {
			t.Errorf("Expected matched 1, modified 0, skipped 1, got %+v", res)
		}
		if len(res.Missing) != 1 || res.Missing[0] != "Ghost" {
			t.Errorf("Expected only Ghost to be missing, got %v", res.Missing)
		}
	})

	t.Run("empty overrides are invalid", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		_, err := testutil.NewTestAssetService(t, store).MergeFields(ctx, nil)
		if !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})
}

// TestAssetService_CashFlows tests cash-flow lookup for one asset.
//
// WHY: Charts plot the records in order, so they must come back sorted by date no
// matter how the backend wrote them, and an asset with no results is an empty list.
func TestAssetService_CashFlows(t *testing.T) {
	ctx := context.Background()

	t.Run("returns records sorted by date", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		testutil.CreateCashFlow(t, store, 7, "2026-03-01", 30)
		testutil.CreateCashFlow(t, store, 7, "2026-01-01", 10)
		testutil.CreateCashFlow(t, store, 8, "2026-02-01", 99)
		testutil.CreateCashFlow(t, store, 7, "2026-02-01", 20)

		docs, err := testutil.NewTestAssetService(t, store).CashFlows(ctx, 7)
		if err != nil {
			t.Fatalf("CashFlows() returned unexpected error: %v", err)
		}
		if len(docs) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(docs))
		}
		for i, want := range []string{"2026-01-01", "2026-02-01", "2026-03-01"} {
			if docs[i]["date"] != want {
				t.Errorf("Record %d: expected date %s, got %v", i, want, docs[i]["date"])
			}
		}
	})

	t.Run("unknown asset is an empty list", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		docs, err := testutil.NewTestAssetService(t, store).CashFlows(ctx, 42)
		if err != nil {
			t.Fatalf("CashFlows() returned unexpected error: %v", err)
		}
		if docs == nil || len(docs) != 0 {
			t.Errorf("Expected empty non-nil list, got %v", docs)
		}
	})
}
