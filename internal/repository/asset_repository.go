package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/woodid012/renew-portfolio-api/internal/database"
)

// AssetInputRepository provides access to CONFIG_Asset_Inputs, keyed by asset name.
type AssetInputRepository struct {
	coll database.Collection
}

// NewAssetInputRepository creates a new AssetInputRepository on the given store.
func NewAssetInputRepository(store database.Store) *AssetInputRepository {
	return &AssetInputRepository{coll: store.Collection(CollectionAssetInputs)}
}

// MergeByName sets fields on the asset called name. Other fields are left untouched.
// A zero Matched count means no asset has that name.
func (s *AssetInputRepository) MergeByName(ctx context.Context, name string, fields map[string]any) (database.UpdateResult, error) {
	set := database.Document{}
	for k, v := range fields {
		if k == database.IDField {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		// Nothing to write, but the asset still counts as matched when it exists.
		_, err := s.coll.FindOne(ctx, database.Eq("name", name))
		switch {
		case errors.Is(err, database.ErrNoDocument):
			return database.UpdateResult{}, nil
		case err != nil:
			return database.UpdateResult{}, fmt.Errorf("failed to look up asset %s: %w", name, err)
		}
		return database.UpdateResult{Matched: 1}, nil
	}

	res, err := s.coll.UpdateOne(ctx, database.Eq("name", name), set, false)
	if err != nil {
		return res, fmt.Errorf("failed to merge fields for asset %s: %w", name, err)
	}
	return res, nil
}

// CashFlowRepository provides read access to ASSET_cash_flows written by the modeling backend.
type CashFlowRepository struct {
	coll database.Collection
}

// NewCashFlowRepository creates a new CashFlowRepository on the given store.
func NewCashFlowRepository(store database.Store) *CashFlowRepository {
	return &CashFlowRepository{coll: store.Collection(CollectionCashFlows)}
}

// FindByAssetID returns the cash-flow records of assetID ordered by date.
func (s *CashFlowRepository) FindByAssetID(ctx context.Context, assetID int) ([]database.Document, error) {
	docs, err := s.coll.Find(ctx, database.Eq("asset_id", assetID), "date")
	if err != nil {
		return nil, fmt.Errorf("failed to query cash flows for asset %d: %w", assetID, err)
	}
	return docs, nil
}
