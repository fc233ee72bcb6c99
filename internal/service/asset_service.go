package service

import (
	"context"
	"sort"

	"github.com/phuslu/log"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
)

// AssetService merges asset input overrides and reads cash-flow results.
type AssetService struct {
	assetRepo    *repository.AssetInputRepository
	cashFlowRepo *repository.CashFlowRepository
}

// NewAssetService creates a new AssetService.
func NewAssetService(assetRepo *repository.AssetInputRepository, cashFlowRepo *repository.CashFlowRepository) *AssetService {
	return &AssetService{
		assetRepo:    assetRepo,
		cashFlowRepo: cashFlowRepo,
	}
}

// MergeFields applies each name's overrides to the asset with that name. Only the named fields change.
// Names with no matching asset are skipped and reported, not treated as errors.
func (s *AssetService) MergeFields(ctx context.Context, overrides map[string]map[string]any) (*model.MergeResult, error) {
	if len(overrides) == 0 {
		return nil, apperrors.InvalidArgument("assets object is required")
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &model.MergeResult{Missing: []string{}}
	for _, name := range names {
		res, err := s.assetRepo.MergeByName(ctx, name, overrides[name])
		if err != nil {
			return nil, err
		}
		if res.Matched == 0 {
			result.Skipped++
			result.Missing = append(result.Missing, name)
			continue
		}
		result.Matched++
		if res.Modified > 0 {
			result.Modified++
		}
	}

	log.Info().Int("matched", result.Matched).Int("modified", result.Modified).Int("skipped", result.Skipped).Msg("asset fields merged")
	return result, nil
}

// CashFlows returns the cash-flow records of assetID ordered by date.
func (s *AssetService) CashFlows(ctx context.Context, assetID int) ([]database.Document, error) {
	docs, err := s.cashFlowRepo.FindByAssetID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []database.Document{}
	}
	return docs, nil
}
