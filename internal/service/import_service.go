package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/phuslu/log"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
)

// importFile is the layout of the reserved-portfolio input file.
// Either AssetInputs or Assets is present; GeneralConfig takes precedence over PlatformInputs.
type importFile struct {
	AssetInputs    []map[string]any          `json:"asset_inputs"`
	Assets         map[string]map[string]any `json:"assets"`
	GeneralConfig  map[string]any            `json:"general_config"`
	PlatformInputs map[string]any            `json:"platformInputs"`
}

// ImportService loads the reserved portfolio from a single configured file.
type ImportService struct {
	portfolioRepo *repository.PortfolioRepository
	allocator     *UniqueIDAllocator
	path          string
	now           func() time.Time
}

// NewImportService creates an ImportService reading from path.
func NewImportService(portfolioRepo *repository.PortfolioRepository, allocator *UniqueIDAllocator, path string) *ImportService {
	return &ImportService{
		portfolioRepo: portfolioRepo,
		allocator:     allocator,
		path:          path,
		now:           time.Now,
	}
}

// Import reads the configured file and creates or updates the reserved portfolio from it.
// Returns apperrors.ErrImportFileNotFound when the file does not exist.
func (s *ImportService) Import(ctx context.Context) (*model.ImportResult, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrImportFileNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read import file %s: %w", s.path, err)
	}

	var input importFile
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse import file %s: %w", s.path, err)
	}

	assets := importAssets(input)
	platformInputs := input.GeneralConfig
	if platformInputs == nil {
		platformInputs = input.PlatformInputs
	}

	existing, err := s.portfolioRepo.FindOneBy(ctx, model.FieldPlatformName, model.ReservedPortfolioName)
	if err != nil && !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return nil, err
	}

	uniqueID := ""
	if existing != nil {
		uniqueID = existing.UniqueID
	}
	if uniqueID == "" {
		if uniqueID, err = s.allocator.Allocate(ctx); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	result := &model.ImportResult{
		UniqueID:    uniqueID,
		AssetsCount: len(assets),
		FilePath:    s.path,
	}

	if existing != nil {
		assetList := make([]any, 0, len(assets))
		for _, a := range assets {
			assetList = append(assetList, a)
		}
		var inputs any
		if platformInputs != nil {
			inputs = platformInputs
		}
		if _, err := s.portfolioRepo.UpdateByID(ctx, existing.ID, database.Document{
			model.FieldPlatformName:   model.ReservedPortfolioName,
			model.FieldPlatformID:     model.DefaultPlatformID,
			model.FieldUniqueID:       uniqueID,
			model.FieldAssetInputs:    assetList,
			model.FieldPlatformInputs: inputs,
			model.FieldUpdatedAt:      now,
		}); err != nil {
			return nil, err
		}
		result.Action = "updated"
		result.DocumentID = existing.ID
	} else {
		p := model.NewPortfolio(model.ReservedPortfolioName, uniqueID)
		p.AssetInputs = assets
		p.PlatformInputs = platformInputs
		p.UpdatedAt = &now
		id, err := s.portfolioRepo.Insert(ctx, p)
		if err != nil {
			return nil, err
		}
		result.Action = "created"
		result.DocumentID = id
	}

	log.Info().Str("action", result.Action).Int("assets", result.AssetsCount).Str("file", s.path).Msg("reserved portfolio imported")
	return result, nil
}

// importAssets returns asset_inputs as-is, or converts the name-keyed assets object (in key order)
// filling region from state and OperatingStartDate from assetStartDate where missing.
func importAssets(input importFile) []map[string]any {
	if input.AssetInputs != nil {
		return input.AssetInputs
	}

	keys := make([]string, 0, len(input.Assets))
	for k := range input.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	assets := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		asset := make(map[string]any, len(input.Assets[k])+2)
		for field, v := range input.Assets[k] {
			asset[field] = v
		}
		if !truthy(asset["region"]) {
			asset["region"] = asset["state"]
		}
		if !truthy(asset["OperatingStartDate"]) {
			asset["OperatingStartDate"] = asset["assetStartDate"]
		}
		assets = append(assets, asset)
	}
	return assets
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return true
	}
}
