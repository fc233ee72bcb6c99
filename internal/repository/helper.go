package repository

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
)

// Collection names. They are shared with the modeling backend and must not change.
const (
	CollectionPortfolios    = "CONFIG_Inputs"
	CollectionAssetInputs   = "CONFIG_Asset_Inputs"
	CollectionModelSettings = "CONFIG_modelSettings"
	CollectionCashFlows     = "ASSET_cash_flows"
	CollectionSettings      = "Settings"
)

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// stringField reads key as a string. Non-string scalars are formatted; nil yields "".
func stringField(doc database.Document, key string) string {
	switch v := doc[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func intField(doc database.Document, key string) int {
	switch v := doc[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func timeField(doc database.Document, key string) *time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		t := v.UTC()
		return &t
	case string:
		t, err := ParseTime(v)
		if err != nil {
			return nil
		}
		return &t
	default:
		return nil
	}
}

func mapField(doc database.Document, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
}

func mapSliceField(doc database.Document, key string) []map[string]any {
	items, _ := doc[key].([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// portfolioFromDocument decodes a CONFIG_Inputs document, tolerating legacy value types.
func portfolioFromDocument(doc database.Document) *model.Portfolio {
	return &model.Portfolio{
		ID:             doc.ID(),
		UniqueID:       stringField(doc, model.FieldUniqueID),
		PlatformName:   stringField(doc, model.FieldPlatformName),
		PortfolioTitle: stringField(doc, model.FieldPortfolioTitle),
		PlatformID:     intField(doc, model.FieldPlatformID),
		AssetInputs:    mapSliceField(doc, model.FieldAssetInputs),
		PlatformInputs: mapField(doc, model.FieldPlatformInputs),
		UpdatedAt:      timeField(doc, model.FieldUpdatedAt),
	}
}

// portfolioToDocument encodes the persisted fields of p. The store id is not included.
func portfolioToDocument(p *model.Portfolio) database.Document {
	assets := make([]any, 0, len(p.AssetInputs))
	for _, a := range p.AssetInputs {
		assets = append(assets, a)
	}

	var platformInputs any
	if p.PlatformInputs != nil {
		platformInputs = p.PlatformInputs
	}

	doc := database.Document{
		model.FieldUniqueID:       p.UniqueID,
		model.FieldPlatformName:   p.PlatformName,
		model.FieldPortfolioTitle: p.PortfolioTitle,
		model.FieldPlatformID:     p.PlatformID,
		model.FieldAssetInputs:    assets,
		model.FieldPlatformInputs: platformInputs,
	}
	if p.UpdatedAt != nil {
		doc[model.FieldUpdatedAt] = p.UpdatedAt.UTC()
	}
	return doc
}
