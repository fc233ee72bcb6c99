package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, store)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Acme").
//	    WithTitle("Acme Energy").
//	    WithAssets(2).
//	    Build(t, store)
type PortfolioBuilder struct {
	Name      string
	Title     string
	UniqueID  string
	Assets    []map[string]any
	UpdatedAt *time.Time
}

// NewPortfolio creates a PortfolioBuilder with a random name and a valid unique_id.
func NewPortfolio() *PortfolioBuilder {
	name := MakePortfolioName("Test Portfolio")
	return &PortfolioBuilder{
		Name:     name,
		Title:    name,
		UniqueID: MakeUniqueID(),
		Assets:   []map[string]any{},
	}
}

// WithName sets PlatformName. The title follows unless set explicitly.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	if b.Title == b.Name {
		b.Title = name
	}
	b.Name = name
	return b
}

// WithTitle sets PortfolioTitle.
func (b *PortfolioBuilder) WithTitle(title string) *PortfolioBuilder {
	b.Title = title
	return b
}

// WithUniqueID sets the unique_id. An empty value stores a document without one.
func (b *PortfolioBuilder) WithUniqueID(uniqueID string) *PortfolioBuilder {
	b.UniqueID = uniqueID
	return b
}

// WithAssets adds n placeholder asset records.
func (b *PortfolioBuilder) WithAssets(n int) *PortfolioBuilder {
	for i := 0; i < n; i++ {
		b.Assets = append(b.Assets, map[string]any{"id": i + 1, "name": MakeAssetName("Asset")})
	}
	return b
}

// WithUpdatedAt sets updated_at.
func (b *PortfolioBuilder) WithUpdatedAt(at time.Time) *PortfolioBuilder {
	at = at.UTC()
	b.UpdatedAt = &at
	return b
}

// Build inserts the portfolio into CONFIG_Inputs and returns it with its store id.
func (b *PortfolioBuilder) Build(t *testing.T, store database.Store) *model.Portfolio {
	t.Helper()

	p := model.NewPortfolio(b.Name, b.UniqueID)
	p.PortfolioTitle = b.Title
	p.AssetInputs = b.Assets
	p.UpdatedAt = b.UpdatedAt

	id, err := repository.NewPortfolioRepository(store).Insert(context.Background(), p)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	p.ID = id
	return p
}

// CreatePortfolio creates a portfolio with the given name and default values.
func CreatePortfolio(t *testing.T, store database.Store, name string) *model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, store)
}

// CreateModelSettings stores a raw model-settings document. Pass a nil-valued unique_id to create
// a legacy keyless default.
func CreateModelSettings(t *testing.T, store database.Store, doc database.Document) string {
	t.Helper()
	return InsertDocument(t, store, repository.CollectionModelSettings, doc)
}

// CreateAssetInput stores an asset input document in CONFIG_Asset_Inputs.
func CreateAssetInput(t *testing.T, store database.Store, name string, fields map[string]any) string {
	t.Helper()

	doc := database.Document{"name": name}
	for k, v := range fields {
		doc[k] = v
	}
	return InsertDocument(t, store, repository.CollectionAssetInputs, doc)
}

// CreateCashFlow stores one cash-flow record for assetID.
func CreateCashFlow(t *testing.T, store database.Store, assetID int, date string, revenue float64) string {
	t.Helper()
	return InsertDocument(t, store, repository.CollectionCashFlows, database.Document{
		"asset_id": assetID,
		"date":     date,
		"revenue":  revenue,
	})
}
