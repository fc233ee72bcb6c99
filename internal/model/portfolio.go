package model

import "time"

// Document keys of a portfolio configuration in CONFIG_Inputs.
const (
	FieldUniqueID       = "unique_id"
	FieldPlatformName   = "PlatformName"
	FieldPortfolioTitle = "PortfolioTitle"
	FieldPlatformID     = "PlatformID"
	FieldAssetInputs    = "asset_inputs"
	FieldPlatformInputs = "platformInputs"
	FieldUpdatedAt      = "updated_at"
)

const (
	// DefaultPlatformID is the classification tag every portfolio carries.
	DefaultPlatformID = 1

	// ReservedPortfolioName is the portfolio populated by the bulk import. It cannot be deleted.
	ReservedPortfolioName = "ZEBRE"
)

// Portfolio is a portfolio configuration document.
// AssetInputs and PlatformInputs are owned by the modeling backend and stored opaquely.
type Portfolio struct {
	ID             string           `json:"_id,omitempty"`
	UniqueID       string           `json:"unique_id"`
	PlatformName   string           `json:"PlatformName"`
	PortfolioTitle string           `json:"PortfolioTitle"`
	PlatformID     int              `json:"PlatformID"`
	AssetInputs    []map[string]any `json:"asset_inputs"`
	PlatformInputs map[string]any   `json:"platformInputs"`
	UpdatedAt      *time.Time       `json:"updated_at,omitempty"`
}

// NewPortfolio builds a brand-new portfolio where the title defaults to the name.
func NewPortfolio(name, uniqueID string) *Portfolio {
	return &Portfolio{
		UniqueID:       uniqueID,
		PlatformName:   name,
		PortfolioTitle: name,
		PlatformID:     DefaultPlatformID,
		AssetInputs:    []map[string]any{},
		PlatformInputs: nil,
	}
}

// PortfolioSummary is one entry of the portfolio listing, grouping every document that shares a unique_id.
type PortfolioSummary struct {
	UniqueID        string           `json:"unique_id"`
	Name            string           `json:"name"`
	Title           string           `json:"title"`
	PortfolioNames  []string         `json:"portfolioNames"`
	PortfolioTitles []PortfolioLabel `json:"portfolioTitles"`
	AssetCount      int              `json:"assetCount"`
	LastUpdated     *time.Time       `json:"lastUpdated"`
	IsDefault       bool             `json:"isDefault"`
}

// PortfolioLabel pairs a document's PlatformName with its display title.
type PortfolioLabel struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// PortfolioListing is the full portfolio list together with the default pointer.
type PortfolioListing struct {
	Portfolios       []PortfolioSummary
	DefaultPortfolio string
}

// DeleteResult reports the outcome of a portfolio delete.
type DeleteResult struct {
	UniqueID     string
	PlatformName string
	Existed      bool
	Deleted      int64
}

// RenameResult reports the outcome of a single-field rename across the documents sharing a unique_id.
type RenameResult struct {
	UniqueID      string
	PreviousValue string
	NewValue      string
	Matched       int64
	Modified      int64
}

// Changed reports whether any document actually took the new value.
func (r RenameResult) Changed() bool {
	return r.Modified > 0
}

// CreateResult reports the outcome of an idempotent create.
type CreateResult struct {
	Portfolio *Portfolio
	Created   bool
}

// SaveResult reports the outcome of a full-document replace.
type SaveResult struct {
	UniqueID string `json:"unique_id"`
	Matched  int64  `json:"matched"`
	Modified int64  `json:"modified"`
	Upserted bool   `json:"upserted"`
}
