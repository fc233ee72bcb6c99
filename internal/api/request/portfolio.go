package request

import "strings"

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Portfolio string `json:"portfolio"`
}

// UpdatePlatformNameRequest represents the request body for renaming a portfolio's PlatformName.
type UpdatePlatformNameRequest struct {
	UniqueID     string `json:"unique_id"`
	PlatformName string `json:"platformName"`
}

// UpdatePortfolioTitleRequest represents the request body for renaming a portfolio's title.
// Older clients send the new title as platformName.
type UpdatePortfolioTitleRequest struct {
	UniqueID       string `json:"unique_id"`
	PortfolioTitle string `json:"portfolioTitle"`
	PlatformName   string `json:"platformName"`
}

// Title returns the requested title, preferring portfolioTitle over the legacy key.
func (r UpdatePortfolioTitleRequest) Title() string {
	if title := strings.TrimSpace(r.PortfolioTitle); title != "" {
		return title
	}
	return strings.TrimSpace(r.PlatformName)
}

// DeletePortfolioRequest identifies the portfolio to delete by unique_id or, failing that, PlatformName.
type DeletePortfolioRequest struct {
	UniqueID  string `json:"unique_id"`
	Portfolio string `json:"portfolio"`
}

// DefaultPortfolioRequest represents the request body for setting the default portfolio.
type DefaultPortfolioRequest struct {
	UniqueID string `json:"unique_id"`
}

// MergeAssetFieldsRequest maps asset names to the fields to set on them.
type MergeAssetFieldsRequest struct {
	Assets map[string]map[string]any `json:"assets"`
}
