package validation

import (
	"strings"

	"github.com/woodid012/renew-portfolio-api/internal/api/request"
)

const maxNameLength = 200

func validateName(errors map[string]string, field, value, required string) {
	if strings.TrimSpace(value) == "" {
		errors[field] = required
	} else if len(value) > maxNameLength {
		errors[field] = field + " must be 200 characters or less"
	}
}

func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	validateName(errors, "portfolio", req.Portfolio, "Portfolio name is required")

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdatePlatformName(req request.UpdatePlatformNameRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UniqueID) == "" {
		errors["unique_id"] = "unique_id is required"
	}
	validateName(errors, "platformName", req.PlatformName, "platformName is required")

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdatePortfolioTitle(req request.UpdatePortfolioTitleRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UniqueID) == "" {
		errors["unique_id"] = "unique_id is required"
	}
	validateName(errors, "portfolioTitle", req.Title(), "portfolioTitle is required")

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateDeletePortfolio(req request.DeletePortfolioRequest) error {
	if strings.TrimSpace(req.UniqueID) == "" && strings.TrimSpace(req.Portfolio) == "" {
		return &Error{Fields: map[string]string{"unique_id": "Portfolio unique_id or portfolio name is required"}}
	}
	return nil
}

func ValidateDefaultPortfolio(req request.DefaultPortfolioRequest) error {
	if strings.TrimSpace(req.UniqueID) == "" {
		return &Error{Fields: map[string]string{"unique_id": "Portfolio unique_id is required"}}
	}
	return nil
}

func ValidateMergeAssetFields(req request.MergeAssetFieldsRequest) error {
	if len(req.Assets) == 0 {
		return &Error{Fields: map[string]string{"assets": "assets object is required"}}
	}
	return nil
}
