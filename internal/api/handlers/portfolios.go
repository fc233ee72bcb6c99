package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/woodid012/renew-portfolio-api/internal/api/request"
	"github.com/woodid012/renew-portfolio-api/internal/api/response"
	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/service"
	"github.com/woodid012/renew-portfolio-api/internal/validation"
)

// PortfolioHandler handles HTTP requests for portfolio configuration endpoints.
// It parses requests and delegates identity resolution and upserts to the PortfolioService.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// ListPortfolios handles GET requests listing portfolios grouped by unique_id.
//
// Endpoint: GET /api/list-portfolios
// Response: 200 OK with {success, portfolios, defaultPortfolio}
func (h *PortfolioHandler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	listing, err := h.portfolioService.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to list portfolios")
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"portfolios":       listing.Portfolios,
		"defaultPortfolio": nullable(listing.DefaultPortfolio),
	})
}

// CreatePortfolio handles POST requests creating a portfolio by name.
// Creating a name that already exists returns the existing portfolio.
//
// Endpoint: POST /api/create-portfolio
// Request Body: {"portfolio": "Acme"}
// Response: 200 OK with {success, message, _id, unique_id, portfolio}
// Error: 400 Bad Request if the name is missing
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondServiceError(w, r, err, "Failed to create portfolio")
		return
	}

	res, err := h.portfolioService.Create(r.Context(), req.Portfolio)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create portfolio")
		return
	}

	message := "Portfolio created successfully"
	if !res.Created {
		message = "Portfolio already exists"
	}
	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   message,
		"_id":       res.Portfolio.ID,
		"unique_id": res.Portfolio.UniqueID,
		"portfolio": res.Portfolio.PlatformName,
	})
}

// GetPortfolioUniqueID handles GET requests resolving a token to a portfolio's unique_id.
// The token is matched against unique_id, then PlatformName, then PortfolioTitle.
//
// Endpoint: GET /api/get-portfolio-unique-id?portfolio=<token>
// Response: 200 OK with {portfolio, unique_id}
// Error: 400 if the parameter is missing, 404 echoing the token if nothing matches
func (h *PortfolioHandler) GetPortfolioUniqueID(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("portfolio"))

	p, err := h.portfolioService.Resolve(r.Context(), token)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get portfolio unique_id")
		return
	}

	uniqueID := p.UniqueID
	if uniqueID == "" {
		uniqueID = p.PlatformName
	}
	response.RespondJSON(w, http.StatusOK, map[string]any{
		"portfolio": token,
		"unique_id": uniqueID,
	})
}

// GetPortfolio handles GET requests returning the full portfolio document for a token.
// Every stored field is returned, so a load followed by a save keeps fields this API does not model.
//
// Endpoint: GET /api/portfolio?portfolio=<token>
// Response: 200 OK with the portfolio document
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	doc, err := h.portfolioService.ResolveDocument(r.Context(), r.URL.Query().Get("portfolio"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get portfolio")
		return
	}
	response.RespondJSON(w, http.StatusOK, doc)
}

// SavePortfolio handles POST requests replacing a complete portfolio document.
// The body is stored as sent apart from _id, which selects the document.
//
// Endpoint: POST /api/save-portfolio
// Request Body: the full document including _id
// Response: 200 OK with {success, message, unique_id, matched, modified, upserted}
// Error: 400 Bad Request if _id is missing
func (h *PortfolioHandler) SavePortfolio(w http.ResponseWriter, r *http.Request) {
	var doc database.Document
	if !decodeJSON(w, r, &doc) {
		return
	}

	res, err := h.portfolioService.Save(r.Context(), doc)
	if err != nil {
		respondServiceError(w, r, err, "Failed to save portfolio")
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Portfolio saved successfully",
		"unique_id": res.UniqueID,
		"matched":   res.Matched,
		"modified":  res.Modified,
		"upserted":  res.Upserted,
	})
}

// UpdatePlatformName handles POST requests renaming a portfolio's PlatformName.
//
// Endpoint: POST /api/update-platform-name
// Request Body: {"unique_id": "...", "platformName": "..."}
// Response: 200 OK with {success, message, unique_id, platformName, documentsMatched, documentsModified[, previousPlatformName]}
// Error: 400 if an input is missing, 404 if the unique_id is unknown
func (h *PortfolioHandler) UpdatePlatformName(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePlatformNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateUpdatePlatformName(req); err != nil {
		respondServiceError(w, r, err, "Failed to update PlatformName")
		return
	}

	res, err := h.portfolioService.RenamePlatformName(r.Context(), req.UniqueID, req.PlatformName)
	if err != nil {
		respondRenameError(w, r, err, "Failed to update PlatformName")
		return
	}

	body := map[string]any{
		"success":           true,
		"unique_id":         res.UniqueID,
		"platformName":      res.NewValue,
		"documentsMatched":  res.Matched,
		"documentsModified": res.Modified,
	}
	if !res.Changed() {
		body["message"] = "PlatformName unchanged (already set to this value)"
	} else {
		body["message"] = "PlatformName updated successfully"
		body["previousPlatformName"] = res.PreviousValue
	}
	response.RespondJSON(w, http.StatusOK, body)
}

// UpdatePortfolioTitle handles POST requests renaming a portfolio's PortfolioTitle.
// Older clients send the title as platformName; portfolioTitle wins when both are present.
//
// Endpoint: POST /api/update-portfolio-title
// Request Body: {"unique_id": "...", "portfolioTitle": "..."}
// Response: 200 OK with {success, message, unique_id, portfolioTitle, documentsMatched, documentsModified[, previousTitle]}
// Error: 400 if an input is missing, 404 if the unique_id is unknown
func (h *PortfolioHandler) UpdatePortfolioTitle(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePortfolioTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateUpdatePortfolioTitle(req); err != nil {
		respondServiceError(w, r, err, "Failed to update PortfolioTitle")
		return
	}

	res, err := h.portfolioService.RenamePortfolioTitle(r.Context(), req.UniqueID, req.Title())
	if err != nil {
		respondRenameError(w, r, err, "Failed to update PortfolioTitle")
		return
	}

	body := map[string]any{
		"success":           true,
		"unique_id":         res.UniqueID,
		"portfolioTitle":    res.NewValue,
		"documentsMatched":  res.Matched,
		"documentsModified": res.Modified,
	}
	if !res.Changed() {
		body["message"] = "PortfolioTitle unchanged (already set to this value)"
	} else {
		body["message"] = "PortfolioTitle updated successfully"
		body["previousTitle"] = res.PreviousValue
	}
	response.RespondJSON(w, http.StatusOK, body)
}

func respondRenameError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		response.RespondJSON(w, http.StatusNotFound, map[string]any{
			"error":     "Portfolio not found for the provided unique_id",
			"unique_id": notFound.Token,
		})
		return
	}
	respondServiceError(w, r, err, fallback)
}

// DeletePortfolio handles DELETE requests removing a portfolio by unique_id or PlatformName.
//
// Endpoint: DELETE /api/delete-portfolio
// Request Body: {"unique_id": "..."} or {"portfolio": "..."}
// Response: 200 OK with {success, message, unique_id, platformName, deletedCount}
// Error: 400 for missing input or the reserved portfolio, 404 if a name does not resolve
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	var req request.DeletePortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateDeletePortfolio(req); err != nil {
		respondServiceError(w, r, err, "Failed to delete portfolio")
		return
	}

	res, err := h.portfolioService.Delete(r.Context(), req.UniqueID, req.Portfolio)
	var notFound *apperrors.NotFoundError
	switch {
	case errors.As(err, &notFound):
		response.RespondError(w, http.StatusNotFound, fmt.Sprintf("Portfolio %q not found or missing unique_id", notFound.Token), nil)
		return
	case errors.Is(err, apperrors.ErrReservedPortfolio):
		response.RespondError(w, http.StatusBadRequest, fmt.Sprintf("Cannot delete default portfolio (%s)", model.ReservedPortfolioName), nil)
		return
	case err != nil:
		respondServiceError(w, r, err, "Failed to delete portfolio")
		return
	}

	if !res.Existed {
		response.RespondJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Portfolio does not exist",
			"unique_id": res.UniqueID,
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Portfolio deleted successfully",
		"unique_id":    res.UniqueID,
		"platformName": res.PlatformName,
		"deletedCount": res.Deleted,
	})
}

// GetDefaultPortfolio handles GET requests for the default portfolio pointer.
//
// Endpoint: GET /api/default-portfolio
// Response: 200 OK with {success, defaultPortfolio} where defaultPortfolio is null when unset
func (h *PortfolioHandler) GetDefaultPortfolio(w http.ResponseWriter, r *http.Request) {
	uniqueID, err := h.portfolioService.GetDefault(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to get default portfolio")
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"defaultPortfolio": nullable(uniqueID),
	})
}

// SetDefaultPortfolio handles POST requests pointing the default portfolio at an existing unique_id.
//
// Endpoint: POST /api/default-portfolio
// Request Body: {"unique_id": "..."}
// Response: 200 OK with {success, message, defaultPortfolio}
// Error: 400 if unique_id is missing, 404 if no portfolio has it
func (h *PortfolioHandler) SetDefaultPortfolio(w http.ResponseWriter, r *http.Request) {
	var req request.DefaultPortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateDefaultPortfolio(req); err != nil {
		respondServiceError(w, r, err, "Failed to set default portfolio")
		return
	}

	uniqueID, err := h.portfolioService.SetDefault(r.Context(), req.UniqueID)
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		response.RespondError(w, http.StatusNotFound, fmt.Sprintf("Portfolio with unique_id %q not found", notFound.Token), nil)
		return
	}
	if err != nil {
		respondServiceError(w, r, err, "Failed to set default portfolio")
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"message":          "Default portfolio set successfully",
		"defaultPortfolio": uniqueID,
	})
}

// nullable renders an empty string as JSON null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
