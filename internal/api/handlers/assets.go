package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/woodid012/renew-portfolio-api/internal/api/request"
	"github.com/woodid012/renew-portfolio-api/internal/api/response"
	"github.com/woodid012/renew-portfolio-api/internal/service"
	"github.com/woodid012/renew-portfolio-api/internal/validation"
)

// AssetHandler handles HTTP requests for asset inputs and stored cash flows.
type AssetHandler struct {
	assetService *service.AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService *service.AssetService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
	}
}

// MergeAssetFields handles POST requests applying per-asset field overrides by asset name.
//
// Endpoint: POST /api/merge-asset-fields
// Request Body: {"assets": {"<name>": {"<field>": value}}}
// Response: 200 OK with {success, message, matched, modified, skipped, missing}
func (h *AssetHandler) MergeAssetFields(w http.ResponseWriter, r *http.Request) {
	var req request.MergeAssetFieldsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateMergeAssetFields(req); err != nil {
		respondServiceError(w, r, err, "Failed to merge asset fields")
		return
	}

	res, err := h.assetService.MergeFields(r.Context(), req.Assets)
	if err != nil {
		respondServiceError(w, r, err, "Failed to merge asset fields")
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Asset fields merged successfully",
		"matched":  res.Matched,
		"modified": res.Modified,
		"skipped":  res.Skipped,
		"missing":  res.Missing,
	})
}

// AssetCashflows handles GET requests for the stored cash flows of one asset, ordered by date.
//
// Endpoint: GET /api/asset-cashflows?asset_id=<int>
// Response: 200 OK with {data}
// Error: 400 if asset_id is missing or not an integer
func (h *AssetHandler) AssetCashflows(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("asset_id"))
	if raw == "" {
		response.RespondError(w, http.StatusBadRequest, "Missing asset_id parameter", nil)
		return
	}
	assetID, err := strconv.Atoi(raw)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "asset_id must be an integer", err.Error())
		return
	}

	data, err := h.assetService.CashFlows(r.Context(), assetID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch asset cashflows")
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string]any{"data": data})
}
