package handlers

import (
	"fmt"
	"net/http"

	"github.com/woodid012/renew-portfolio-api/internal/api/response"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/service"
)

// MaintenanceHandler handles the reserved-portfolio import and the unique_id backfill.
type MaintenanceHandler struct {
	importService      *service.ImportService
	maintenanceService *service.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(importService *service.ImportService, maintenanceService *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		importService:      importService,
		maintenanceService: maintenanceService,
	}
}

// ImportPortfolio handles POST requests loading the reserved portfolio from the configured file.
//
// Endpoint: POST /api/import-portfolio
// Response: 200 OK with {success, message, action, documentId, unique_id, assetsCount, filePath}
// Error: 404 if the import file does not exist
func (h *MaintenanceHandler) ImportPortfolio(w http.ResponseWriter, r *http.Request) {
	res, err := h.importService.Import(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to import portfolio data")
		return
	}

	verb := "uploaded"
	if res.Action == "updated" {
		verb = "updated"
	}
	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     fmt.Sprintf("%s data %s successfully", model.ReservedPortfolioName, verb),
		"action":      res.Action,
		"documentId":  res.DocumentID,
		"unique_id":   res.UniqueID,
		"assetsCount": res.AssetsCount,
		"filePath":    res.FilePath,
	})
}

// BackfillUniqueIDs handles POST requests replacing malformed portfolio unique_ids.
//
// Endpoint: POST /api/maintenance/backfill-unique-ids
// Response: 200 OK with {success, scanned, assigned, reassigned}
func (h *MaintenanceHandler) BackfillUniqueIDs(w http.ResponseWriter, r *http.Request) {
	res, err := h.maintenanceService.BackfillUniqueIDs(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to backfill unique_ids")
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"scanned":    res.Scanned,
		"assigned":   res.Assigned,
		"reassigned": res.Reassigned,
	})
}
