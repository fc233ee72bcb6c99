package handlers

import (
	"net/http"

	"github.com/woodid012/renew-portfolio-api/internal/api/response"
	"github.com/woodid012/renew-portfolio-api/internal/service"
)

// SettingsHandler handles HTTP requests for model settings.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// GetModelSettings handles GET requests for a portfolio's model settings, falling back to the defaults.
//
// Endpoint: GET /api/model-settings?unique_id=<id>
// Response: 200 OK with {settings}; settings is null when nothing is stored
func (h *SettingsHandler) GetModelSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context(), r.URL.Query().Get("unique_id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch model settings")
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// SaveModelSettings handles POST requests merging fields into a settings document.
// Without a unique_id the global default document is written.
//
// Endpoint: POST /api/model-settings
// Request Body: {"unique_id": "...", ...fields}
// Response: 200 OK with {success, message, updated, created}
func (h *SettingsHandler) SaveModelSettings(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if !decodeJSON(w, r, &payload) {
		return
	}

	res, err := h.settingsService.Save(r.Context(), payload)
	if err != nil {
		respondServiceError(w, r, err, "Failed to save model settings")
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Model settings saved successfully",
		"updated": res.Updated,
		"created": res.Created,
	})
}
