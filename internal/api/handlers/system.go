package handlers

import (
	"net/http"

	"github.com/woodid012/renew-portfolio-api/internal/api/response"
	"github.com/woodid012/renew-portfolio-api/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health checks the document store and the modeling backend.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with HealthStatus, 503 Service Unavailable when the store is unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.systemService.CheckHealth(r.Context())
	if status.Status != "healthy" {
		response.RespondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	response.RespondJSON(w, http.StatusOK, status)
}

// Version handles GET requests to retrieve version information.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfo
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.systemService.CheckVersion())
}

// TestConnection reports whether the document store answers.
//
// Endpoint: GET /api/test-connection
// Response: 200 OK with {status: "Connected", db}
// Error: 500 with {status: "Error", error, details, hint}
func (h *SystemHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	info := h.systemService.CheckVersion()
	if err := h.systemService.CheckDatabase(r.Context()); err != nil {
		response.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "Error",
			"error":   "MongoDB connection failed",
			"details": err.Error(),
			"hint":    storeHint,
			"db":      info.Database,
		})
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "Connected",
		"db":     info.Database,
	})
}
