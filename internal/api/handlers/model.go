package handlers

import (
	"net/http"

	"github.com/woodid012/renew-portfolio-api/internal/backend"
)

// ModelHandler forwards modeling requests to the external modeling backend.
type ModelHandler struct {
	gateway *backend.Gateway
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(gateway *backend.Gateway) *ModelHandler {
	return &ModelHandler{
		gateway: gateway,
	}
}

// RunModel forwards a model run.
//
// Endpoint: POST /api/model/run-model -> POST /api/run-model
func (h *ModelHandler) RunModel(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, backend.PathRunModel)
}

// Sensitivity forwards a buffered sensitivity run.
//
// Endpoint: POST /api/model/sensitivity -> POST /api/sensitivity
func (h *ModelHandler) Sensitivity(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, backend.PathSensitivity)
}

// SensitivityStream relays a sensitivity run's progress events as they arrive.
//
// Endpoint: POST /api/model/sensitivity-stream -> POST /api/sensitivity-stream
// Response: text/event-stream
func (h *ModelHandler) SensitivityStream(w http.ResponseWriter, r *http.Request) {
	err := h.gateway.Stream(r.Context(), h.request(r, backend.PathSensitivityStream), w)
	if err != nil {
		respondServiceError(w, r, err, "Failed to stream sensitivity results")
	}
}

// UploadPriceCurves forwards a multipart price-curve upload.
//
// Endpoint: POST /api/model/price-curves/upload -> POST /api/price-curves/upload
func (h *ModelHandler) UploadPriceCurves(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, backend.PathPriceCurveUpload)
}

// AnalyzePriceCurves forwards a multipart price-curve analysis.
//
// Endpoint: POST /api/model/price-curves/analyze -> POST /api/price-curves/analyze
func (h *ModelHandler) AnalyzePriceCurves(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, backend.PathPriceCurveAnalyze)
}

// AssetCashflows forwards a cash-flow query with its query string.
//
// Endpoint: GET /api/model/asset-cashflows -> GET /api/asset-cashflows
func (h *ModelHandler) AssetCashflows(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, backend.PathAssetCashflows)
}

func (h *ModelHandler) forward(w http.ResponseWriter, r *http.Request, path string) {
	res, err := h.gateway.Forward(r.Context(), h.request(r, path))
	if err != nil {
		respondServiceError(w, r, err, "Failed to proxy request to backend")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}

func (h *ModelHandler) request(r *http.Request, path string) backend.Request {
	req := backend.Request{
		Method:      r.Method,
		Path:        path,
		RawQuery:    r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		req.Body = r.Body
	}
	return req
}
