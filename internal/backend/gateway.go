// Package backend forwards modeling requests to the external modeling backend
// and relays its answers, either buffered as JSON or streamed as server-sent events.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/phuslu/log"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/metrics"
)

// maxResponseSize caps a buffered backend answer.
const maxResponseSize = 50 << 20 // 50MB

// maxErrorBody caps how much of a body is read for an error message.
const maxErrorBody = 64 << 10

// maxExcerpt caps the body text quoted in an unavailable error.
const maxExcerpt = 200

// plainText strips every tag from backend error pages.
var plainText = bluemonday.StrictPolicy()

// pingTimeout bounds the reachability probe used by the health check.
const pingTimeout = 5 * time.Second

// Backend endpoints.
const (
	PathRunModel          = "/api/run-model"
	PathSensitivity       = "/api/sensitivity"
	PathSensitivityStream = "/api/sensitivity-stream"
	PathPriceCurveUpload  = "/api/price-curves/upload"
	PathPriceCurveAnalyze = "/api/price-curves/analyze"
	PathAssetCashflows    = "/api/asset-cashflows"
)

// Request is one call forwarded to the backend.
// Body and ContentType are passed through unmodified, so multipart boundaries survive.
type Request struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	Body        io.Reader
}

// Result is a buffered successful backend answer.
type Result struct {
	Status int
	Body   json.RawMessage
}

// Gateway talks to the modeling backend. It sets no client timeout: model runs may take minutes
// and are bounded by the caller's context.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewGateway creates a Gateway for baseURL.
func NewGateway(baseURL string, m *metrics.Metrics) *Gateway {
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		metrics:    m,
	}
}

// BaseURL returns the backend base URL.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Forward sends req and returns the backend's JSON answer.
// A non-success status yields *apperrors.UpstreamError. Network failures and non-JSON bodies
// yield apperrors.ErrUpstreamUnavailable.
func (g *Gateway) Forward(ctx context.Context, req Request) (*Result, error) {
	resp, err := g.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return buffered(resp, req.Path)
}

// buffered reads a complete JSON answer from resp.
func buffered(resp *http.Response, path string) (*Result, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", apperrors.ErrUpstreamUnavailable, err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", apperrors.ErrUpstreamUnavailable, maxResponseSize)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s returned a non-JSON body (status %d)%s",
			apperrors.ErrUpstreamUnavailable, path, resp.StatusCode, excerpt(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejected(resp.StatusCode, body)
	}
	return &Result{Status: resp.StatusCode, Body: body}, nil
}

// Stream sends req and relays the backend's event stream to w chunk by chunk, flushing after each write.
// An answer that is not text/event-stream is treated as Forward treats it and written to w as JSON.
// Errors before the first byte is written are returned for the caller to render. Once the stream
// has started, failures end the relay and are only logged. Cancelling ctx closes the upstream connection.
func (g *Gateway) Stream(ctx context.Context, req Request, w http.ResponseWriter) error {
	resp, err := g.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Anything that is not an event stream, rejections included, is handled as a buffered answer.
	if !isEventStream(resp.Header.Get("Content-Type")) {
		res, err := buffered(resp, req.Path)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.Status)
		_, _ = w.Write(res.Body)
		return nil
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil
	}

	var written int64
	buf := make([]byte, 32<<10)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				log.Debug().Str("path", req.Path).Err(err).Msg("client left event stream")
				return nil
			}
			written += int64(n)
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return nil
			}
		}
		if readErr == io.EOF {
			log.Debug().Str("path", req.Path).Int64("bytes", written).Msg("event stream complete")
			return nil
		}
		if readErr != nil {
			if ctx.Err() == nil {
				log.Warn().Str("path", req.Path).Int64("bytes", written).Err(readErr).Msg("event stream interrupted")
			}
			return nil
		}
	}
}

// Ping reports whether the backend answers HTTP at all. Any status counts as reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := g.do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	return nil
}

func (g *Gateway) do(ctx context.Context, req Request) (*http.Response, error) {
	target := g.baseURL + req.Path
	if req.RawQuery != "" {
		target += "?" + req.RawQuery
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	log.Debug().Str("method", req.Method).Str("path", req.Path).Msg("backend request")

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		g.metrics.ObserveUpstream(req.Path, 0, duration)
		log.Error().Str("method", req.Method).Str("path", req.Path).Int64("duration_ms", duration.Milliseconds()).Err(err).Msg("backend request failed")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}

	g.metrics.ObserveUpstream(req.Path, resp.StatusCode, duration)
	log.Debug().Str("path", req.Path).Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("backend response")
	return resp, nil
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/event-stream"
}

// excerpt renders the start of a non-JSON body as plain text for error messages.
// Proxies in front of the backend answer with HTML error pages, so markup is stripped.
func excerpt(body []byte) string {
	text := strings.Join(strings.Fields(html.UnescapeString(string(plainText.SanitizeBytes(body[:min(len(body), maxErrorBody)])))), " ")
	if text == "" {
		return ""
	}
	if len(text) > maxExcerpt {
		text = text[:maxExcerpt] + "..."
	}
	return ": " + text
}

// rejected builds the UpstreamError for a non-success answer, preferring the body's message or error field.
func rejected(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := fmt.Sprintf("Backend returned %d", status)
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			message = payload.Message
		case payload.Error != "":
			message = payload.Error
		}
	}
	return &apperrors.UpstreamError{Status: status, Message: message}
}
