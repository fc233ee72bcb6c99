package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is one request received by a MockBackend.
type RecordedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	Body        []byte
}

// MockBackend is a fake modeling backend answering every request with a fixed status and body.
//
// Example usage:
//
//	mock := testutil.NewMockBackend(t).WithResponse(http.StatusOK, `{"status":"success"}`)
//	gateway := backend.NewGateway(mock.URL(), nil)
type MockBackend struct {
	server *httptest.Server

	mu          sync.Mutex
	status      int
	contentType string
	body        string
	requests    []RecordedRequest
}

// NewMockBackend starts a fake backend answering 200 {"status":"success"}. It is closed when the test ends.
func NewMockBackend(t *testing.T) *MockBackend {
	t.Helper()

	m := &MockBackend{
		status:      http.StatusOK,
		contentType: "application/json",
		body:        `{"status":"success"}`,
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.server.Close)
	return m
}

// WithResponse sets the status and JSON body returned for every request.
func (m *MockBackend) WithResponse(status int, body string) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.contentType = "application/json"
	m.body = body
	return m
}

// WithEvents answers every request with the given server-sent events.
func (m *MockBackend) WithEvents(events ...string) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = http.StatusOK
	m.contentType = "text/event-stream"
	m.body = ""
	for _, e := range events {
		m.body += "data: " + e + "\n\n"
	}
	return m
}

// URL returns the base URL of the fake backend.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Requests returns the requests received so far.
func (m *MockBackend) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedRequest(nil), m.requests...)
}

func (m *MockBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		RawQuery:    r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	status, contentType, payload := m.status, m.contentType, m.body
	m.mu.Unlock()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}
