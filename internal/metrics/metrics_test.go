package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveAllocation(false)
	m.ObserveAllocation(true)
	m.ObserveUpstream("/api/run-model", 200, 10*time.Millisecond)
	m.ObserveUpstream("/api/run-model", 0, time.Millisecond)
	m.ObserveBackfill(3)

	if got := testutil.ToFloat64(m.UniqueIDAttempts); got != 2 {
		t.Errorf("attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UniqueIDCollisions); got != 1 {
		t.Errorf("collisions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("/api/run-model", "error")); got != 1 {
		t.Errorf("upstream errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BackfillAssigned); got != 3 {
		t.Errorf("backfill = %v, want 3", got)
	}
}

// WHY: Services are constructed without metrics in unit tests; recording must not panic.
func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAllocation(true)
	m.ObserveUpstream("/x", 500, time.Second)
	m.ObserveHTTP("GET", "/x", 200, time.Second)
	m.ObserveBackfill(1)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 from nil handler, got %d", w.Code)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/api/list-portfolios", 200, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "renew_portfolio_http_requests_total") {
		t.Errorf("expected request counter in exposition output")
	}
}
