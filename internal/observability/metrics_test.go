package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_HandlerExposesRecordedSeries(t *testing.T) {
	m := NewMetrics()
	size := 3
	m.RegisterCounterGauge(func() int { return size })

	m.ObserveRequest(http.MethodGet, "/counters/{name}", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	m.ObserveOperation("create", ResultConflict)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`hitcounter_http_requests_total{method="GET",route="/counters/{name}",status="200"} 1`,
		`hitcounter_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		`hitcounter_counter_operations_total{operation="create",result="conflict"} 1`,
		`hitcounter_counters 3`,
		`hitcounter_http_request_duration_seconds_bucket`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics output to contain %q\n%s", want, body)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveOperation("read", ResultOK)
	m.RegisterCounterGauge(func() int { return 0 })
}

func TestMetrics_InstancesAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.ObserveOperation("read", ResultOK)

	families, err := b.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "hitcounter_counter_operations_total" && len(f.GetMetric()) > 0 {
			t.Fatalf("expected second instance to have no operations recorded")
		}
	}
}
