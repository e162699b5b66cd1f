package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument_UsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/project/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/project/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/project/{id}", "418"))
	assert.Equal(t, float64(2), got)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))
}

func TestGateRejected(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.GateRejected("authenticate", "missing")
	m.GateRejected("authenticate", "missing")
	m.RateLimited()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.gateRejected.WithLabelValues("authenticate", "missing")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rateLimited))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.GateRejected("authorize", "role") })
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RateLimited()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_rate_limited_total 1")
}
