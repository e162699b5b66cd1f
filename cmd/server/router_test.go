package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/portfolio-api/backend/internal/auth"
	"github.com/ayush/portfolio-api/backend/internal/comment"
	"github.com/ayush/portfolio-api/backend/internal/config"
	"github.com/ayush/portfolio-api/backend/internal/httpx"
	"github.com/ayush/portfolio-api/backend/internal/like"
	"github.com/ayush/portfolio-api/backend/internal/logging"
	"github.com/ayush/portfolio-api/backend/internal/metrics"
	"github.com/ayush/portfolio-api/backend/internal/middleware"
	"github.com/ayush/portfolio-api/backend/internal/project"
	"github.com/ayush/portfolio-api/backend/internal/ratelimit"
	"github.com/ayush/portfolio-api/backend/internal/user"
)

// newTestApp wires the router without any store. Only routes that stop
// before reaching a store are exercised.
func newTestApp(t *testing.T, perMinute int) http.Handler {
	t.Helper()
	cfg := config.Load()
	cfg.CORSOrigins = []string{"http://localhost:5173"}
	log := logging.Nop()
	rp := httpx.NewResponder(false, log)
	m := metrics.New(prometheus.NewRegistry())
	issuer := auth.NewIssuer([]byte("secret"))
	carrier := auth.NewCarrier([]byte("0123456789abcdef0123456789abcdef"), auth.DefaultCookieOptions(false, time.Hour))

	a := &app{
		cfg:      cfg,
		log:      log,
		rp:       rp,
		metrics:  m,
		limiter:  ratelimit.NewLocalLimiter(perMinute),
		gates:    middleware.NewGates(issuer, carrier, nil, rp, m),
		auth:     auth.NewHandler(nil, carrier),
		users:    user.NewHandler(nil, nil, cfg.MaxUploadBytes, log),
		projects: project.NewHandler(nil, nil, nil, cfg.MaxUploadBytes, log),
		comments: comment.NewHandler(nil, nil, log),
		likes:    like.NewHandler(nil, nil),
	}
	return a.router()
}

func get(h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]string) {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	var out map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func TestRouter_PublicEndpoints(t *testing.T) {
	h := newTestApp(t, 100)

	rr, out := get(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello world!", out["message"])
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rr.Header().Get("X-Frame-Options"))

	rr, out = get(h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", out["status"])

	rr, _ = get(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")

	rr, out = get(h, http.MethodGet, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "Not Found", out["message"])

	rr, _ = get(h, http.MethodDelete, "/auth/logout")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_GatedRoutesNeedCredentials(t *testing.T) {
	h := newTestApp(t, 100)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/project"},
		{http.MethodPatch, "/project/abc"},
		{http.MethodDelete, "/project/abc"},
		{http.MethodPatch, "/auth/changePassword/abc"},
		{http.MethodDelete, "/auth/abc"},
		{http.MethodPatch, "/user/abc"},
		{http.MethodPatch, "/user/picture/abc"},
		{http.MethodPost, "/comment"},
		{http.MethodPost, "/comment/reply"},
		{http.MethodDelete, "/comment/p/c"},
		{http.MethodPost, "/like"},
		{http.MethodDelete, "/like"},
		{http.MethodGet, "/like/abc"},
		{http.MethodPost, "/like/comment"},
		{http.MethodDelete, "/like/comment"},
	}
	for _, rt := range routes {
		rr, out := get(h, rt.method, rt.path)
		assert.Equal(t, http.StatusForbidden, rr.Code, "%s %s", rt.method, rt.path)
		assert.Equal(t, "Forbidden!", out["message"], "%s %s", rt.method, rt.path)
	}
}

func TestRouter_RateLimited(t *testing.T) {
	h := newTestApp(t, 2)

	var codes []int
	for i := 0; i < 3; i++ {
		rr, _ := get(h, http.MethodGet, "/health")
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	rr, out := get(h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "Too many requests, please try again later.", out["message"])
}

func TestRouter_CORSAllowsCredentials(t *testing.T) {
	h := newTestApp(t, 100)

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}
