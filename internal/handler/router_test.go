package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/service"
)

func TestRouterOpsEndpoints(t *testing.T) {
	metrics := service.NewMetricsService()
	r := NewRouter(RouterParams{Metrics: metrics, Programs: NewProgramHandler()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/programs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var programs []models.Program
	decodeData(t, rec, &programs)
	assert.Len(t, programs, 10)
	assert.Equal(t, "Violin", programs[0].Name)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/v1/programs",status="200"} 1`)
}

func TestRouterReadyReportsFailingChecks(t *testing.T) {
	ops := NewMetricsHandler(nil, map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	r := NewRouter(RouterParams{Ops: ops})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
	assert.NotContains(t, rec.Body.String(), "postgres")
}

func TestRouterPreflight(t *testing.T) {
	r := NewRouter(RouterParams{AllowedOrigins: []string{"https://tkmproject.org"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contact", nil)
	req.Header.Set("Origin", "https://tkmproject.org")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://tkmproject.org", rec.Header().Get("Access-Control-Allow-Origin"))
}
