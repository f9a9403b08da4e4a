package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) HealthCheck(ctx context.Context) error {
	return s.err
}

func TestHealthHandler_Health(t *testing.T) {
	check := func(t *testing.T, h *HealthHandler) (int, HealthResponse) {
		t.Helper()
		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var resp HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return rec.Code, resp
	}

	t.Run("healthy when registry and cache are up", func(t *testing.T) {
		code, resp := check(t, NewHealthHandler(&stubChecker{}, &stubChecker{}))
		if code != http.StatusOK || resp.Status != "healthy" {
			t.Errorf("expected 200/healthy, got %d/%s", code, resp.Status)
		}
	})

	t.Run("degraded when only the cache is down", func(t *testing.T) {
		code, resp := check(t, NewHealthHandler(&stubChecker{}, &stubChecker{err: errors.New("redis down")}))
		if code != http.StatusOK {
			t.Errorf("expected 200, got %d", code)
		}
		if resp.Status != "degraded" {
			t.Errorf("expected degraded, got %s", resp.Status)
		}
	})

	t.Run("unhealthy when the registry is down", func(t *testing.T) {
		code, resp := check(t, NewHealthHandler(&stubChecker{err: errors.New("pg down")}, &stubChecker{}))
		if code != http.StatusServiceUnavailable || resp.Status != "unhealthy" {
			t.Errorf("expected 503/unhealthy, got %d/%s", code, resp.Status)
		}
	})

	t.Run("cache section omitted when no cache is configured", func(t *testing.T) {
		_, resp := check(t, NewHealthHandler(&stubChecker{}, nil))
		if _, ok := resp.Services["snapshot_cache"]; ok {
			t.Error("expected no snapshot_cache entry")
		}
	})
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("ready when the registry responds", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(&stubChecker{}, nil).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("not ready when the registry is down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(&stubChecker{err: errors.New("pg down")}, nil).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}
