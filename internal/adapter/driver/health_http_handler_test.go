package driver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lanecast/lanecast/internal/application"
)

// deadEventRepo fails its health ping.
type deadEventRepo struct {
	*memEventRepo
}

func (r *deadEventRepo) Ping(_ context.Context) error {
	return errors.New("database file locked")
}

func TestHealthHTTPHandler(t *testing.T) {
	t.Run("healthy before first build", func(t *testing.T) {
		f := newHandlerFixture(t)
		handler := NewHealthHTTPHandler(application.NewHealthService(f.events, f.schedule))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp healthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "ok" {
			t.Errorf("expected overall ok, got %q", resp.Status)
		}
		// No schedule yet is reported but not degrading.
		if resp.Schedule != "none" {
			t.Errorf("expected schedule none, got %q", resp.Schedule)
		}
	})

	t.Run("healthy with schedule", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.rebuild(t)
		handler := NewHealthHTTPHandler(application.NewHealthService(f.events, f.schedule))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp healthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Schedule != "ok" {
			t.Errorf("expected schedule ok, got %q", resp.Schedule)
		}
	})

	t.Run("degraded on db failure", func(t *testing.T) {
		f := newHandlerFixture(t)
		dead := &deadEventRepo{memEventRepo: f.events}
		handler := NewHealthHTTPHandler(application.NewHealthService(dead, f.schedule))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}
		var resp healthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "degraded" || resp.DB != "error" {
			t.Errorf("expected degraded db error, got %+v", resp)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		f := newHandlerFixture(t)
		handler := NewHealthHTTPHandler(application.NewHealthService(f.events, f.schedule))

		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}
