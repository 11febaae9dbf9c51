package driver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lanecast/lanecast/internal/application"
	"github.com/lanecast/lanecast/internal/clock"
	"github.com/lanecast/lanecast/internal/event"
	"github.com/lanecast/lanecast/internal/lane"
	"github.com/lanecast/lanecast/internal/preference"
)

// brokenEventRepo fails every query, for exercising rebuild failures.
type brokenEventRepo struct {
	*memEventRepo
}

func (r *brokenEventRepo) FindEndingAfter(_ context.Context, _ time.Time) ([]event.Event, error) {
	return nil, errors.New("disk on fire")
}

func TestRebuildHTTPHandler(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedEvent(t, "ev-1", handlerNow.Add(time.Hour), handlerNow.Add(3*time.Hour))
	handler := NewRebuildHTTPHandler(f.schedule)

	req := httptest.NewRequest(http.MethodPost, "/rebuild", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp rebuildResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalEvents != 1 || resp.Scheduled != 1 {
		t.Errorf("unexpected stats: %+v", resp)
	}
	if resp.BuiltAt == "" {
		t.Error("expected a build timestamp")
	}
}

func TestRebuildHTTPHandler_BuildFailure(t *testing.T) {
	cfg := lane.DefaultConfig()
	cfg.LaneCount = 1
	events := &brokenEventRepo{memEventRepo: newMemEventRepo()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewScheduleService(events, &memPreferenceRepo{prefs: preference.Default()}, &memScheduleRepo{}, cfg, clock.Fixed(handlerNow), logger)
	handler := NewRebuildHTTPHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/rebuild", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected the failure stage in the error message")
	}
}

func TestRebuildHTTPHandler_MethodNotAllowed(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewRebuildHTTPHandler(f.schedule)

	req := httptest.NewRequest(http.MethodGet, "/rebuild", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}
