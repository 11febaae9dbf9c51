package lane_test

import (
	"testing"
	"time"

	"github.com/lanecast/lanecast/internal/event"
	"github.com/lanecast/lanecast/internal/lane"
)

func TestActiveAt_GraceWindow(t *testing.T) {
	cfg := testConfig()
	cfg.LaneCount = 1

	start := buildNow.Add(time.Hour)
	eventEnd := start.Add(2 * time.Hour)
	s := build(t, []event.Event{watchableEvent(t, "ev-1", start, eventEnd)}, cfg)

	tests := []struct {
		name      string
		asOf      time.Time
		wantState lane.State
		wantEvent string
	}{
		{
			name:      "before the event",
			asOf:      start.Add(-time.Minute),
			wantState: lane.PlaceholderNoFallback,
		},
		{
			name:      "during the event",
			asOf:      start.Add(time.Hour),
			wantState: lane.RealActive,
			wantEvent: "ev-1",
		},
		{
			name:      "last live instant",
			asOf:      eventEnd.Add(-time.Second),
			wantState: lane.RealActive,
			wantEvent: "ev-1",
		},
		{
			name:      "15 minutes after the end, inside grace",
			asOf:      eventEnd.Add(15 * time.Minute),
			wantState: lane.PlaceholderWithFallback,
			wantEvent: "ev-1",
		},
		{
			name:      "50 minutes after the end, grace expired",
			asOf:      eventEnd.Add(50 * time.Minute),
			wantState: lane.PlaceholderNoFallback,
		},
		{
			name:      "before the window",
			asOf:      buildNow.Add(-48 * time.Hour),
			wantState: lane.NoActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np := s.ActiveAt(1, tt.asOf)
			if np.State != tt.wantState {
				t.Fatalf("expected state %v, got %v", tt.wantState, np.State)
			}
			if np.EventID != tt.wantEvent {
				t.Errorf("expected event %q, got %q", tt.wantEvent, np.EventID)
			}
			if wantFallback := tt.wantState == lane.PlaceholderWithFallback; np.Fallback != wantFallback {
				t.Errorf("expected fallback %v, got %v", wantFallback, np.Fallback)
			}
		})
	}
}

func TestActiveAt_ShortGrace(t *testing.T) {
	// Grace tracks the padding knob: with 10 minutes of padding the
	// fallback window past the true event end is 10 minutes too.
	cfg := testConfig()
	cfg.LaneCount = 1
	cfg.PaddingMinutes = 10

	start := buildNow.Add(time.Hour)
	eventEnd := start.Add(time.Hour)
	s := build(t, []event.Event{watchableEvent(t, "ev-1", start, eventEnd)}, cfg)

	np := s.ActiveAt(1, eventEnd.Add(5*time.Minute))
	if np.State != lane.PlaceholderWithFallback || np.EventID != "ev-1" {
		t.Errorf("expected fallback to ev-1, got state %v event %q", np.State, np.EventID)
	}

	np = s.ActiveAt(1, eventEnd.Add(15*time.Minute))
	if np.State != lane.PlaceholderNoFallback {
		t.Errorf("expected expired grace, got state %v", np.State)
	}
}

func TestActiveAt_UnknownLane(t *testing.T) {
	s := build(t, nil, testConfig())

	np := s.ActiveAt(99, buildNow)
	if np.State != lane.NoActive {
		t.Errorf("expected NoActive for unknown lane, got %v", np.State)
	}
}

func TestActiveAt_PlaceholderOnlyLane(t *testing.T) {
	s := build(t, nil, testConfig())

	np := s.ActiveAt(1, buildNow)
	if np.State != lane.PlaceholderNoFallback {
		t.Fatalf("expected placeholder, got %v", np.State)
	}
	if !np.Slot.Placeholder {
		t.Error("expected the covering slot to be a placeholder")
	}
	if np.EventID != "" || np.Fallback {
		t.Error("expected no event attribution on a cold placeholder")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state lane.State
		want  string
	}{
		{lane.NoActive, "none"},
		{lane.RealActive, "active"},
		{lane.PlaceholderWithFallback, "fallback"},
		{lane.PlaceholderNoFallback, "placeholder"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
