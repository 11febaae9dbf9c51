package lane_test

import (
	"testing"
	"time"

	"github.com/lanecast/lanecast/internal/event"
	"github.com/lanecast/lanecast/internal/lane"
	"github.com/lanecast/lanecast/internal/preference"
)

var buildNow = time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

func testConfig() lane.Config {
	cfg := lane.DefaultConfig()
	cfg.LaneCount = 3
	return cfg
}

func watchableEvent(t *testing.T, id string, start, end time.Time) event.Event {
	t.Helper()
	p, err := event.NewPlayable("peacock", "peacock://event/"+id, event.PlayableAttrs{})
	if err != nil {
		t.Fatalf("failed to create playable: %v", err)
	}
	ev, err := event.New(id, "Event "+id, start, end, event.Attrs{}, []event.Playable{p})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return ev
}

func unwatchableEvent(t *testing.T, id string, start, end time.Time) event.Event {
	t.Helper()
	ev, err := event.New(id, "Event "+id, start, end, event.Attrs{}, nil)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return ev
}

func build(t *testing.T, events []event.Event, cfg lane.Config) *lane.Schedule {
	t.Helper()
	s, err := lane.BuildSchedule(events, preference.Default(), cfg, buildNow)
	if err != nil {
		t.Fatalf("failed to build schedule: %v", err)
	}
	return s
}

// checkContiguous verifies the core slot invariant on every lane: slots
// sorted, non-overlapping, gap-free, spanning exactly the window.
func checkContiguous(t *testing.T, s *lane.Schedule) {
	t.Helper()
	start, end := s.Window()
	for _, l := range s.Lanes() {
		slots := s.Slots(l.ID)
		if len(slots) == 0 {
			t.Errorf("lane %d has no slots", l.ID)
			continue
		}
		if !slots[0].Start.Equal(start) {
			t.Errorf("lane %d starts at %v, window starts at %v", l.ID, slots[0].Start, start)
		}
		if !slots[len(slots)-1].End.Equal(end) {
			t.Errorf("lane %d ends at %v, window ends at %v", l.ID, slots[len(slots)-1].End, end)
		}
		for i := 1; i < len(slots); i++ {
			if !slots[i].Start.Equal(slots[i-1].End) {
				t.Errorf("lane %d slot %d starts at %v, previous ends at %v", l.ID, i, slots[i].Start, slots[i-1].End)
			}
		}
		for _, slot := range slots {
			if !slot.Start.Before(slot.End) {
				t.Errorf("lane %d has an empty or inverted slot %v", l.ID, slot)
			}
		}
	}
}

func TestBuildSchedule_EmptyInput(t *testing.T) {
	s := build(t, nil, testConfig())

	if len(s.Lanes()) != 3 {
		t.Fatalf("expected 3 lanes, got %d", len(s.Lanes()))
	}
	checkContiguous(t, s)
	for _, slot := range s.AllSlots() {
		if !slot.Placeholder {
			t.Errorf("expected only placeholders, got event slot %v", slot)
		}
		if slot.Title != lane.PlaceholderTitle {
			t.Errorf("expected placeholder title %q, got %q", lane.PlaceholderTitle, slot.Title)
		}
	}
}

func TestBuildSchedule_ZeroLanes(t *testing.T) {
	cfg := testConfig()
	cfg.LaneCount = 0

	s := build(t, []event.Event{
		watchableEvent(t, "ev-1", buildNow.Add(time.Hour), buildNow.Add(2*time.Hour)),
	}, cfg)

	if len(s.Lanes()) != 0 {
		t.Errorf("expected no lanes, got %d", len(s.Lanes()))
	}
	if len(s.AllSlots()) != 0 {
		t.Errorf("expected no slots, got %d", len(s.AllSlots()))
	}
}

func TestBuildSchedule_NegativeLaneCount(t *testing.T) {
	cfg := testConfig()
	cfg.LaneCount = -1

	s, err := lane.BuildSchedule(nil, preference.Default(), cfg, buildNow)
	if err != nil {
		t.Fatalf("expected a degraded schedule for a negative lane count, got error %v", err)
	}
	if len(s.Lanes()) != 0 {
		t.Errorf("expected no lanes, got %d", len(s.Lanes()))
	}
	if len(s.AllSlots()) != 0 {
		t.Errorf("expected no slots, got %d", len(s.AllSlots()))
	}
}

func TestBuildSchedule_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.HorizonDays = 0

	if _, err := lane.BuildSchedule(nil, preference.Default(), cfg, buildNow); err == nil {
		t.Fatal("expected an error for a non-positive horizon")
	}
}

func TestBuildSchedule_SingleEvent(t *testing.T) {
	start := buildNow.Add(2 * time.Hour)
	end := start.Add(90 * time.Minute)
	s := build(t, []event.Event{watchableEvent(t, "ev-1", start, end)}, testConfig())

	checkContiguous(t, s)

	var eventSlots []lane.Slot
	for _, slot := range s.AllSlots() {
		if !slot.Placeholder {
			eventSlots = append(eventSlots, slot)
		}
	}
	if len(eventSlots) != 1 {
		t.Fatalf("expected 1 event slot, got %d", len(eventSlots))
	}
	slot := eventSlots[0]
	if slot.EventID != "ev-1" {
		t.Errorf("expected event ev-1, got %q", slot.EventID)
	}
	if !slot.Start.Equal(start) {
		t.Errorf("expected slot start %v, got %v", start, slot.Start)
	}
	// Padded by 45 minutes with nothing following.
	if !slot.End.Equal(end.Add(45 * time.Minute)) {
		t.Errorf("expected padded end %v, got %v", end.Add(45*time.Minute), slot.End)
	}
	if !slot.EventEnd.Equal(end) {
		t.Errorf("expected true event end %v, got %v", end, slot.EventEnd)
	}
}

func TestBuildSchedule_SameStartSpreadsAcrossLanes(t *testing.T) {
	start := buildNow.Add(time.Hour)
	end := start.Add(time.Hour)
	s := build(t, []event.Event{
		watchableEvent(t, "ev-a", start, end),
		watchableEvent(t, "ev-b", start, end),
	}, testConfig())

	checkContiguous(t, s)

	lanesUsed := map[int]string{}
	for _, slot := range s.AllSlots() {
		if !slot.Placeholder {
			lanesUsed[slot.LaneID] = slot.EventID
		}
	}
	if len(lanesUsed) != 2 {
		t.Fatalf("expected events on 2 distinct lanes, got %d", len(lanesUsed))
	}
}

func TestBuildSchedule_PlaceholderChunking(t *testing.T) {
	// 130 minutes between padded end and the next event start must be
	// covered by 60 + 60 + 10 minute placeholders.
	cfg := testConfig()
	cfg.LaneCount = 1

	first := watchableEvent(t, "ev-a", buildNow.Add(time.Hour), buildNow.Add(2*time.Hour))
	// Padded end of ev-a is +45m; the gap to ev-b is 130 minutes.
	gapStart := first.End().Add(45 * time.Minute)
	second := watchableEvent(t, "ev-b", gapStart.Add(130*time.Minute), gapStart.Add(130*time.Minute+time.Hour))

	s := build(t, []event.Event{first, second}, cfg)
	checkContiguous(t, s)

	var between []lane.Slot
	for _, slot := range s.Slots(1) {
		if slot.Placeholder && !slot.Start.Before(gapStart) && !slot.End.After(second.Start()) {
			between = append(between, slot)
		}
	}
	if len(between) != 3 {
		t.Fatalf("expected 3 placeholder chunks in the gap, got %d", len(between))
	}
	wantMinutes := []float64{60, 60, 10}
	for i, slot := range between {
		if got := slot.Duration().Minutes(); got != wantMinutes[i] {
			t.Errorf("chunk %d: expected %v minutes, got %v", i, wantMinutes[i], got)
		}
	}
}

func TestBuildSchedule_UnresolvableEventsFiltered(t *testing.T) {
	s := build(t, []event.Event{
		unwatchableEvent(t, "ev-dead", buildNow.Add(time.Hour), buildNow.Add(2*time.Hour)),
	}, testConfig())

	for _, slot := range s.AllSlots() {
		if !slot.Placeholder {
			t.Errorf("expected no event slots, got %v", slot)
		}
	}
	if s.Stats().FilteredOut != 1 {
		t.Errorf("expected 1 filtered event, got %d", s.Stats().FilteredOut)
	}
}

func TestBuildSchedule_HorizonFilter(t *testing.T) {
	cfg := testConfig()
	s := build(t, []event.Event{
		watchableEvent(t, "ev-past", buildNow.Add(-2*time.Hour), buildNow.Add(-time.Hour)),
		watchableEvent(t, "ev-far", buildNow.Add(time.Duration(cfg.HorizonDays+1)*24*time.Hour), buildNow.Add(time.Duration(cfg.HorizonDays+1)*24*time.Hour+time.Hour)),
		watchableEvent(t, "ev-in", buildNow.Add(time.Hour), buildNow.Add(2*time.Hour)),
	}, cfg)

	if s.Stats().OutsideHorizon != 2 {
		t.Errorf("expected 2 events outside the horizon, got %d", s.Stats().OutsideHorizon)
	}
	if s.Stats().Scheduled != 1 {
		t.Errorf("expected 1 scheduled event, got %d", s.Stats().Scheduled)
	}
}

func TestBuildSchedule_DropsUnplaceable(t *testing.T) {
	cfg := testConfig()
	cfg.LaneCount = 1

	start := buildNow.Add(time.Hour)
	end := start.Add(time.Hour)
	s := build(t, []event.Event{
		watchableEvent(t, "ev-a", start, end),
		watchableEvent(t, "ev-b", start, end),
	}, cfg)

	if s.Stats().Scheduled != 1 {
		t.Errorf("expected 1 scheduled event, got %d", s.Stats().Scheduled)
	}
	if s.Stats().Dropped != 1 {
		t.Errorf("expected 1 dropped event, got %d", s.Stats().Dropped)
	}
}

func TestBuildSchedule_LaneRotation(t *testing.T) {
	// Three sequential non-overlapping events with wide spacing: every
	// lane is free each time, so least-recently-used rotation must walk
	// lanes 1, 2, 3 rather than reusing lane 1.
	cfg := testConfig()
	var events []event.Event
	for i := 0; i < 3; i++ {
		start := buildNow.Add(time.Duration(i*5+1) * time.Hour)
		events = append(events, watchableEvent(t, string(rune('a'+i)), start, start.Add(time.Hour)))
	}

	s := build(t, events, cfg)

	byEvent := map[string]int{}
	for _, slot := range s.AllSlots() {
		if !slot.Placeholder {
			byEvent[slot.EventID] = slot.LaneID
		}
	}
	if len(byEvent) != 3 {
		t.Fatalf("expected 3 event slots, got %d", len(byEvent))
	}
	if byEvent["a"] == byEvent["b"] || byEvent["b"] == byEvent["c"] || byEvent["a"] == byEvent["c"] {
		t.Errorf("expected rotation across distinct lanes, got %v", byEvent)
	}
}

func TestBuildSchedule_Deterministic(t *testing.T) {
	cfg := testConfig()
	events := []event.Event{
		watchableEvent(t, "ev-a", buildNow.Add(time.Hour), buildNow.Add(2*time.Hour)),
		watchableEvent(t, "ev-b", buildNow.Add(time.Hour), buildNow.Add(3*time.Hour)),
		watchableEvent(t, "ev-c", buildNow.Add(4*time.Hour), buildNow.Add(5*time.Hour)),
	}

	first := build(t, events, cfg)
	for i := 0; i < 5; i++ {
		again := build(t, events, cfg)
		a, b := first.AllSlots(), again.AllSlots()
		if len(a) != len(b) {
			t.Fatalf("slot counts differ between runs: %d vs %d", len(a), len(b))
		}
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("slot %d differs between runs: %+v vs %+v", j, a[j], b[j])
			}
		}
	}
}

func TestBuildSchedule_PaddingSeparatesSameLaneEvents(t *testing.T) {
	cfg := testConfig()
	cfg.LaneCount = 1

	first := watchableEvent(t, "ev-a", buildNow.Add(time.Hour), buildNow.Add(2*time.Hour))
	// Starts 5 minutes after ev-a's padded end.
	second := watchableEvent(t, "ev-b", first.End().Add(50*time.Minute), first.End().Add(3*time.Hour))

	s := build(t, []event.Event{first, second}, cfg)
	checkContiguous(t, s)

	if s.Stats().Scheduled != 2 {
		t.Fatalf("expected both events scheduled, got %d", s.Stats().Scheduled)
	}
	for _, slot := range s.Slots(1) {
		if slot.EventID == "ev-a" && !slot.End.Equal(first.End().Add(45*time.Minute)) {
			t.Errorf("expected ev-a to keep its padded end, got %v", slot.End)
		}
	}
	// An event starting inside ev-a's padding cannot share the lane.
	cramped := watchableEvent(t, "ev-c", first.End().Add(30*time.Minute), first.End().Add(2*time.Hour))
	s = build(t, []event.Event{first, cramped}, cfg)
	if s.Stats().Dropped != 1 {
		t.Errorf("expected the cramped event to be dropped, got %d dropped", s.Stats().Dropped)
	}
}

func TestReconstructRoundTrip(t *testing.T) {
	s := build(t, []event.Event{
		watchableEvent(t, "ev-a", buildNow.Add(time.Hour), buildNow.Add(2*time.Hour)),
	}, testConfig())

	start, end := s.Window()
	rebuilt := lane.Reconstruct(s.Lanes(), s.AllSlots(), s.BuiltAt(), start, end, s.Grace(), s.Stats())

	a, b := s.AllSlots(), rebuilt.AllSlots()
	if len(a) != len(b) {
		t.Fatalf("slot counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("slot %d differs after reconstruct: %+v vs %+v", i, a[i], b[i])
		}
	}
	if rebuilt.Grace() != s.Grace() {
		t.Errorf("grace differs after reconstruct")
	}
}
