package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lanecast/lanecast/internal/clock"
	"github.com/lanecast/lanecast/internal/deeplink"
	"github.com/lanecast/lanecast/internal/event"
	"github.com/lanecast/lanecast/internal/lane"
	"github.com/lanecast/lanecast/internal/preference"
	"github.com/lanecast/lanecast/internal/service"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// fakeEventRepo is an in-memory EventRepository for service tests.
type fakeEventRepo struct {
	events  map[string]event.Event
	findErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]event.Event)}
}

func (r *fakeEventRepo) Save(_ context.Context, ev event.Event) error {
	r.events[ev.ID()] = ev
	return nil
}

func (r *fakeEventRepo) FindByID(_ context.Context, id string) (event.Event, error) {
	if r.findErr != nil {
		return event.Event{}, r.findErr
	}
	ev, ok := r.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	return ev, nil
}

func (r *fakeEventRepo) FindAll(_ context.Context) ([]event.Event, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := []event.Event{}
	for _, ev := range r.events {
		out = append(out, ev)
	}
	return out, nil
}

func (r *fakeEventRepo) FindEndingAfter(ctx context.Context, t time.Time) ([]event.Event, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []event.Event{}
	for _, ev := range all {
		if ev.End().After(t) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return event.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) Ping(_ context.Context) error { return nil }

// fakePreferenceRepo is an in-memory PreferenceRepository.
type fakePreferenceRepo struct {
	prefs   preference.Preferences
	loadErr error
}

func (r *fakePreferenceRepo) Load(_ context.Context) (preference.Preferences, error) {
	if r.loadErr != nil {
		return preference.Preferences{}, r.loadErr
	}
	return r.prefs, nil
}

func (r *fakePreferenceRepo) Save(_ context.Context, prefs preference.Preferences) error {
	r.prefs = prefs
	return nil
}

// fakeScheduleRepo is an in-memory ScheduleRepository.
type fakeScheduleRepo struct {
	stored     *lane.Schedule
	replaceErr error
}

func (r *fakeScheduleRepo) Replace(_ context.Context, s *lane.Schedule) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.stored = s
	return nil
}

func (r *fakeScheduleRepo) Load(_ context.Context) (*lane.Schedule, error) {
	if r.stored == nil {
		return nil, lane.ErrNoSchedule
	}
	return r.stored, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serviceEvent(t *testing.T, id string, start, end time.Time) event.Event {
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

func newTestScheduleService(events *fakeEventRepo, prefs *fakePreferenceRepo, schedules *fakeScheduleRepo) *ScheduleService {
	cfg := lane.DefaultConfig()
	cfg.LaneCount = 2
	return NewScheduleService(events, prefs, schedules, cfg, clock.Fixed(testNow), testLogger())
}

func TestScheduleService_CurrentBeforeBuild(t *testing.T) {
	svc := newTestScheduleService(newFakeEventRepo(), &fakePreferenceRepo{prefs: preference.Default()}, &fakeScheduleRepo{})

	if _, err := svc.Current(); !errors.Is(err, lane.ErrNoSchedule) {
		t.Fatalf("expected ErrNoSchedule, got %v", err)
	}
	if _, err := svc.Lanes(); !errors.Is(err, lane.ErrNoSchedule) {
		t.Fatalf("expected ErrNoSchedule from Lanes, got %v", err)
	}
}

func TestScheduleService_RebuildPublishesAndPersists(t *testing.T) {
	events := newFakeEventRepo()
	schedules := &fakeScheduleRepo{}
	svc := newTestScheduleService(events, &fakePreferenceRepo{prefs: preference.Default()}, schedules)

	ev := serviceEvent(t, "ev-1", testNow.Add(time.Hour), testNow.Add(3*time.Hour))
	if err := events.Save(context.Background(), ev); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}

	built, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("expected rebuild to succeed, got %v", err)
	}
	if built.Stats().Scheduled != 1 {
		t.Errorf("expected 1 scheduled event, got %d", built.Stats().Scheduled)
	}

	current, err := svc.Current()
	if err != nil {
		t.Fatalf("expected a published schedule, got %v", err)
	}
	if current != built {
		t.Error("expected the rebuilt schedule to be published")
	}
	if schedules.stored != built {
		t.Error("expected the rebuilt schedule to be persisted")
	}
}

func TestScheduleService_RebuildFailureKeepsSnapshot(t *testing.T) {
	events := newFakeEventRepo()
	schedules := &fakeScheduleRepo{}
	svc := newTestScheduleService(events, &fakePreferenceRepo{prefs: preference.Default()}, schedules)

	first, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("expected the first rebuild to succeed, got %v", err)
	}

	events.findErr = errors.New("disk on fire")
	_, err = svc.Rebuild(context.Background())

	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected a BuildError, got %v", err)
	}
	if buildErr.Stage != "loading events" {
		t.Errorf("expected failure at loading events, got %q", buildErr.Stage)
	}
	if !errors.Is(err, events.findErr) {
		t.Error("expected the cause to unwrap")
	}

	current, err := svc.Current()
	if err != nil {
		t.Fatalf("expected the prior schedule to stay published, got %v", err)
	}
	if current != first {
		t.Error("expected the failed rebuild to leave the snapshot untouched")
	}
}

func TestScheduleService_RebuildPersistFailure(t *testing.T) {
	schedules := &fakeScheduleRepo{replaceErr: errors.New("no space left")}
	svc := newTestScheduleService(newFakeEventRepo(), &fakePreferenceRepo{prefs: preference.Default()}, schedules)

	_, err := svc.Rebuild(context.Background())
	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected a BuildError, got %v", err)
	}
	if buildErr.Stage != "persisting schedule" {
		t.Errorf("expected failure at persisting schedule, got %q", buildErr.Stage)
	}
	if _, err := svc.Current(); !errors.Is(err, lane.ErrNoSchedule) {
		t.Error("expected no schedule published after a persist failure")
	}
}

func TestScheduleService_Restore(t *testing.T) {
	schedules := &fakeScheduleRepo{}
	svc := newTestScheduleService(newFakeEventRepo(), &fakePreferenceRepo{prefs: preference.Default()}, schedules)

	// Nothing persisted: restore is a no-op, not an error.
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("expected restore of an empty store to succeed, got %v", err)
	}
	if _, err := svc.Current(); !errors.Is(err, lane.ErrNoSchedule) {
		t.Fatal("expected no schedule after an empty restore")
	}

	persisted, err := lane.BuildSchedule(nil, preference.Default(), lane.DefaultConfig(), testNow)
	if err != nil {
		t.Fatalf("failed to build schedule: %v", err)
	}
	schedules.stored = persisted

	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("expected restore to succeed, got %v", err)
	}
	current, err := svc.Current()
	if err != nil {
		t.Fatalf("expected a restored schedule, got %v", err)
	}
	if current != persisted {
		t.Error("expected the persisted schedule to be published")
	}
}

func TestScheduleService_LaneSlots(t *testing.T) {
	svc := newTestScheduleService(newFakeEventRepo(), &fakePreferenceRepo{prefs: preference.Default()}, &fakeScheduleRepo{})
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("expected rebuild to succeed, got %v", err)
	}

	l, slots, err := svc.LaneSlots(1)
	if err != nil {
		t.Fatalf("expected lane 1 to exist, got %v", err)
	}
	if l.ID != 1 {
		t.Errorf("expected lane ID 1, got %d", l.ID)
	}
	if len(slots) == 0 {
		t.Error("expected placeholder slots on the empty lane")
	}

	if _, _, err := svc.LaneSlots(99); !errors.Is(err, lane.ErrUnknownLane) {
		t.Fatalf("expected ErrUnknownLane, got %v", err)
	}
}

func TestScheduleService_NowPlaying(t *testing.T) {
	events := newFakeEventRepo()
	svc := newTestScheduleService(events, &fakePreferenceRepo{prefs: preference.Default()}, &fakeScheduleRepo{})

	ev := serviceEvent(t, "ev-1", testNow.Add(time.Hour), testNow.Add(3*time.Hour))
	if err := events.Save(context.Background(), ev); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("expected rebuild to succeed, got %v", err)
	}

	// Find the lane hosting the event.
	current, _ := svc.Current()
	laneID := 0
	for _, slot := range current.AllSlots() {
		if slot.EventID == "ev-1" {
			laneID = slot.LaneID
		}
	}
	if laneID == 0 {
		t.Fatal("expected the event to be scheduled")
	}

	t.Run("without link", func(t *testing.T) {
		res, err := svc.NowPlaying(context.Background(), laneID, testNow.Add(2*time.Hour), deeplink.FormatNative, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.State != lane.RealActive {
			t.Fatalf("expected RealActive, got %v", res.State)
		}
		if res.Resolution != nil {
			t.Error("expected no resolution without the link flag")
		}
	})

	t.Run("with link", func(t *testing.T) {
		res, err := svc.NowPlaying(context.Background(), laneID, testNow.Add(2*time.Hour), deeplink.FormatNative, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Resolution == nil {
			t.Fatal("expected a resolved link")
		}
		if res.Resolution.Link != "peacock://event/ev-1" {
			t.Errorf("unexpected link %q", res.Resolution.Link)
		}
	})

	t.Run("grace window keeps the link usable", func(t *testing.T) {
		res, err := svc.NowPlaying(context.Background(), laneID, ev.End().Add(15*time.Minute), deeplink.FormatNative, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.State != lane.PlaceholderWithFallback || !res.Fallback {
			t.Fatalf("expected a grace-window fallback, got %v", res.State)
		}
		if res.Resolution == nil {
			t.Error("expected the event link during grace")
		}
	})
}

func TestScheduleService_NowPlayingResolutionFailureDowngrades(t *testing.T) {
	events := newFakeEventRepo()
	// Peacock disabled: the event schedules under default preferences
	// read at rebuild time, but the later link resolution must fail.
	prefRepo := &fakePreferenceRepo{prefs: preference.Default()}
	svc := newTestScheduleService(events, prefRepo, &fakeScheduleRepo{})

	ev := serviceEvent(t, "ev-1", testNow.Add(time.Hour), testNow.Add(3*time.Hour))
	if err := events.Save(context.Background(), ev); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("expected rebuild to succeed, got %v", err)
	}

	current, _ := svc.Current()
	laneID := 0
	for _, slot := range current.AllSlots() {
		if slot.EventID == "ev-1" {
			laneID = slot.LaneID
		}
	}
	if laneID == 0 {
		t.Fatal("expected the event to be scheduled")
	}

	// Disable the event's only service after the rebuild. The grace-window
	// query can no longer produce a link and must degrade to a bare
	// placeholder instead of erroring.
	restricted, err := preference.New(preference.Params{
		EnabledServices: []service.ID{service.ParamountPlus},
	})
	if err != nil {
		t.Fatalf("failed to create preferences: %v", err)
	}
	prefRepo.prefs = restricted

	res, err := svc.NowPlaying(context.Background(), laneID, ev.End().Add(15*time.Minute), deeplink.FormatNative, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.State != lane.PlaceholderNoFallback {
		t.Errorf("expected the fallback to be withdrawn, got %v", res.State)
	}
	if res.EventID != "" || res.Fallback {
		t.Error("expected no event attribution after the downgrade")
	}
	if res.Resolution != nil {
		t.Error("expected no resolution after the downgrade")
	}
}

func TestScheduleService_NowPlayingDeletedEventDowngrades(t *testing.T) {
	events := newFakeEventRepo()
	svc := newTestScheduleService(events, &fakePreferenceRepo{prefs: preference.Default()}, &fakeScheduleRepo{})

	ev := serviceEvent(t, "ev-1", testNow.Add(time.Hour), testNow.Add(3*time.Hour))
	if err := events.Save(context.Background(), ev); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("expected rebuild to succeed, got %v", err)
	}

	current, _ := svc.Current()
	laneID := 0
	for _, slot := range current.AllSlots() {
		if slot.EventID == "ev-1" {
			laneID = slot.LaneID
		}
	}
	if laneID == 0 {
		t.Fatal("expected the event to be scheduled")
	}

	// Prune the event after the build. Its slots still reference it.
	if err := events.Delete(context.Background(), "ev-1"); err != nil {
		t.Fatalf("failed to delete event: %v", err)
	}

	t.Run("grace window", func(t *testing.T) {
		res, err := svc.NowPlaying(context.Background(), laneID, ev.End().Add(15*time.Minute), deeplink.FormatNative, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.State != lane.PlaceholderNoFallback {
			t.Errorf("expected the fallback to be withdrawn, got %v", res.State)
		}
		if res.EventID != "" || res.Fallback {
			t.Error("expected no event attribution after the downgrade")
		}
	})

	t.Run("live slot", func(t *testing.T) {
		res, err := svc.NowPlaying(context.Background(), laneID, testNow.Add(2*time.Hour), deeplink.FormatNative, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.State != lane.RealActive {
			t.Errorf("expected the live state to survive, got %v", res.State)
		}
		if res.Resolution != nil {
			t.Error("expected no resolution for a pruned event")
		}
	})
}

// parkedPreferenceRepo blocks Load until released, to hold a rebuild
// mid-flight.
type parkedPreferenceRepo struct {
	entered chan struct{}
	release chan struct{}
}

func (r *parkedPreferenceRepo) Load(_ context.Context) (preference.Preferences, error) {
	r.entered <- struct{}{}
	<-r.release
	return preference.Default(), nil
}

func (r *parkedPreferenceRepo) Save(_ context.Context, _ preference.Preferences) error {
	return nil
}

func TestScheduleService_RebuildSerialized(t *testing.T) {
	prefs := &parkedPreferenceRepo{entered: make(chan struct{}), release: make(chan struct{})}
	cfg := lane.DefaultConfig()
	cfg.LaneCount = 2
	svc := NewScheduleService(newFakeEventRepo(), prefs, &fakeScheduleRepo{}, cfg, clock.Fixed(testNow), testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Rebuild(context.Background())
		done <- err
	}()
	<-prefs.entered

	// The first rebuild is parked inside its preference load and still
	// holds the rebuild lock.
	if _, err := svc.Rebuild(context.Background()); !errors.Is(err, ErrRebuildInProgress) {
		t.Fatalf("expected ErrRebuildInProgress, got %v", err)
	}

	close(prefs.release)
	if err := <-done; err != nil {
		t.Fatalf("expected the first rebuild to finish, got %v", err)
	}
	if _, err := svc.Current(); err != nil {
		t.Fatalf("expected the first rebuild to publish, got %v", err)
	}
}
