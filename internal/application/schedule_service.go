package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lanecast/lanecast/internal/clock"
	"github.com/lanecast/lanecast/internal/deeplink"
	"github.com/lanecast/lanecast/internal/event"
	"github.com/lanecast/lanecast/internal/lane"
	"github.com/lanecast/lanecast/internal/port/driven"
	"github.com/lanecast/lanecast/metrics"
)

// ErrRebuildInProgress is returned when a rebuild request arrives while
// another rebuild is still running.
var ErrRebuildInProgress = errors.New("schedule rebuild already in progress")

// BuildError wraps a failure during a schedule rebuild with the stage
// it happened in. Rebuilds are all-or-nothing: on any BuildError the
// previously published schedule stays authoritative.
type BuildError struct {
	Stage string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("schedule rebuild failed at %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ScheduleService owns the published lane schedule: it orchestrates
// rebuilds and answers lane queries off an atomically swapped snapshot.
// Queries are safe for unbounded concurrency; rebuilds are serialized.
type ScheduleService struct {
	eventRepo    driven.EventRepository
	prefRepo     driven.PreferenceRepository
	scheduleRepo driven.ScheduleRepository
	cfg          lane.Config
	clock        clock.Clock
	logger       *slog.Logger

	mu      sync.RWMutex
	current *lane.Schedule

	rebuildMu sync.Mutex
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(
	eventRepo driven.EventRepository,
	prefRepo driven.PreferenceRepository,
	scheduleRepo driven.ScheduleRepository,
	cfg lane.Config,
	clk clock.Clock,
	logger *slog.Logger,
) *ScheduleService {
	return &ScheduleService{
		eventRepo:    eventRepo,
		prefRepo:     prefRepo,
		scheduleRepo: scheduleRepo,
		cfg:          cfg,
		clock:        clk,
		logger:       logger,
	}
}

// Restore loads the persisted schedule into the query snapshot, if one
// exists. Called once at startup so lane queries work before the first
// rebuild.
func (s *ScheduleService) Restore(ctx context.Context) error {
	restored, err := s.scheduleRepo.Load(ctx)
	if err != nil {
		if errors.Is(err, lane.ErrNoSchedule) {
			return nil
		}
		return fmt.Errorf("loading persisted schedule: %w", err)
	}

	s.publish(restored)
	s.logger.Info("restored persisted schedule",
		"lanes", len(restored.Lanes()),
		"built_at", restored.BuiltAt())
	return nil
}

// Rebuild regenerates the whole lane schedule from the current event
// set and preferences, persists it, and publishes it to readers as one
// atomic swap. A concurrent rebuild request is rejected with
// ErrRebuildInProgress. Any failure aborts without touching the
// published schedule.
func (s *ScheduleService) Rebuild(ctx context.Context) (*lane.Schedule, error) {
	if !s.rebuildMu.TryLock() {
		metrics.RecordRebuild("busy", 0)
		return nil, ErrRebuildInProgress
	}
	defer s.rebuildMu.Unlock()

	buildID := uuid.NewString()
	started := s.clock.Now()
	logger := s.logger.With("build_id", buildID)
	logger.Info("starting schedule rebuild")

	prefs, err := s.prefRepo.Load(ctx)
	if err != nil {
		metrics.RecordRebuild("error", 0)
		return nil, &BuildError{Stage: "loading preferences", Err: err}
	}

	events, err := s.eventRepo.FindEndingAfter(ctx, started)
	if err != nil {
		metrics.RecordRebuild("error", 0)
		return nil, &BuildError{Stage: "loading events", Err: err}
	}

	schedule, err := lane.BuildSchedule(events, prefs, s.cfg, started)
	if err != nil {
		metrics.RecordRebuild("error", 0)
		return nil, &BuildError{Stage: "building schedule", Err: err}
	}

	if err := s.scheduleRepo.Replace(ctx, schedule); err != nil {
		metrics.RecordRebuild("error", 0)
		return nil, &BuildError{Stage: "persisting schedule", Err: err}
	}

	s.publish(schedule)

	stats := schedule.Stats()
	elapsed := s.clock.Now().Sub(started)
	metrics.RecordRebuild("ok", elapsed)
	metrics.SetScheduleGauges(stats.Scheduled, stats.Placeholders, stats.Dropped)
	logger.Info("schedule rebuild complete",
		"events", stats.TotalEvents,
		"scheduled", stats.Scheduled,
		"filtered_out", stats.FilteredOut,
		"dropped", stats.Dropped,
		"placeholders", stats.Placeholders,
		"elapsed", elapsed)
	return schedule, nil
}

func (s *ScheduleService) publish(schedule *lane.Schedule) {
	s.mu.Lock()
	s.current = schedule
	s.mu.Unlock()
}

// Current returns the published schedule. Returns lane.ErrNoSchedule
// when none has been built or restored yet.
func (s *ScheduleService) Current() (*lane.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, lane.ErrNoSchedule
	}
	return s.current, nil
}

// Lanes returns the published schedule's lanes.
func (s *ScheduleService) Lanes() ([]lane.Lane, error) {
	schedule, err := s.Current()
	if err != nil {
		return nil, err
	}
	return schedule.Lanes(), nil
}

// LaneSlots returns one lane's slot list from the published schedule.
// Returns lane.ErrUnknownLane for a lane ID outside the schedule.
func (s *ScheduleService) LaneSlots(laneID int) (lane.Lane, []lane.Slot, error) {
	schedule, err := s.Current()
	if err != nil {
		return lane.Lane{}, nil, err
	}
	l, ok := schedule.Lane(laneID)
	if !ok {
		return lane.Lane{}, nil, lane.ErrUnknownLane
	}
	return l, schedule.Slots(laneID), nil
}

// NowPlayingResult is the answer to a now-playing query, optionally
// with the resolved link for the live or grace-window event.
type NowPlayingResult struct {
	lane.NowPlaying
	Resolution *deeplink.Resolution
}

// downgradeFallback strips a grace-window fallback to a bare
// placeholder when its event cannot be resolved to a link.
func (r *NowPlayingResult) downgradeFallback() {
	if !r.Fallback {
		return
	}
	r.State = lane.PlaceholderNoFallback
	r.EventID = ""
	r.Title = ""
	r.Fallback = false
}

// NowPlaying resolves the lane's state at asOf. With withLink set and a
// watchable event present, the result includes its resolved link;
// resolution failure downgrades a grace-window fallback to a bare
// placeholder rather than erroring.
func (s *ScheduleService) NowPlaying(ctx context.Context, laneID int, asOf time.Time, format deeplink.Format, withLink bool) (NowPlayingResult, error) {
	schedule, err := s.Current()
	if err != nil {
		return NowPlayingResult{}, err
	}

	np := schedule.ActiveAt(laneID, asOf)
	metrics.RecordNowPlaying(np.State.String())
	result := NowPlayingResult{NowPlaying: np}
	if !withLink || np.EventID == "" {
		return result, nil
	}

	ev, err := s.eventRepo.FindByID(ctx, np.EventID)
	if err != nil {
		// A slot can outlive its event when the inventory is pruned
		// after a build. Keep the answer renderable.
		if errors.Is(err, event.ErrNotFound) {
			result.downgradeFallback()
			return result, nil
		}
		return NowPlayingResult{}, fmt.Errorf("loading event %q: %w", np.EventID, err)
	}
	prefs, err := s.prefRepo.Load(ctx)
	if err != nil {
		return NowPlayingResult{}, fmt.Errorf("loading preferences: %w", err)
	}

	res, err := deeplink.Resolve(ev, prefs, asOf, format)
	if err != nil {
		if errors.Is(err, deeplink.ErrNoCandidate) {
			metrics.RecordResolution("no_candidate")
			result.downgradeFallback()
			return result, nil
		}
		return NowPlayingResult{}, err
	}
	if res.Fallback {
		metrics.RecordResolution("fallback")
	} else {
		metrics.RecordResolution("ok")
	}
	result.Resolution = &res
	return result, nil
}
