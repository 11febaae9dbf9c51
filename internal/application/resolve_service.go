package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/lanecast/lanecast/internal/clock"
	"github.com/lanecast/lanecast/internal/deeplink"
	"github.com/lanecast/lanecast/internal/port/driven"
	"github.com/lanecast/lanecast/metrics"
)

// ResolveService answers "best link for this event right now" queries.
// It depends only on domain packages and port interfaces.
type ResolveService struct {
	eventRepo driven.EventRepository
	prefRepo  driven.PreferenceRepository
	clock     clock.Clock
}

// NewResolveService creates a new resolve service.
func NewResolveService(eventRepo driven.EventRepository, prefRepo driven.PreferenceRepository, clk clock.Clock) *ResolveService {
	return &ResolveService{
		eventRepo: eventRepo,
		prefRepo:  prefRepo,
		clock:     clk,
	}
}

// Resolve picks the best playback link for the event under the stored
// preferences. Returns event.ErrNotFound for an unknown event and
// deeplink.ErrNoCandidate when nothing is watchable.
func (s *ResolveService) Resolve(ctx context.Context, eventID string, format deeplink.Format) (deeplink.Resolution, error) {
	ev, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return deeplink.Resolution{}, err
	}

	prefs, err := s.prefRepo.Load(ctx)
	if err != nil {
		return deeplink.Resolution{}, fmt.Errorf("loading preferences: %w", err)
	}

	res, err := deeplink.Resolve(ev, prefs, s.clock.Now(), format)
	if err != nil {
		if errors.Is(err, deeplink.ErrNoCandidate) {
			metrics.RecordResolution("no_candidate")
		}
		return deeplink.Resolution{}, err
	}
	if res.Fallback {
		metrics.RecordResolution("fallback")
	} else {
		metrics.RecordResolution("ok")
	}
	return res, nil
}
