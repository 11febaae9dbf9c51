package application

import (
	"context"
	"time"

	"github.com/lanecast/lanecast/internal/event"
	"github.com/lanecast/lanecast/internal/port/driven"
)

// EventService provides use cases for the event inventory. Events are
// created and refreshed by the external ingestion pipeline through this
// surface and are read-only for everything downstream.
type EventService struct {
	eventRepo driven.EventRepository
}

// NewEventService creates a new event service.
func NewEventService(eventRepo driven.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

// Ingest validates and stores an event, replacing any previous version
// with the same ID.
func (s *EventService) Ingest(ctx context.Context, id, title string, start, end time.Time, attrs event.Attrs, playables []event.Playable) (event.Event, error) {
	ev, err := event.New(id, title, start, end, attrs, playables)
	if err != nil {
		return event.Event{}, err
	}

	if err := s.eventRepo.Save(ctx, ev); err != nil {
		return event.Event{}, err
	}

	return ev, nil
}

// Get retrieves an event by its ID.
// Returns event.ErrNotFound if the event does not exist.
func (s *EventService) Get(ctx context.Context, id string) (event.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

// ListUpcoming retrieves events still running or yet to start at t.
func (s *EventService) ListUpcoming(ctx context.Context, t time.Time) ([]event.Event, error) {
	return s.eventRepo.FindEndingAfter(ctx, t)
}

// Delete removes an event by its ID.
// Returns event.ErrNotFound if the event does not exist.
func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.eventRepo.Delete(ctx, id)
}
