package driven

import (
	"context"
	"time"

	"github.com/lanecast/lanecast/internal/event"
)

// EventRepository defines the interface for event persistence operations.
// This is a driven port that will be implemented by concrete adapters (e.g., BoltDB).
type EventRepository interface {
	// Save persists an event together with its playables, replacing any
	// previous version with the same ID. Ingestion refreshes events in
	// place, so overwrites are not errors.
	Save(ctx context.Context, ev event.Event) error

	// FindByID retrieves an event by its ID. Returns event.ErrNotFound
	// if the event does not exist.
	FindByID(ctx context.Context, id string) (event.Event, error)

	// FindAll retrieves every stored event.
	FindAll(ctx context.Context) ([]event.Event, error)

	// FindEndingAfter retrieves events whose end is after the given
	// instant, i.e. upcoming and currently running events.
	FindEndingAfter(ctx context.Context, t time.Time) ([]event.Event, error)

	// Delete removes an event by its ID. Returns event.ErrNotFound if
	// the event does not exist.
	Delete(ctx context.Context, id string) error

	// Ping checks if the repository (database) is accessible and operational.
	Ping(ctx context.Context) error
}
