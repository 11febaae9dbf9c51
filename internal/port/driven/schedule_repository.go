package driven

import (
	"context"

	"github.com/lanecast/lanecast/internal/lane"
)

// ScheduleRepository defines the interface for persisting the published
// lane schedule. This is a driven port implemented by concrete adapters
// (e.g., BoltDB).
type ScheduleRepository interface {
	// Replace atomically swaps the stored schedule for the given one.
	// Readers must never observe a partially replaced slot table.
	Replace(ctx context.Context, s *lane.Schedule) error

	// Load retrieves the stored schedule. Returns lane.ErrNoSchedule if
	// none has been published yet.
	Load(ctx context.Context) (*lane.Schedule, error)
}
