package lane

import (
	"fmt"
	"time"
)

// Slot is one contiguous block on a lane's timeline. Slots on a lane
// are totally ordered by start and non-overlapping; placeholders fill
// every gap so each instant in the window maps to exactly one slot.
type Slot struct {
	LaneID int
	// Start and End bound the slot on the guide. For event slots End
	// includes padding, clipped against the next slot.
	Start time.Time
	End   time.Time
	// EventID is empty for placeholders.
	EventID string
	Title   string
	// EventEnd is the event's true, unpadded end; zero for placeholders.
	// The grace window for soft-active queries is measured from it.
	EventEnd    time.Time
	Placeholder bool
}

// PlaceholderTitle is the title rendered for filler slots.
const PlaceholderTitle = "Nothing Scheduled"

func newEventSlot(laneID int, start, end, eventEnd time.Time, eventID, title string) Slot {
	return Slot{
		LaneID:   laneID,
		Start:    start,
		End:      end,
		EventID:  eventID,
		Title:    title,
		EventEnd: eventEnd,
	}
}

func newPlaceholderSlot(laneID int, start, end time.Time) Slot {
	return Slot{
		LaneID:      laneID,
		Start:       start,
		End:         end,
		Title:       PlaceholderTitle,
		Placeholder: true,
	}
}

// Key returns a stable identifier for the slot, unique within one
// schedule.
func (s Slot) Key() string {
	if s.Placeholder {
		return fmt.Sprintf("placeholder-%d-%s", s.LaneID, s.Start.Format(time.RFC3339))
	}
	return fmt.Sprintf("%d-%s-%s", s.LaneID, s.EventID, s.Start.Format(time.RFC3339))
}

// Contains reports whether t falls within the slot: start inclusive,
// end exclusive.
func (s Slot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Duration returns the slot length.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}
