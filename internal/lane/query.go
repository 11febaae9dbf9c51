package lane

import "time"

// State classifies what a lane is showing at one instant.
type State int

const (
	// NoActive means the lane has no slot at the queried instant
	// (unknown lane or a time outside the window).
	NoActive State = iota
	// RealActive means a scheduled event is live.
	RealActive
	// PlaceholderWithFallback means filler is showing but a just-ended
	// event is still within its grace window and its link stays usable.
	PlaceholderWithFallback
	// PlaceholderNoFallback means filler is showing and nothing is
	// watchable.
	PlaceholderNoFallback
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case RealActive:
		return "active"
	case PlaceholderWithFallback:
		return "fallback"
	case PlaceholderNoFallback:
		return "placeholder"
	default:
		return "none"
	}
}

// NowPlaying is the answer to an "active slot for lane and time" query.
type NowPlaying struct {
	State State
	// Slot is the slot covering the instant; zero when State is NoActive.
	Slot Slot
	// EventID names the live or grace-window event, empty otherwise.
	EventID string
	Title   string
	// Fallback is true when the event ended but its grace window still
	// covers the instant.
	Fallback bool
}

// ActiveAt resolves the lane's state at the given instant. The grace
// window is measured from the event's true end, so an event slot whose
// padded tail covers asOf already counts as fallback, not live.
// Unknown lanes and out-of-window instants return NoActive, never an
// error.
func (s *Schedule) ActiveAt(laneID int, asOf time.Time) NowPlaying {
	asOf = asOf.UTC()
	slots := s.slots[laneID]
	idx := activeIndex(slots, asOf)
	if idx == -1 {
		return NowPlaying{State: NoActive}
	}

	slot := slots[idx]
	if !slot.Placeholder {
		if asOf.Before(slot.EventEnd) {
			return NowPlaying{
				State:   RealActive,
				Slot:    slot,
				EventID: slot.EventID,
				Title:   slot.Title,
			}
		}
		// Padded tail of the event's own slot.
		if asOf.Before(slot.EventEnd.Add(s.grace)) {
			return NowPlaying{
				State:    PlaceholderWithFallback,
				Slot:     slot,
				EventID:  slot.EventID,
				Title:    slot.Title,
				Fallback: true,
			}
		}
		return NowPlaying{State: PlaceholderNoFallback, Slot: slot}
	}

	// Placeholder: look back for the most recent event whose grace
	// window still covers asOf.
	for i := idx - 1; i >= 0; i-- {
		prev := slots[i]
		if prev.Placeholder {
			continue
		}
		if asOf.Before(prev.EventEnd.Add(s.grace)) {
			return NowPlaying{
				State:    PlaceholderWithFallback,
				Slot:     slot,
				EventID:  prev.EventID,
				Title:    prev.Title,
				Fallback: true,
			}
		}
		break
	}
	return NowPlaying{State: PlaceholderNoFallback, Slot: slot}
}

// activeIndex finds the slot containing asOf by binary search over the
// ordered, non-overlapping slot list.
func activeIndex(slots []Slot, asOf time.Time) int {
	lo, hi := 0, len(slots)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case asOf.Before(slots[mid].Start):
			hi = mid - 1
		case !asOf.Before(slots[mid].End):
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}
