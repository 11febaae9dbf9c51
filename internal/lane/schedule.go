package lane

import (
	"errors"
	"sort"
	"time"

	"github.com/lanecast/lanecast/internal/deeplink"
	"github.com/lanecast/lanecast/internal/event"
	"github.com/lanecast/lanecast/internal/preference"
)

var (
	// ErrNoSchedule is returned when no schedule has been published yet.
	ErrNoSchedule = errors.New("no schedule published")
	// ErrUnknownLane is returned when a lane ID is outside the schedule.
	ErrUnknownLane = errors.New("unknown lane")
)

// Schedule is one complete, immutable lane plan: every lane, every slot,
// gap-free over the window. Rebuilds produce a new Schedule that
// replaces the old one wholesale; individual slots are never mutated.
type Schedule struct {
	lanes   []Lane
	slots   map[int][]Slot
	builtAt time.Time
	start   time.Time
	end     time.Time
	grace   time.Duration
	stats   BuildStats
}

// BuildStats summarizes one scheduler run.
type BuildStats struct {
	TotalEvents    int
	Scheduled      int
	FilteredOut    int
	OutsideHorizon int
	Dropped        int
	Placeholders   int
}

// BuildSchedule packs events into cfg.LaneCount lanes over the horizon
// starting at now. Deterministic: identical inputs yield an identical
// slot set. Events with no resolvable playable under prefs are dropped
// entirely; degenerate inputs (no events, a lane count at or below
// zero) yield an all-placeholder or empty schedule, never an error.
func BuildSchedule(events []event.Event, prefs preference.Preferences, cfg Config, now time.Time) (*Schedule, error) {
	if cfg.LaneCount < 0 {
		cfg.LaneCount = 0
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()

	s := &Schedule{
		slots:   make(map[int][]Slot),
		builtAt: now,
		grace:   cfg.Padding(),
	}
	if cfg.LaneCount == 0 {
		return s, nil
	}

	s.lanes = make([]Lane, cfg.LaneCount)
	for i := range s.lanes {
		s.lanes[i] = NewLane(i+1, cfg.LaneStartNumber)
	}

	s.stats.TotalEvents = len(events)
	scheduled := selectEvents(events, prefs, cfg, now, &s.stats)

	s.start, s.end = window(scheduled, cfg, now)
	perLane := place(scheduled, cfg, s.start, &s.stats)

	for i := range s.lanes {
		laneID := s.lanes[i].ID
		s.slots[laneID] = materialize(laneID, perLane[i], cfg, s.start, s.end, &s.stats)
	}
	return s, nil
}

// Reconstruct rebuilds a Schedule from persisted state without
// re-running the scheduler.
func Reconstruct(lanes []Lane, slots []Slot, builtAt, start, end time.Time, grace time.Duration, stats BuildStats) *Schedule {
	s := &Schedule{
		lanes:   lanes,
		slots:   make(map[int][]Slot, len(lanes)),
		builtAt: builtAt,
		start:   start,
		end:     end,
		grace:   grace,
		stats:   stats,
	}
	for _, slot := range slots {
		s.slots[slot.LaneID] = append(s.slots[slot.LaneID], slot)
	}
	for id := range s.slots {
		laneSlots := s.slots[id]
		sort.Slice(laneSlots, func(i, j int) bool { return laneSlots[i].Start.Before(laneSlots[j].Start) })
	}
	return s
}

// selectEvents filters to events schedulable under prefs within the
// horizon and sorts them by start, ties by event ID.
func selectEvents(events []event.Event, prefs preference.Preferences, cfg Config, now time.Time, stats *BuildStats) []event.Event {
	cutoff := now.Add(cfg.Horizon())
	var out []event.Event
	for _, ev := range events {
		if ev.Start().Before(now) || ev.Start().After(cutoff) {
			stats.OutsideHorizon++
			continue
		}
		if !deeplink.Resolvable(ev, prefs, now) {
			stats.FilteredOut++
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start().Equal(out[j].Start()) {
			return out[i].Start().Before(out[j].Start())
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

// window computes the global slot coverage: an hour-floored lead-in
// before now (or before the earliest event, whichever is earlier)
// through the last padded end plus the extra placeholder coverage.
func window(events []event.Event, cfg Config, now time.Time) (time.Time, time.Time) {
	start := floorHour(now).Add(-time.Hour)
	if len(events) == 0 {
		return start, floorHour(now.Add(cfg.Horizon() + cfg.ExtraCoverage()))
	}

	earliest := events[0].Start()
	for _, ev := range events[1:] {
		if ev.Start().Before(earliest) {
			earliest = ev.Start()
		}
	}
	if floored := floorHour(earliest); floored.Before(start) {
		start = floored.Add(-time.Hour)
	}

	latest := events[0].End().Add(cfg.Padding())
	for _, ev := range events[1:] {
		if padded := ev.End().Add(cfg.Padding()); padded.After(latest) {
			latest = padded
		}
	}
	return start, floorHour(latest.Add(cfg.ExtraCoverage()))
}

// place assigns events to lanes greedily. Each lane tracks a "next
// free" cursor at the padded end of its last event; among lanes whose
// cursor is at or before the event's start, the least recently used one
// wins, ties to the lowest lane index. An event no lane can host is
// dropped.
func place(events []event.Event, cfg Config, windowStart time.Time, stats *BuildStats) [][]event.Event {
	cursors := make([]time.Time, cfg.LaneCount)
	lastUsed := make([]int, cfg.LaneCount)
	perLane := make([][]event.Event, cfg.LaneCount)
	for i := range cursors {
		cursors[i] = windowStart
	}

	seq := 0
	for _, ev := range events {
		pick := -1
		for i := 0; i < cfg.LaneCount; i++ {
			if cursors[i].After(ev.Start()) {
				continue
			}
			if pick == -1 || lastUsed[i] < lastUsed[pick] {
				pick = i
			}
		}
		if pick == -1 {
			stats.Dropped++
			continue
		}
		perLane[pick] = append(perLane[pick], ev)
		cursors[pick] = ev.End().Add(cfg.Padding())
		seq++
		lastUsed[pick] = seq
		stats.Scheduled++
	}
	return perLane
}

// materialize turns one lane's event list into its gap-free slot
// sequence: placeholders before, between and after events, event slots
// padded and clipped against the following event.
func materialize(laneID int, events []event.Event, cfg Config, start, end time.Time, stats *BuildStats) []Slot {
	var slots []Slot
	cursor := start

	for i, ev := range events {
		slots = append(slots, fill(laneID, cursor, ev.Start(), cfg.PlaceholderBlock(), stats)...)

		slotEnd := ev.End().Add(cfg.Padding())
		if i+1 < len(events) && events[i+1].Start().Before(slotEnd) {
			slotEnd = events[i+1].Start()
		}
		slots = append(slots, newEventSlot(laneID, ev.Start(), slotEnd, ev.End(), ev.ID(), ev.Title()))
		cursor = slotEnd
	}

	slots = append(slots, fill(laneID, cursor, end, cfg.PlaceholderBlock(), stats)...)
	return slots
}

// fill covers [from, to) with placeholder slots capped at block length.
func fill(laneID int, from, to time.Time, block time.Duration, stats *BuildStats) []Slot {
	var slots []Slot
	for from.Before(to) {
		blockEnd := from.Add(block)
		if blockEnd.After(to) {
			blockEnd = to
		}
		slots = append(slots, newPlaceholderSlot(laneID, from, blockEnd))
		stats.Placeholders++
		from = blockEnd
	}
	return slots
}

func floorHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// Lanes returns the schedule's lanes in ID order.
func (s *Schedule) Lanes() []Lane { return s.lanes }

// Lane returns the lane with the given ID.
func (s *Schedule) Lane(id int) (Lane, bool) {
	if id < 1 || id > len(s.lanes) {
		return Lane{}, false
	}
	return s.lanes[id-1], true
}

// Slots returns one lane's slots ordered by start. Unknown lanes return
// nil.
func (s *Schedule) Slots(laneID int) []Slot { return s.slots[laneID] }

// AllSlots returns every slot across all lanes, lane by lane in ID
// order.
func (s *Schedule) AllSlots() []Slot {
	var out []Slot
	for _, l := range s.lanes {
		out = append(out, s.slots[l.ID]...)
	}
	return out
}

// Window returns the global coverage bounds of the schedule.
func (s *Schedule) Window() (time.Time, time.Time) { return s.start, s.end }

// BuiltAt returns the instant the schedule was built.
func (s *Schedule) BuiltAt() time.Time { return s.builtAt }

// Grace returns the soft-active grace window length.
func (s *Schedule) Grace() time.Duration { return s.grace }

// Stats returns the build summary.
func (s *Schedule) Stats() BuildStats { return s.stats }
