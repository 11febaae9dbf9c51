package driven

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.etcd.io/bbolt"

	"github.com/lanecast/lanecast/internal/lane"
)

const (
	scheduleBucket  = "schedule"
	scheduleMetaKey = "meta"
	scheduleSlotKey = "slots"
)

// ScheduleBoltDBRepository implements the ScheduleRepository port using
// BoltDB. The whole slot table is swapped inside one write transaction,
// so readers never see a partially replaced schedule, even across a
// restart.
type ScheduleBoltDBRepository struct {
	db *bbolt.DB
}

// NewScheduleBoltDBRepository creates a new BoltDB-backed schedule
// repository. It initializes the required bucket if it doesn't exist.
func NewScheduleBoltDBRepository(db *bbolt.DB) (*ScheduleBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(scheduleBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ScheduleBoltDBRepository{db: db}, nil
}

// scheduleMetaDTO is used for JSON serialization of schedule metadata.
type scheduleMetaDTO struct {
	Lanes        []laneDTO `json:"lanes"`
	BuiltAt      string    `json:"built_at"`
	WindowStart  string    `json:"window_start"`
	WindowEnd    string    `json:"window_end"`
	GraceMinutes int       `json:"grace_minutes"`
	Stats        statsDTO  `json:"stats"`
}

type laneDTO struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
}

type statsDTO struct {
	TotalEvents    int `json:"total_events"`
	Scheduled      int `json:"scheduled"`
	FilteredOut    int `json:"filtered_out"`
	OutsideHorizon int `json:"outside_horizon"`
	Dropped        int `json:"dropped"`
	Placeholders   int `json:"placeholders"`
}

// slotDTO is used for JSON serialization of one lane slot.
type slotDTO struct {
	LaneID      int    `json:"lane_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	EventID     string `json:"event_id,omitempty"`
	Title       string `json:"title,omitempty"`
	EventEnd    string `json:"event_end,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

func scheduleToDTOs(s *lane.Schedule) (scheduleMetaDTO, []slotDTO) {
	start, end := s.Window()
	meta := scheduleMetaDTO{
		BuiltAt:      s.BuiltAt().Format(time.RFC3339),
		WindowStart:  start.Format(time.RFC3339),
		WindowEnd:    end.Format(time.RFC3339),
		GraceMinutes: int(s.Grace() / time.Minute),
		Stats: statsDTO{
			TotalEvents:    s.Stats().TotalEvents,
			Scheduled:      s.Stats().Scheduled,
			FilteredOut:    s.Stats().FilteredOut,
			OutsideHorizon: s.Stats().OutsideHorizon,
			Dropped:        s.Stats().Dropped,
			Placeholders:   s.Stats().Placeholders,
		},
	}
	for _, l := range s.Lanes() {
		meta.Lanes = append(meta.Lanes, laneDTO{ID: l.ID, Name: l.Name, Number: l.Number})
	}

	var slots []slotDTO
	for _, slot := range s.AllSlots() {
		dto := slotDTO{
			LaneID:      slot.LaneID,
			Start:       slot.Start.Format(time.RFC3339),
			End:         slot.End.Format(time.RFC3339),
			EventID:     slot.EventID,
			Title:       slot.Title,
			Placeholder: slot.Placeholder,
		}
		if !slot.EventEnd.IsZero() {
			dto.EventEnd = slot.EventEnd.Format(time.RFC3339)
		}
		slots = append(slots, dto)
	}
	return meta, slots
}

func dtosToSchedule(meta scheduleMetaDTO, slotDTOs []slotDTO) (*lane.Schedule, error) {
	builtAt, err := time.Parse(time.RFC3339, meta.BuiltAt)
	if err != nil {
		return nil, err
	}
	start, err := time.Parse(time.RFC3339, meta.WindowStart)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(time.RFC3339, meta.WindowEnd)
	if err != nil {
		return nil, err
	}

	lanes := make([]lane.Lane, 0, len(meta.Lanes))
	for _, dto := range meta.Lanes {
		lanes = append(lanes, lane.Lane{ID: dto.ID, Name: dto.Name, Number: dto.Number})
	}

	slots := make([]lane.Slot, 0, len(slotDTOs))
	for _, dto := range slotDTOs {
		slotStart, err := time.Parse(time.RFC3339, dto.Start)
		if err != nil {
			return nil, err
		}
		slotEnd, err := time.Parse(time.RFC3339, dto.End)
		if err != nil {
			return nil, err
		}
		slot := lane.Slot{
			LaneID:      dto.LaneID,
			Start:       slotStart,
			End:         slotEnd,
			EventID:     dto.EventID,
			Title:       dto.Title,
			Placeholder: dto.Placeholder,
		}
		if dto.EventEnd != "" {
			eventEnd, err := time.Parse(time.RFC3339, dto.EventEnd)
			if err != nil {
				return nil, err
			}
			slot.EventEnd = eventEnd
		}
		slots = append(slots, slot)
	}

	stats := lane.BuildStats{
		TotalEvents:    meta.Stats.TotalEvents,
		Scheduled:      meta.Stats.Scheduled,
		FilteredOut:    meta.Stats.FilteredOut,
		OutsideHorizon: meta.Stats.OutsideHorizon,
		Dropped:        meta.Stats.Dropped,
		Placeholders:   meta.Stats.Placeholders,
	}
	grace := time.Duration(meta.GraceMinutes) * time.Minute

	return lane.Reconstruct(lanes, slots, builtAt, start, end, grace, stats), nil
}

// Replace atomically swaps the stored schedule in one write transaction.
func (r *ScheduleBoltDBRepository) Replace(ctx context.Context, s *lane.Schedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	meta, slots := scheduleToDTOs(s)
	metaData, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	slotData, err := json.Marshal(slots)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(scheduleBucket)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		bucket, err := tx.CreateBucket([]byte(scheduleBucket))
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte(scheduleMetaKey), metaData); err != nil {
			return err
		}
		return bucket.Put([]byte(scheduleSlotKey), slotData)
	})
}

// Load retrieves the stored schedule from BoltDB.
func (r *ScheduleBoltDBRepository) Load(ctx context.Context) (*lane.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var s *lane.Schedule

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scheduleBucket))
		if bucket == nil {
			return lane.ErrNoSchedule
		}

		metaData := bucket.Get([]byte(scheduleMetaKey))
		if metaData == nil {
			return lane.ErrNoSchedule
		}

		var meta scheduleMetaDTO
		if err := json.Unmarshal(metaData, &meta); err != nil {
			return err
		}

		var slots []slotDTO
		if slotData := bucket.Get([]byte(scheduleSlotKey)); slotData != nil {
			if err := json.Unmarshal(slotData, &slots); err != nil {
				return err
			}
		}

		loaded, err := dtosToSchedule(meta, slots)
		if err != nil {
			return err
		}

		s = loaded
		return nil
	})

	return s, err
}
