package driven

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.etcd.io/bbolt"

	"github.com/lanecast/lanecast/internal/event"
)

const (
	eventsBucket = "events"
)

// EventBoltDBRepository implements the EventRepository port using BoltDB.
type EventBoltDBRepository struct {
	db *bbolt.DB
}

// NewEventBoltDBRepository creates a new BoltDB-backed event repository.
// It initializes the required bucket if it doesn't exist.
func NewEventBoltDBRepository(db *bbolt.DB) (*EventBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(eventsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &EventBoltDBRepository{db: db}, nil
}

// eventDTO is used for JSON serialization.
type eventDTO struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Start      string        `json:"start"`
	End        string        `json:"end"`
	Sport      string        `json:"sport,omitempty"`
	League     string        `json:"league,omitempty"`
	Synopsis   string        `json:"synopsis,omitempty"`
	Deeplink   string        `json:"deeplink,omitempty"`
	PlayLink   string        `json:"play_link,omitempty"`
	OpenLink   string        `json:"open_link,omitempty"`
	AppleTVURL string        `json:"apple_tv_url,omitempty"`
	ExternalID string        `json:"external_id,omitempty"`
	WebURL     string        `json:"web_url,omitempty"`
	Playables  []playableDTO `json:"playables,omitempty"`
}

// playableDTO is used for JSON serialization of playable data.
type playableDTO struct {
	Provider    string `json:"provider"`
	ServiceName string `json:"service_name,omitempty"`
	PlayLink    string `json:"play_link,omitempty"`
	OpenLink    string `json:"open_link,omitempty"`
	DirectURL   string `json:"direct_url,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	Source      string `json:"source,omitempty"`
	OfferStart  string `json:"offer_start,omitempty"`
	OfferEnd    string `json:"offer_end,omitempty"`
}

func eventToDTO(ev event.Event) eventDTO {
	dto := eventDTO{
		ID:         ev.ID(),
		Title:      ev.Title(),
		Start:      ev.Start().Format(time.RFC3339),
		End:        ev.End().Format(time.RFC3339),
		Sport:      ev.Sport(),
		League:     ev.League(),
		Synopsis:   ev.Synopsis(),
		Deeplink:   ev.Deeplink(),
		PlayLink:   ev.PlayLink(),
		OpenLink:   ev.OpenLink(),
		AppleTVURL: ev.AppleTVURL(),
		ExternalID: ev.ExternalID(),
		WebURL:     ev.WebURL(),
	}
	for _, p := range ev.Playables() {
		pdto := playableDTO{
			Provider:    p.Provider(),
			ServiceName: p.ServiceName(),
			PlayLink:    p.PlayLink(),
			OpenLink:    p.OpenLink(),
			DirectURL:   p.DirectURL(),
			Priority:    p.Priority(),
			Source:      p.Source(),
		}
		if !p.OfferStart().IsZero() {
			pdto.OfferStart = p.OfferStart().Format(time.RFC3339)
		}
		if !p.OfferEnd().IsZero() {
			pdto.OfferEnd = p.OfferEnd().Format(time.RFC3339)
		}
		dto.Playables = append(dto.Playables, pdto)
	}
	return dto
}

func dtoToEvent(dto eventDTO) (event.Event, error) {
	start, err := time.Parse(time.RFC3339, dto.Start)
	if err != nil {
		return event.Event{}, err
	}
	end, err := time.Parse(time.RFC3339, dto.End)
	if err != nil {
		return event.Event{}, err
	}

	playables := make([]event.Playable, 0, len(dto.Playables))
	for _, pdto := range dto.Playables {
		attrs := event.PlayableAttrs{
			ServiceName: pdto.ServiceName,
			OpenLink:    pdto.OpenLink,
			DirectURL:   pdto.DirectURL,
			Priority:    pdto.Priority,
			Source:      pdto.Source,
		}
		if pdto.OfferStart != "" {
			t, err := time.Parse(time.RFC3339, pdto.OfferStart)
			if err != nil {
				return event.Event{}, err
			}
			attrs.OfferStart = t
		}
		if pdto.OfferEnd != "" {
			t, err := time.Parse(time.RFC3339, pdto.OfferEnd)
			if err != nil {
				return event.Event{}, err
			}
			attrs.OfferEnd = t
		}
		playables = append(playables, event.ReconstructPlayable(pdto.Provider, pdto.PlayLink, attrs))
	}

	return event.Reconstruct(dto.ID, dto.Title, start, end, event.Attrs{
		Sport:      dto.Sport,
		League:     dto.League,
		Synopsis:   dto.Synopsis,
		Deeplink:   dto.Deeplink,
		PlayLink:   dto.PlayLink,
		OpenLink:   dto.OpenLink,
		AppleTVURL: dto.AppleTVURL,
		ExternalID: dto.ExternalID,
		WebURL:     dto.WebURL,
	}, playables), nil
}

// Save persists an event to BoltDB, overwriting any previous version.
func (r *EventBoltDBRepository) Save(ctx context.Context, ev event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventsBucket))
		if bucket == nil {
			return errors.New("events bucket not found")
		}

		data, err := json.Marshal(eventToDTO(ev))
		if err != nil {
			return err
		}

		return bucket.Put([]byte(ev.ID()), data)
	})
}

// FindByID retrieves an event by its ID from BoltDB.
func (r *EventBoltDBRepository) FindByID(ctx context.Context, id string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}

	var ev event.Event

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventsBucket))
		if bucket == nil {
			return errors.New("events bucket not found")
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return event.ErrNotFound
		}

		var dto eventDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}

		reconstructed, err := dtoToEvent(dto)
		if err != nil {
			return err
		}

		ev = reconstructed
		return nil
	})

	return ev, err
}

// FindAll retrieves all events from BoltDB.
func (r *EventBoltDBRepository) FindAll(ctx context.Context) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []event.Event

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventsBucket))
		if bucket == nil {
			return errors.New("events bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var dto eventDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}

			ev, err := dtoToEvent(dto)
			if err != nil {
				return err
			}

			events = append(events, ev)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	if events == nil {
		events = []event.Event{}
	}

	return events, nil
}

// FindEndingAfter retrieves events whose end is after t.
func (r *EventBoltDBRepository) FindEndingAfter(ctx context.Context, t time.Time) ([]event.Event, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	events := []event.Event{}
	for _, ev := range all {
		if ev.End().After(t) {
			events = append(events, ev)
		}
	}
	return events, nil
}

// Delete removes an event by its ID from BoltDB.
func (r *EventBoltDBRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventsBucket))
		if bucket == nil {
			return errors.New("events bucket not found")
		}

		key := []byte(id)
		if bucket.Get(key) == nil {
			return event.ErrNotFound
		}

		return bucket.Delete(key)
	})
}

// Ping checks if the BoltDB database is accessible and operational.
func (r *EventBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventsBucket))
		if bucket == nil {
			return errors.New("events bucket not found")
		}
		return nil
	})
}
