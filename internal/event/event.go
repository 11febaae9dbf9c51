package event

import (
	"errors"
	"time"
)

var (
	// ErrEmptyID is returned when an event ID is empty.
	ErrEmptyID = errors.New("event ID cannot be empty")
	// ErrEmptyTitle is returned when an event title is empty.
	ErrEmptyTitle = errors.New("event title cannot be empty")
	// ErrInvalidWindow is returned when an event ends at or before its start.
	ErrInvalidWindow = errors.New("event end must be after start")
	// ErrNotFound is returned when an event does not exist.
	ErrNotFound = errors.New("event not found")
	// ErrAlreadyExists is returned when an event with the same ID already exists.
	ErrAlreadyExists = errors.New("event already exists")
)

// Event represents a scheduled live broadcast with its playable inventory.
// All times are UTC.
type Event struct {
	id       string
	title    string
	start    time.Time
	end      time.Time
	sport    string
	league   string
	synopsis string

	// Fallback material, used only when no playable survives filtering.
	deeplink   string
	playLink   string
	openLink   string
	appleTVURL string
	externalID string
	webURL     string

	playables []Playable
}

// Attrs carries the optional descriptive and fallback attributes of an
// event. Zero values mean absent.
type Attrs struct {
	Sport    string
	League   string
	Synopsis string

	Deeplink   string
	PlayLink   string
	OpenLink   string
	AppleTVURL string
	ExternalID string
	WebURL     string
}

// New creates an Event after validating its identity and time window.
// Start and end are normalized to UTC.
func New(id, title string, start, end time.Time, attrs Attrs, playables []Playable) (Event, error) {
	if id == "" {
		return Event{}, ErrEmptyID
	}
	if title == "" {
		return Event{}, ErrEmptyTitle
	}
	if !end.After(start) {
		return Event{}, ErrInvalidWindow
	}

	return Event{
		id:         id,
		title:      title,
		start:      start.UTC(),
		end:        end.UTC(),
		sport:      attrs.Sport,
		league:     attrs.League,
		synopsis:   attrs.Synopsis,
		deeplink:   attrs.Deeplink,
		playLink:   attrs.PlayLink,
		openLink:   attrs.OpenLink,
		appleTVURL: attrs.AppleTVURL,
		externalID: attrs.ExternalID,
		webURL:     attrs.WebURL,
		playables:  playables,
	}, nil
}

// Reconstruct creates an Event from a trusted source (e.g., repository)
// without validation.
func Reconstruct(id, title string, start, end time.Time, attrs Attrs, playables []Playable) Event {
	return Event{
		id:         id,
		title:      title,
		start:      start.UTC(),
		end:        end.UTC(),
		sport:      attrs.Sport,
		league:     attrs.League,
		synopsis:   attrs.Synopsis,
		deeplink:   attrs.Deeplink,
		playLink:   attrs.PlayLink,
		openLink:   attrs.OpenLink,
		appleTVURL: attrs.AppleTVURL,
		externalID: attrs.ExternalID,
		webURL:     attrs.WebURL,
		playables:  playables,
	}
}

// ID returns the event ID.
func (e Event) ID() string { return e.id }

// Title returns the event title.
func (e Event) Title() string { return e.title }

// Start returns the scheduled start time in UTC.
func (e Event) Start() time.Time { return e.start }

// End returns the scheduled end time in UTC.
func (e Event) End() time.Time { return e.end }

// Sport returns the sport tag, if any.
func (e Event) Sport() string { return e.sport }

// League returns the league tag, if any.
func (e Event) League() string { return e.league }

// Synopsis returns the event description, if any.
func (e Event) Synopsis() string { return e.synopsis }

// Deeplink returns the explicit event-level deeplink, if any.
func (e Event) Deeplink() string { return e.deeplink }

// PlayLink returns the auxiliary play punchout URL, if any.
func (e Event) PlayLink() string { return e.playLink }

// OpenLink returns the auxiliary open punchout URL, if any.
func (e Event) OpenLink() string { return e.openLink }

// AppleTVURL returns the auxiliary Apple TV URL, if any.
func (e Event) AppleTVURL() string { return e.appleTVURL }

// ExternalID returns the provider video identifier, if any.
func (e Event) ExternalID() string { return e.externalID }

// WebURL returns the generic web URL, if any.
func (e Event) WebURL() string { return e.webURL }

// Playables returns the event's playable inventory in ingestion order.
func (e Event) Playables() []Playable { return e.playables }

// Duration returns the scheduled length of the event.
func (e Event) Duration() time.Duration { return e.end.Sub(e.start) }
