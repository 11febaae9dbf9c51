package event

import (
	"errors"
	"time"
)

// ErrNoLink is returned when a playable carries no link of any kind.
var ErrNoLink = errors.New("playable must carry at least one link")

// Playable is one way to watch an event: a raw provider plus its
// launch links. The logical service is derived from these attributes
// at query time, never stored.
type Playable struct {
	provider    string
	serviceName string
	playLink    string
	openLink    string
	directURL   string
	priority    int
	source      string

	// Availability window of the offer, if the provider reported one.
	// Zero times mean unrestricted.
	offerStart time.Time
	offerEnd   time.Time
}

// PlayableAttrs carries the optional attributes of a playable.
type PlayableAttrs struct {
	ServiceName string
	OpenLink    string
	DirectURL   string
	Priority    int
	Source      string
	OfferStart  time.Time
	OfferEnd    time.Time
}

// NewPlayable creates a Playable, requiring at least one usable link.
func NewPlayable(provider, playLink string, attrs PlayableAttrs) (Playable, error) {
	if playLink == "" && attrs.OpenLink == "" && attrs.DirectURL == "" {
		return Playable{}, ErrNoLink
	}
	return Playable{
		provider:    provider,
		serviceName: attrs.ServiceName,
		playLink:    playLink,
		openLink:    attrs.OpenLink,
		directURL:   attrs.DirectURL,
		priority:    attrs.Priority,
		source:      attrs.Source,
		offerStart:  attrs.OfferStart,
		offerEnd:    attrs.OfferEnd,
	}, nil
}

// ReconstructPlayable creates a Playable from a trusted source without
// validation.
func ReconstructPlayable(provider, playLink string, attrs PlayableAttrs) Playable {
	return Playable{
		provider:    provider,
		serviceName: attrs.ServiceName,
		playLink:    playLink,
		openLink:    attrs.OpenLink,
		directURL:   attrs.DirectURL,
		priority:    attrs.Priority,
		source:      attrs.Source,
		offerStart:  attrs.OfferStart,
		offerEnd:    attrs.OfferEnd,
	}
}

// Provider returns the raw provider string.
func (p Playable) Provider() string { return p.provider }

// ServiceName returns the provider's channel or service label, if any.
func (p Playable) ServiceName() string { return p.serviceName }

// PlayLink returns the play punchout URL, if any.
func (p Playable) PlayLink() string { return p.playLink }

// OpenLink returns the open punchout URL, if any.
func (p Playable) OpenLink() string { return p.openLink }

// DirectURL returns the direct playback URL, if any.
func (p Playable) DirectURL() string { return p.directURL }

// Priority returns the provider-supplied ranking hint.
func (p Playable) Priority() int { return p.priority }

// Source returns the provenance tag of this playable.
func (p Playable) Source() string { return p.source }

// OfferStart returns the start of the offer window; zero means open.
func (p Playable) OfferStart() time.Time { return p.offerStart }

// OfferEnd returns the end of the offer window; zero means open.
func (p Playable) OfferEnd() time.Time { return p.offerEnd }

// AvailableAt reports whether the playable's offer window covers t.
func (p Playable) AvailableAt(t time.Time) bool {
	if !p.offerStart.IsZero() && t.Before(p.offerStart) {
		return false
	}
	if !p.offerEnd.IsZero() && !t.Before(p.offerEnd) {
		return false
	}
	return true
}

// Link returns the best launch link on the playable itself: play, then
// open, then the direct URL.
func (p Playable) Link() string {
	if p.playLink != "" {
		return p.playLink
	}
	if p.openLink != "" {
		return p.openLink
	}
	return p.directURL
}
