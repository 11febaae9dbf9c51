package driver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lanecast/lanecast/internal/application"
	"github.com/lanecast/lanecast/internal/event"
)

// EventHTTPHandler handles HTTP requests for event ingestion. This is
// the hand-off surface of the external scraping pipeline: it posts
// normalized events here, playables included.
type EventHTTPHandler struct {
	service *application.EventService
}

// NewEventHTTPHandler creates a new HTTP handler for events.
func NewEventHTTPHandler(service *application.EventService) *EventHTTPHandler {
	return &EventHTTPHandler{service: service}
}

// playablePayload represents one playable in JSON format.
type playablePayload struct {
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

// eventPayload represents an event in JSON format.
type eventPayload struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	Sport      string            `json:"sport,omitempty"`
	League     string            `json:"league,omitempty"`
	Synopsis   string            `json:"synopsis,omitempty"`
	Deeplink   string            `json:"deeplink,omitempty"`
	PlayLink   string            `json:"play_link,omitempty"`
	OpenLink   string            `json:"open_link,omitempty"`
	AppleTVURL string            `json:"apple_tv_url,omitempty"`
	ExternalID string            `json:"external_id,omitempty"`
	WebURL     string            `json:"web_url,omitempty"`
	Playables  []playablePayload `json:"playables,omitempty"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *EventHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/events")

	// POST /events - ingest an event
	if r.Method == http.MethodPost && path == "" {
		h.handleIngest(w, r)
		return
	}

	// GET /events/{id} - get a specific event
	if r.Method == http.MethodGet && path != "" {
		h.handleGet(w, r, strings.TrimPrefix(path, "/"))
		return
	}

	// DELETE /events/{id} - delete an event
	if r.Method == http.MethodDelete && path != "" {
		h.handleDelete(w, r, strings.TrimPrefix(path, "/"))
		return
	}

	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func toEventPayload(ev event.Event) eventPayload {
	payload := eventPayload{
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
		pp := playablePayload{
			Provider:    p.Provider(),
			ServiceName: p.ServiceName(),
			PlayLink:    p.PlayLink(),
			OpenLink:    p.OpenLink(),
			DirectURL:   p.DirectURL(),
			Priority:    p.Priority(),
			Source:      p.Source(),
		}
		if !p.OfferStart().IsZero() {
			pp.OfferStart = p.OfferStart().Format(time.RFC3339)
		}
		if !p.OfferEnd().IsZero() {
			pp.OfferEnd = p.OfferEnd().Format(time.RFC3339)
		}
		payload.Playables = append(payload.Playables, pp)
	}
	return payload
}

// handleIngest handles POST /events
func (h *EventHTTPHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := time.Parse(time.RFC3339, payload.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, payload.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end timestamp")
		return
	}

	playables := make([]event.Playable, 0, len(payload.Playables))
	for _, pp := range payload.Playables {
		attrs := event.PlayableAttrs{
			ServiceName: pp.ServiceName,
			OpenLink:    pp.OpenLink,
			DirectURL:   pp.DirectURL,
			Priority:    pp.Priority,
			Source:      pp.Source,
		}
		if pp.OfferStart != "" {
			t, err := time.Parse(time.RFC3339, pp.OfferStart)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid offer_start timestamp")
				return
			}
			attrs.OfferStart = t
		}
		if pp.OfferEnd != "" {
			t, err := time.Parse(time.RFC3339, pp.OfferEnd)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid offer_end timestamp")
				return
			}
			attrs.OfferEnd = t
		}
		p, err := event.NewPlayable(pp.Provider, pp.PlayLink, attrs)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		playables = append(playables, p)
	}

	ev, err := h.service.Ingest(r.Context(), payload.ID, payload.Title, start, end, event.Attrs{
		Sport:      payload.Sport,
		League:     payload.League,
		Synopsis:   payload.Synopsis,
		Deeplink:   payload.Deeplink,
		PlayLink:   payload.PlayLink,
		OpenLink:   payload.OpenLink,
		AppleTVURL: payload.AppleTVURL,
		ExternalID: payload.ExternalID,
		WebURL:     payload.WebURL,
	}, playables)
	if err != nil {
		if errors.Is(err, event.ErrEmptyID) || errors.Is(err, event.ErrEmptyTitle) || errors.Is(err, event.ErrInvalidWindow) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toEventPayload(ev))
}

// handleGet handles GET /events/{id}
func (h *EventHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	ev, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toEventPayload(ev))
}

// handleDelete handles DELETE /events/{id}
func (h *EventHTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
