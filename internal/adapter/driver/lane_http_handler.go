package driver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lanecast/lanecast/internal/application"
	"github.com/lanecast/lanecast/internal/deeplink"
	"github.com/lanecast/lanecast/internal/lane"
)

// LaneHTTPHandler handles HTTP requests for lane and now-playing queries.
type LaneHTTPHandler struct {
	service *application.ScheduleService
}

// NewLaneHTTPHandler creates a new HTTP handler for lanes.
func NewLaneHTTPHandler(service *application.ScheduleService) *LaneHTTPHandler {
	return &LaneHTTPHandler{service: service}
}

// errorResponse represents a JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

// laneResponse represents a lane in JSON format.
type laneResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
}

// slotResponse represents one lane slot in JSON format.
type slotResponse struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	EventID     string `json:"event_id,omitempty"`
	Title       string `json:"title"`
	EventEnd    string `json:"event_end,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// nowPlayingResponse represents a now-playing query result in JSON format.
type nowPlayingResponse struct {
	State    string        `json:"state"`
	EventID  string        `json:"event_id,omitempty"`
	Title    string        `json:"title,omitempty"`
	Fallback bool          `json:"is_fallback"`
	Slot     *slotResponse `json:"slot,omitempty"`
	Link     string        `json:"link,omitempty"`
	Service  string        `json:"service,omitempty"`
	Display  string        `json:"display,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *LaneHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/lanes")

	// GET /lanes - list all lanes
	if path == "" {
		h.handleList(w, r)
		return
	}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	laneID, err := strconv.Atoi(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lane id")
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "schedule":
			h.handleSchedule(w, r, laneID)
			return
		case "now":
			h.handleNow(w, r, laneID)
			return
		}
	}

	writeError(w, http.StatusNotFound, "not found")
}

func toSlotResponse(s lane.Slot) slotResponse {
	resp := slotResponse{
		Start:       s.Start.Format(time.RFC3339),
		End:         s.End.Format(time.RFC3339),
		EventID:     s.EventID,
		Title:       s.Title,
		Placeholder: s.Placeholder,
	}
	if !s.EventEnd.IsZero() {
		resp.EventEnd = s.EventEnd.Format(time.RFC3339)
	}
	return resp
}

// handleList handles GET /lanes
func (h *LaneHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	lanes, err := h.service.Lanes()
	if err != nil {
		if errors.Is(err, lane.ErrNoSchedule) {
			writeJSON(w, http.StatusOK, []laneResponse{})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]laneResponse, len(lanes))
	for i, l := range lanes {
		response[i] = laneResponse{ID: l.ID, Name: l.Name, Number: l.Number}
	}

	writeJSON(w, http.StatusOK, response)
}

// handleSchedule handles GET /lanes/{id}/schedule
func (h *LaneHTTPHandler) handleSchedule(w http.ResponseWriter, r *http.Request, laneID int) {
	l, slots, err := h.service.LaneSlots(laneID)
	if err != nil {
		if errors.Is(err, lane.ErrNoSchedule) || errors.Is(err, lane.ErrUnknownLane) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slotResponses := make([]slotResponse, len(slots))
	for i, s := range slots {
		slotResponses[i] = toSlotResponse(s)
	}

	writeJSON(w, http.StatusOK, struct {
		Lane  laneResponse   `json:"lane"`
		Slots []slotResponse `json:"slots"`
	}{
		Lane:  laneResponse{ID: l.ID, Name: l.Name, Number: l.Number},
		Slots: slotResponses,
	})
}

// handleNow handles GET /lanes/{id}/now?at=...&format=...&link=...
func (h *LaneHTTPHandler) handleNow(w http.ResponseWriter, r *http.Request, laneID int) {
	asOf := time.Now().UTC()
	if at := r.URL.Query().Get("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at timestamp")
			return
		}
		asOf = parsed
	}

	format := deeplink.FormatNative
	if r.URL.Query().Get("format") == "http" {
		format = deeplink.FormatHTTP
	}
	withLink := r.URL.Query().Get("link") == "true"

	result, err := h.service.NowPlaying(r.Context(), laneID, asOf, format, withLink)
	if err != nil {
		if errors.Is(err, lane.ErrNoSchedule) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := nowPlayingResponse{
		State:    result.State.String(),
		EventID:  result.EventID,
		Title:    result.Title,
		Fallback: result.Fallback,
	}
	if result.State != lane.NoActive {
		slot := toSlotResponse(result.Slot)
		resp.Slot = &slot
	}
	if result.Resolution != nil {
		resp.Link = result.Resolution.Link
		resp.Service = string(result.Resolution.Service)
		resp.Display = result.Resolution.Display
	}

	writeJSON(w, http.StatusOK, resp)
}
