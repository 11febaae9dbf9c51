package driver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lanecast/lanecast/internal/application"
	"github.com/lanecast/lanecast/internal/deeplink"
	"github.com/lanecast/lanecast/internal/lane"
)

// PlayHTTPHandler redirects a lane's tuner request to the link of
// whatever is live (or soft-active) on that lane right now. This is the
// playback target playlist entries point at.
type PlayHTTPHandler struct {
	service *application.ScheduleService
}

// NewPlayHTTPHandler creates a new HTTP handler for lane playback.
func NewPlayHTTPHandler(service *application.ScheduleService) *PlayHTTPHandler {
	return &PlayHTTPHandler{service: service}
}

// ServeHTTP handles GET /lanes/{id}/play
func (h *PlayHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/lanes/")
	idStr, ok := strings.CutSuffix(path, "/play")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	laneID, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lane id")
		return
	}

	// Player targets launch HTTP links more reliably than app schemes.
	result, err := h.service.NowPlaying(r.Context(), laneID, time.Now().UTC(), deeplink.FormatHTTP, true)
	if err != nil {
		if errors.Is(err, lane.ErrNoSchedule) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if result.Resolution == nil {
		writeError(w, http.StatusNotFound, "nothing playable on this lane")
		return
	}

	http.Redirect(w, r, result.Resolution.Link, http.StatusFound)
}
