package driver

import (
	"errors"
	"net/http"

	"github.com/lanecast/lanecast/internal/application"
	"github.com/lanecast/lanecast/internal/lane"
)

// GuideHTTPHandler serves the XMLTV guide and M3U playlist renderings
// of the published schedule.
type GuideHTTPHandler struct {
	service *application.GuideService
}

// NewGuideHTTPHandler creates a new HTTP handler for guide output.
func NewGuideHTTPHandler(service *application.GuideService) *GuideHTTPHandler {
	return &GuideHTTPHandler{service: service}
}

// ServeXMLTV handles GET /guide.xml
func (h *GuideHTTPHandler) ServeXMLTV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := h.service.WriteXMLTV(w); err != nil {
		if errors.Is(err, lane.ErrNoSchedule) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ServeM3U handles GET /playlist.m3u
func (h *GuideHTTPHandler) ServeM3U(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	if err := h.service.WriteM3U(w); err != nil {
		if errors.Is(err, lane.ErrNoSchedule) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
