package driver

import (
	"errors"
	"net/http"
	"time"

	"github.com/lanecast/lanecast/internal/application"
)

// RebuildHTTPHandler triggers a full schedule regeneration. This is the
// operator surface: rebuilds are not scheduled internally.
type RebuildHTTPHandler struct {
	service *application.ScheduleService
}

// NewRebuildHTTPHandler creates a new HTTP handler for schedule rebuilds.
func NewRebuildHTTPHandler(service *application.ScheduleService) *RebuildHTTPHandler {
	return &RebuildHTTPHandler{service: service}
}

// rebuildResponse represents a rebuild summary in JSON format.
type rebuildResponse struct {
	BuiltAt        string `json:"built_at"`
	TotalEvents    int    `json:"total_events"`
	Scheduled      int    `json:"scheduled"`
	FilteredOut    int    `json:"filtered_out"`
	OutsideHorizon int    `json:"outside_horizon"`
	Dropped        int    `json:"dropped"`
	Placeholders   int    `json:"placeholders"`
}

// ServeHTTP handles POST /rebuild
func (h *RebuildHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	schedule, err := h.service.Rebuild(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRebuildInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		var buildErr *application.BuildError
		if errors.As(err, &buildErr) {
			writeError(w, http.StatusInternalServerError, buildErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	stats := schedule.Stats()
	writeJSON(w, http.StatusOK, rebuildResponse{
		BuiltAt:        schedule.BuiltAt().Format(time.RFC3339),
		TotalEvents:    stats.TotalEvents,
		Scheduled:      stats.Scheduled,
		FilteredOut:    stats.FilteredOut,
		OutsideHorizon: stats.OutsideHorizon,
		Dropped:        stats.Dropped,
		Placeholders:   stats.Placeholders,
	})
}
