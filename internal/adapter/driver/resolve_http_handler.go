package driver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lanecast/lanecast/internal/application"
	"github.com/lanecast/lanecast/internal/deeplink"
	"github.com/lanecast/lanecast/internal/event"
)

// ResolveHTTPHandler handles HTTP requests for deeplink resolution.
type ResolveHTTPHandler struct {
	service *application.ResolveService
}

// NewResolveHTTPHandler creates a new HTTP handler for resolution.
func NewResolveHTTPHandler(service *application.ResolveService) *ResolveHTTPHandler {
	return &ResolveHTTPHandler{service: service}
}

// resolutionResponse represents a resolution result in JSON format.
type resolutionResponse struct {
	Link     string `json:"link"`
	Service  string `json:"service"`
	Display  string `json:"display"`
	Fallback bool   `json:"is_fallback"`
}

// ServeHTTP handles GET /resolve/{eventID}?format=...
func (h *ResolveHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	eventID := strings.TrimPrefix(r.URL.Path, "/resolve/")
	if eventID == "" || strings.Contains(eventID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	format := deeplink.FormatNative
	if r.URL.Query().Get("format") == "http" {
		format = deeplink.FormatHTTP
	}

	res, err := h.service.Resolve(r.Context(), eventID, format)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if errors.Is(err, deeplink.ErrNoCandidate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, resolutionResponse{
		Link:     res.Link,
		Service:  string(res.Service),
		Display:  res.Display,
		Fallback: res.Fallback,
	})
}
