package driver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lanecast/lanecast/internal/application"
	"github.com/lanecast/lanecast/internal/preference"
	"github.com/lanecast/lanecast/internal/service"
)

// PreferenceHTTPHandler handles HTTP requests for user preferences.
type PreferenceHTTPHandler struct {
	service *application.PreferenceService
}

// NewPreferenceHTTPHandler creates a new HTTP handler for preferences.
func NewPreferenceHTTPHandler(service *application.PreferenceService) *PreferenceHTTPHandler {
	return &PreferenceHTTPHandler{service: service}
}

// preferencesPayload represents preferences in JSON format, for both
// requests and responses.
type preferencesPayload struct {
	EnabledServices []string       `json:"enabled_services"`
	DisabledSports  []string       `json:"disabled_sports"`
	DisabledLeagues []string       `json:"disabled_leagues"`
	Priorities      map[string]int `json:"priorities"`
	AmazonPenalty   bool           `json:"amazon_penalty"`
}

// ServeHTTP routes the request to the appropriate handler based on method.
func (h *PreferenceHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handleUpdate(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func toPreferencesPayload(prefs preference.Preferences) preferencesPayload {
	payload := preferencesPayload{
		EnabledServices: []string{},
		DisabledSports:  prefs.DisabledSports(),
		DisabledLeagues: prefs.DisabledLeagues(),
		Priorities:      map[string]int{},
		AmazonPenalty:   prefs.AmazonPenalty(),
	}
	if payload.DisabledSports == nil {
		payload.DisabledSports = []string{}
	}
	if payload.DisabledLeagues == nil {
		payload.DisabledLeagues = []string{}
	}
	for _, id := range prefs.EnabledServices() {
		payload.EnabledServices = append(payload.EnabledServices, string(id))
	}
	for id, p := range prefs.PriorityOverrides() {
		payload.Priorities[string(id)] = p
	}
	return payload
}

// handleGet handles GET /preferences
func (h *PreferenceHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toPreferencesPayload(prefs))
}

// handleUpdate handles PUT /preferences
func (h *PreferenceHTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload preferencesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := preference.Params{
		DisabledSports:  payload.DisabledSports,
		DisabledLeagues: payload.DisabledLeagues,
		AmazonPenalty:   payload.AmazonPenalty,
	}
	for _, id := range payload.EnabledServices {
		params.EnabledServices = append(params.EnabledServices, service.ID(id))
	}
	if len(payload.Priorities) > 0 {
		params.Priorities = make(map[service.ID]int, len(payload.Priorities))
		for id, p := range payload.Priorities {
			params.Priorities[service.ID(id)] = p
		}
	}

	prefs, err := h.service.Update(r.Context(), params)
	if err != nil {
		if errors.Is(err, preference.ErrUnknownService) || errors.Is(err, preference.ErrPriorityOutOfRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toPreferencesPayload(prefs))
}
