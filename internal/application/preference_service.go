package application

import (
	"context"

	"github.com/lanecast/lanecast/internal/port/driven"
	"github.com/lanecast/lanecast/internal/preference"
)

// PreferenceService provides use cases for the single user preference
// record.
type PreferenceService struct {
	prefRepo driven.PreferenceRepository
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(prefRepo driven.PreferenceRepository) *PreferenceService {
	return &PreferenceService{prefRepo: prefRepo}
}

// Get retrieves the stored preferences, defaults when never saved.
func (s *PreferenceService) Get(ctx context.Context) (preference.Preferences, error) {
	return s.prefRepo.Load(ctx)
}

// Update validates and replaces the stored preferences. Returns
// preference.ErrUnknownService or preference.ErrPriorityOutOfRange when
// params are malformed; nothing is written in that case.
func (s *PreferenceService) Update(ctx context.Context, params preference.Params) (preference.Preferences, error) {
	prefs, err := preference.New(params)
	if err != nil {
		return preference.Preferences{}, err
	}

	if err := s.prefRepo.Save(ctx, prefs); err != nil {
		return preference.Preferences{}, err
	}

	return prefs, nil
}
