package driven

import (
	"context"

	"github.com/lanecast/lanecast/internal/preference"
)

// PreferenceRepository defines the interface for persisting the single
// user preference record. This is a driven port implemented by concrete
// adapters (e.g., BoltDB).
type PreferenceRepository interface {
	// Load retrieves the stored preferences. When none have ever been
	// saved it returns preference.Default() and no error.
	Load(ctx context.Context) (preference.Preferences, error)

	// Save replaces the stored preferences. The value has already been
	// validated by the preference package at construction.
	Save(ctx context.Context, prefs preference.Preferences) error
}
