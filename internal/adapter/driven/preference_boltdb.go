package driven

import (
	"context"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/lanecast/lanecast/internal/preference"
	"github.com/lanecast/lanecast/internal/service"
)

const (
	preferencesBucket = "preferences"
	preferencesKey    = "user"
)

// PreferenceBoltDBRepository implements the PreferenceRepository port
// using BoltDB. A single record is stored under a fixed key.
type PreferenceBoltDBRepository struct {
	db *bbolt.DB
}

// NewPreferenceBoltDBRepository creates a new BoltDB-backed preference
// repository. It initializes the required bucket if it doesn't exist.
func NewPreferenceBoltDBRepository(db *bbolt.DB) (*PreferenceBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(preferencesBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PreferenceBoltDBRepository{db: db}, nil
}

// preferencesDTO is used for JSON serialization.
type preferencesDTO struct {
	EnabledServices []string       `json:"enabled_services,omitempty"`
	DisabledSports  []string       `json:"disabled_sports,omitempty"`
	DisabledLeagues []string       `json:"disabled_leagues,omitempty"`
	Priorities      map[string]int `json:"priorities,omitempty"`
	AmazonPenalty   bool           `json:"amazon_penalty"`
}

func preferencesToDTO(prefs preference.Preferences) preferencesDTO {
	dto := preferencesDTO{
		DisabledSports:  prefs.DisabledSports(),
		DisabledLeagues: prefs.DisabledLeagues(),
		AmazonPenalty:   prefs.AmazonPenalty(),
	}
	for _, id := range prefs.EnabledServices() {
		dto.EnabledServices = append(dto.EnabledServices, string(id))
	}
	if overrides := prefs.PriorityOverrides(); len(overrides) > 0 {
		dto.Priorities = make(map[string]int, len(overrides))
		for id, p := range overrides {
			dto.Priorities[string(id)] = p
		}
	}
	return dto
}

func dtoToPreferences(dto preferencesDTO) (preference.Preferences, error) {
	params := preference.Params{
		DisabledSports:  dto.DisabledSports,
		DisabledLeagues: dto.DisabledLeagues,
		AmazonPenalty:   dto.AmazonPenalty,
	}
	for _, id := range dto.EnabledServices {
		params.EnabledServices = append(params.EnabledServices, service.ID(id))
	}
	if len(dto.Priorities) > 0 {
		params.Priorities = make(map[service.ID]int, len(dto.Priorities))
		for id, p := range dto.Priorities {
			params.Priorities[service.ID(id)] = p
		}
	}
	return preference.New(params)
}

// Load retrieves the stored preferences from BoltDB, falling back to
// the defaults when none have been saved.
func (r *PreferenceBoltDBRepository) Load(ctx context.Context) (preference.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return preference.Preferences{}, err
	}

	prefs := preference.Default()

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return errors.New("preferences bucket not found")
		}

		data := bucket.Get([]byte(preferencesKey))
		if data == nil {
			return nil
		}

		var dto preferencesDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}

		loaded, err := dtoToPreferences(dto)
		if err != nil {
			return err
		}

		prefs = loaded
		return nil
	})

	return prefs, err
}

// Save replaces the stored preferences in BoltDB.
func (r *PreferenceBoltDBRepository) Save(ctx context.Context, prefs preference.Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return errors.New("preferences bucket not found")
		}

		data, err := json.Marshal(preferencesToDTO(prefs))
		if err != nil {
			return err
		}

		return bucket.Put([]byte(preferencesKey), data)
	})
}
