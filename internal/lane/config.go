package lane

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidLaneCount is returned when the lane count is negative.
	ErrInvalidLaneCount = errors.New("lane count cannot be negative")
	// ErrInvalidHorizon is returned when the horizon is not positive.
	ErrInvalidHorizon = errors.New("horizon days must be positive")
	// ErrInvalidPadding is returned when padding is negative.
	ErrInvalidPadding = errors.New("padding minutes cannot be negative")
	// ErrInvalidBlockSize is returned when the placeholder block size is
	// not positive.
	ErrInvalidBlockSize = errors.New("placeholder block minutes must be positive")
)

// Config carries the scheduling knobs. A zero LaneCount yields an empty
// schedule; everything else has a positive default.
type Config struct {
	// LaneCount is the number of rotating virtual channels.
	LaneCount int
	// HorizonDays bounds how far ahead events are scheduled.
	HorizonDays int
	// PaddingMinutes extends each event's guide slot past its end and
	// doubles as the grace window for soft-active queries.
	PaddingMinutes int
	// PlaceholderBlockMinutes caps the length of one placeholder slot.
	PlaceholderBlockMinutes int
	// PlaceholderExtraDays extends placeholder coverage past the last
	// scheduled event.
	PlaceholderExtraDays int
	// LaneStartNumber is the logical channel number of the first lane.
	LaneStartNumber int
}

// DefaultConfig returns the standard scheduling configuration.
func DefaultConfig() Config {
	return Config{
		LaneCount:               10,
		HorizonDays:             7,
		PaddingMinutes:          45,
		PlaceholderBlockMinutes: 60,
		PlaceholderExtraDays:    5,
		LaneStartNumber:         9000,
	}
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.LaneCount < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLaneCount, c.LaneCount)
	}
	if c.HorizonDays <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHorizon, c.HorizonDays)
	}
	if c.PaddingMinutes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPadding, c.PaddingMinutes)
	}
	if c.PlaceholderBlockMinutes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, c.PlaceholderBlockMinutes)
	}
	return nil
}

// Padding returns the padding knob as a duration.
func (c Config) Padding() time.Duration {
	return time.Duration(c.PaddingMinutes) * time.Minute
}

// PlaceholderBlock returns the placeholder block cap as a duration.
func (c Config) PlaceholderBlock() time.Duration {
	return time.Duration(c.PlaceholderBlockMinutes) * time.Minute
}

// Horizon returns the scheduling horizon as a duration.
func (c Config) Horizon() time.Duration {
	return time.Duration(c.HorizonDays) * 24 * time.Hour
}

// ExtraCoverage returns the trailing placeholder coverage as a duration.
func (c Config) ExtraCoverage() time.Duration {
	return time.Duration(c.PlaceholderExtraDays) * 24 * time.Hour
}
