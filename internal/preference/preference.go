package preference

import (
	"errors"
	"fmt"

	"github.com/lanecast/lanecast/internal/service"
)

var (
	// ErrUnknownService is returned when preferences reference a service
	// absent from the registry.
	ErrUnknownService = errors.New("unknown logical service")
	// ErrPriorityOutOfRange is returned when a priority override falls
	// outside the 1-100 scale.
	ErrPriorityOutOfRange = errors.New("priority must be between 1 and 100")
)

// Preferences controls which playables are eligible and how candidates
// rank during resolution. Validated at construction; the resolver may
// assume any Preferences value it receives is well-formed.
type Preferences struct {
	enabled         map[service.ID]struct{}
	disabledSports  map[string]struct{}
	disabledLeagues map[string]struct{}
	priorities      map[service.ID]int
	amazonPenalty   bool
}

// Params carries the raw inputs for building Preferences.
type Params struct {
	// EnabledServices lists the services the user subscribes to. Empty
	// means all services are enabled.
	EnabledServices []service.ID
	DisabledSports  []string
	DisabledLeagues []string
	// Priorities overrides the built-in ranking weights, 1-100.
	Priorities map[service.ID]int
	// AmazonPenalty demotes Amazon-family playables below every
	// non-family candidate when one exists.
	AmazonPenalty bool
}

// New validates params and builds a Preferences value. Service
// references must exist in the registry (exclusive variants of known
// services are accepted); priority overrides must be within 1-100.
func New(params Params) (Preferences, error) {
	for _, id := range params.EnabledServices {
		if !service.Known(id) {
			return Preferences{}, fmt.Errorf("%w: %q", ErrUnknownService, id)
		}
	}
	for id, p := range params.Priorities {
		if !service.Known(id) {
			return Preferences{}, fmt.Errorf("%w: %q", ErrUnknownService, id)
		}
		if p < 1 || p > 100 {
			return Preferences{}, fmt.Errorf("%w: %q has %d", ErrPriorityOutOfRange, id, p)
		}
	}

	prefs := Preferences{
		disabledSports:  toSet(params.DisabledSports),
		disabledLeagues: toSet(params.DisabledLeagues),
		amazonPenalty:   params.AmazonPenalty,
	}
	if len(params.EnabledServices) > 0 {
		prefs.enabled = make(map[service.ID]struct{}, len(params.EnabledServices))
		for _, id := range params.EnabledServices {
			prefs.enabled[id] = struct{}{}
		}
	}
	if len(params.Priorities) > 0 {
		prefs.priorities = make(map[service.ID]int, len(params.Priorities))
		for id, p := range params.Priorities {
			prefs.priorities[id] = p
		}
	}
	return prefs, nil
}

// Default returns the out-of-the-box preferences: every service enabled,
// no category filters, built-in priorities, Amazon penalty on.
func Default() Preferences {
	return Preferences{amazonPenalty: true}
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// ServiceEnabled reports whether a logical service passes the
// enabled-services filter. An exclusive variant is enabled when either
// it or its base service is; with an empty enabled set everything is.
func (p Preferences) ServiceEnabled(id service.ID) bool {
	if len(p.enabled) == 0 {
		return true
	}
	if _, ok := p.enabled[id]; ok {
		return true
	}
	if service.IsExclusive(id) {
		_, ok := p.enabled[service.Base(id)]
		return ok
	}
	// A base service also passes when its exclusive variant is enabled.
	_, ok := p.enabled[service.Exclusive(id)]
	return ok
}

// CategoryDisabled reports whether an event's sport or league is
// filtered out entirely.
func (p Preferences) CategoryDisabled(sport, league string) bool {
	if sport != "" {
		if _, ok := p.disabledSports[sport]; ok {
			return true
		}
	}
	if league != "" {
		if _, ok := p.disabledLeagues[league]; ok {
			return true
		}
	}
	return false
}

// Priority returns the effective ranking weight for a service: the user
// override when present, otherwise the registry default. Overrides on a
// base service also cover its exclusive variant.
func (p Preferences) Priority(id service.ID) int {
	if v, ok := p.priorities[id]; ok {
		return v
	}
	if service.IsExclusive(id) {
		if v, ok := p.priorities[service.Base(id)]; ok {
			return v
		}
	}
	return service.DefaultPriority(id)
}

// AmazonPenalty reports whether Amazon-family candidates are demoted
// below non-family candidates.
func (p Preferences) AmazonPenalty() bool { return p.amazonPenalty }

// EnabledServices returns the explicit enabled set, nil when all
// services are enabled.
func (p Preferences) EnabledServices() []service.ID {
	if len(p.enabled) == 0 {
		return nil
	}
	ids := make([]service.ID, 0, len(p.enabled))
	for id := range p.enabled {
		ids = append(ids, id)
	}
	return ids
}

// DisabledSports returns the disabled sport tags.
func (p Preferences) DisabledSports() []string { return keys(p.disabledSports) }

// DisabledLeagues returns the disabled league tags.
func (p Preferences) DisabledLeagues() []string { return keys(p.disabledLeagues) }

// PriorityOverrides returns a copy of the user priority map.
func (p Preferences) PriorityOverrides() map[service.ID]int {
	if len(p.priorities) == 0 {
		return nil
	}
	out := make(map[service.ID]int, len(p.priorities))
	for id, v := range p.priorities {
		out[id] = v
	}
	return out
}

// SoleEnabled returns the single enabled service when the enabled set
// has exactly one entry. The fallback chain must not substitute links
// for other services in that case.
func (p Preferences) SoleEnabled() (service.ID, bool) {
	if len(p.enabled) != 1 {
		return "", false
	}
	for id := range p.enabled {
		return id, true
	}
	return "", false
}

func keys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
