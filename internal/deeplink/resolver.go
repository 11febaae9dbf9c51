package deeplink

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/lanecast/lanecast/internal/event"
	"github.com/lanecast/lanecast/internal/preference"
	"github.com/lanecast/lanecast/internal/service"
)

// ErrNoCandidate is returned when no enabled playable and no fallback
// step produced a link.
var ErrNoCandidate = errors.New("no playable candidate for event")

// Format selects the shape of the returned link.
type Format string

const (
	// FormatNative returns links as the providers supplied them,
	// app schemes included.
	FormatNative Format = "native"
	// FormatHTTP converts app-scheme links to HTTP equivalents where a
	// converter exists; unconvertible links pass through unchanged.
	FormatHTTP Format = "http"
)

// Resolution is the outcome of a successful resolve: the chosen link,
// the logical service it launches, and whether it came from the
// fallback chain rather than a ranked playable.
type Resolution struct {
	Link     string
	Service  service.ID
	Display  string
	Fallback bool
}

// Resolve picks the single best playback link for an event under the
// given preferences at the given instant. Pure: identical inputs always
// yield the identical outcome.
func Resolve(ev event.Event, prefs preference.Preferences, asOf time.Time, format Format) (Resolution, error) {
	if prefs.CategoryDisabled(ev.Sport(), ev.League()) {
		return Resolution{}, ErrNoCandidate
	}

	candidates := rank(eligible(ev, prefs, asOf), prefs)
	if len(candidates) > 0 {
		best := candidates[0]
		return Resolution{
			Link:    formatLink(best.playable.Link(), format),
			Service: best.service,
			Display: service.DisplayName(best.service),
		}, nil
	}

	return resolveFallback(ev, prefs, format)
}

// Resolvable reports whether the event has at least one enabled,
// available playable. The fallback chain does not count: an event that
// would only resolve through fallbacks is not schedulable.
func Resolvable(ev event.Event, prefs preference.Preferences, asOf time.Time) bool {
	if prefs.CategoryDisabled(ev.Sport(), ev.League()) {
		return false
	}
	return len(eligible(ev, prefs, asOf)) > 0
}

type candidate struct {
	playable event.Playable
	service  service.ID
	index    int
}

// eligible derives each playable's logical service, applies the
// exclusive relabel when the whole inventory collapses to one service,
// and filters by enabled services and offer windows. Order is the
// stable ingestion order.
func eligible(ev event.Event, prefs preference.Preferences, asOf time.Time) []candidate {
	playables := ev.Playables()
	ids := make([]service.ID, len(playables))
	for i, p := range playables {
		ids[i] = service.Normalize(service.NormalizeInput{
			Provider:    p.Provider(),
			ServiceName: p.ServiceName(),
			PlayLink:    p.PlayLink(),
			OpenLink:    p.OpenLink(),
			DirectURL:   p.DirectURL(),
			League:      ev.League(),
		})
	}
	if sole, ok := service.Sole(ids); ok {
		exclusive := service.Exclusive(sole)
		for i := range ids {
			ids[i] = exclusive
		}
	}

	var out []candidate
	for i, p := range playables {
		if !prefs.ServiceEnabled(ids[i]) {
			continue
		}
		if !p.AvailableAt(asOf) {
			continue
		}
		out = append(out, candidate{playable: p, service: ids[i], index: i})
	}
	return out
}

// rank orders candidates: non-Amazon before Amazon when the penalty
// applies, then effective priority descending, then play-link presence,
// then ingestion order. The stable sort plus the index tiebreak
// guarantee a single deterministic winner.
func rank(candidates []candidate, prefs preference.Preferences) []candidate {
	demoteAmazon := false
	if prefs.AmazonPenalty() {
		for _, c := range candidates {
			if !service.InAmazonFamily(c.service) {
				demoteAmazon = true
				break
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if demoteAmazon {
			af, bf := service.InAmazonFamily(a.service), service.InAmazonFamily(b.service)
			if af != bf {
				return !af
			}
		}
		ap, bp := prefs.Priority(a.service), prefs.Priority(b.service)
		if ap != bp {
			return ap > bp
		}
		aPlay, bPlay := a.playable.PlayLink() != "", b.playable.PlayLink() != ""
		if aPlay != bPlay {
			return aPlay
		}
		return a.index < b.index
	})
	return candidates
}

// resolveFallback walks the fixed fallback chain: the event's explicit
// deeplink, the auxiliary punchout attributes, the Peacock web deeplink
// form keyed by the external id, and finally the generic web URL. When
// exactly one service is enabled, steps whose link belongs to a
// different service are skipped rather than substituted.
func resolveFallback(ev event.Event, prefs preference.Preferences, format Format) (Resolution, error) {
	sole, constrained := prefs.SoleEnabled()

	try := func(link string, svc service.ID) (Resolution, bool) {
		if link == "" {
			return Resolution{}, false
		}
		if constrained && service.Base(svc) != service.Base(sole) {
			return Resolution{}, false
		}
		return Resolution{
			Link:     formatLink(link, format),
			Service:  svc,
			Display:  service.DisplayName(svc),
			Fallback: true,
		}, true
	}

	if res, ok := try(ev.Deeplink(), linkService(ev.Deeplink())); ok {
		return res, nil
	}
	for _, link := range []string{ev.PlayLink(), ev.OpenLink(), ev.AppleTVURL()} {
		if res, ok := try(link, linkService(link)); ok {
			return res, nil
		}
	}
	if res, ok := try(peacockWebDeeplink(ev), service.PeacockWeb); ok {
		return res, nil
	}
	if res, ok := try(ev.WebURL(), linkService(ev.WebURL())); ok {
		return res, nil
	}
	return Resolution{}, ErrNoCandidate
}

// peacockWebDeeplink builds the Peacock web deeplink form from the
// event's external id. Apple-sourced events carry foreign external ids
// and are excluded.
func peacockWebDeeplink(ev event.Event) string {
	pvid := ev.ExternalID()
	if pvid == "" || strings.HasPrefix(ev.ID(), "appletv-") {
		return ""
	}
	// {"pvid":"...","type":"PROGRAMME","action":"PLAY"} URL-encoded; key
	// order matters to the Peacock router.
	payload := `{"pvid":"` + pvid + `","type":"PROGRAMME","action":"PLAY"}`
	return "https://www.peacocktv.com/deeplink?deeplinkData=" + url.QueryEscape(payload)
}

// linkService derives the logical service a bare link launches, used by
// the exclusive-service guard on fallback steps.
func linkService(link string) service.ID {
	switch {
	case link == "":
		return service.WebHTTPS
	case strings.HasPrefix(link, "aiv://"):
		return service.PrimeVideo
	case strings.HasPrefix(link, "sportscenter://"):
		return service.ESPNApp
	case strings.HasPrefix(link, "peacock://"):
		return service.Peacock
	}
	return service.Normalize(service.NormalizeInput{PlayLink: link})
}

func formatLink(link string, format Format) string {
	if format != FormatHTTP {
		return link
	}
	if converted := ConvertHTTP(link); converted != "" {
		return converted
	}
	return link
}
