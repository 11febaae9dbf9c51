package service

import (
	"net/url"
	"strings"
)

// hostServices maps URL hosts of web playables to logical services.
// Apple hosts resolve further by league, see normalizeApple.
var hostServices = map[string]ID{
	"peacocktv.com":         PeacockWeb,
	"www.peacocktv.com":     PeacockWeb,
	"play.hbomax.com":       Max,
	"www.max.com":           Max,
	"f1tv.formula1.com":     F1TV,
	"kayosports.com.au":     KayoWeb,
	"www.kayosports.com.au": KayoWeb,
}

const appleHost = "tv.apple.com"

// NormalizeInput carries the raw attributes used to derive the logical
// service for one playable. League is the event's league tag; it only
// matters for Apple-hosted playables.
type NormalizeInput struct {
	Provider    string
	ServiceName string
	PlayLink    string
	OpenLink    string
	DirectURL   string
	League      string
}

// Normalize maps a raw playable to its logical service ID. Web providers
// resolve by URL host; ESPN splits into streaming and linear by service
// name; everything else maps to the provider string.
func Normalize(in NormalizeInput) ID {
	switch in.Provider {
	case "sportscenter":
		return normalizeESPN(in.ServiceName)
	case "aiv":
		return normalizeAmazon(in.ServiceName)
	case "kayo":
		return KayoWeb
	case "", "http", "https":
		return normalizeWeb(in)
	default:
		return ID(in.Provider)
	}
}

// normalizeESPN splits the ESPN app provider into the streaming service
// and linear channels. Digital-only overflow feeds (ACC Extra, SEC Plus)
// require the streaming subscription and count as streaming.
func normalizeESPN(serviceName string) ID {
	if serviceName == "" {
		return ESPNApp
	}
	for _, marker := range []string{"ESPN+", "Unlimited", "Extra", "Plus V2"} {
		if strings.Contains(serviceName, marker) {
			return ESPNStream
		}
	}
	return ESPNLinear
}

// amazonChannels maps storefront channel names to their logical services.
var amazonChannels = map[string]ID{
	"Prime":           PrimeDirect,
	"Prime Video":     PrimeDirect,
	"Freevee":         PrimeFree,
	"Free with Ads":   PrimeFree,
	"Peacock":         PrimePeacock,
	"Max":             PrimeMax,
	"DAZN":            PrimeDAZN,
	"FOX One":         PrimeFox,
	"ViX":             PrimeVix,
	"FanDuel Sports":  PrimeFanDuel,
	"NBA League Pass": PrimeNBA,
}

func normalizeAmazon(serviceName string) ID {
	if id, ok := amazonChannels[serviceName]; ok {
		return id
	}
	if serviceName == "" {
		return PrimeUnmatched
	}
	return PrimeVideo
}

func normalizeWeb(in NormalizeInput) ID {
	raw := in.PlayLink
	if raw == "" {
		raw = in.OpenLink
	}
	if raw == "" {
		raw = in.DirectURL
	}
	if raw == "" {
		return WebHTTPS
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return WebHTTPS
	}
	host := strings.ToLower(u.Host)
	if host == appleHost {
		return normalizeApple(in.League)
	}
	if id, ok := hostServices[host]; ok {
		return id
	}
	return WebHTTPS
}

func normalizeApple(league string) ID {
	l := strings.ToUpper(league)
	switch {
	case strings.Contains(l, "MLS"):
		return AppleMLS
	case strings.Contains(l, "MLB"), strings.Contains(l, "BASEBALL"):
		return AppleMLB
	case strings.Contains(l, "NBA"):
		return AppleNBA
	case strings.Contains(l, "NHL"), strings.Contains(l, "HOCKEY"):
		return AppleNHL
	default:
		return AppleOther
	}
}
