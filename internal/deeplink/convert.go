package deeplink

import (
	"fmt"
	"regexp"
	"strings"
)

// Converters rewrite app-scheme launch links to HTTP equivalents for
// devices that cannot open native schemes (Android, Fire TV). Conversion
// is best-effort: a link with no known HTTP form passes through
// unchanged.

var (
	amazonGTI  = regexp.MustCompile(`gti=([^&]+)`)
	espnPlayID = regexp.MustCompile(`playID=([^&]+)`)
)

// ConvertHTTP returns the HTTP form of an app-scheme link, or "" when no
// converter applies.
func ConvertHTTP(link string) string {
	if link == "" {
		return ""
	}
	for _, convert := range []func(string) string{
		convertAmazon,
		convertESPN,
		convertPeacock,
	} {
		if out := convert(link); out != "" && out != link {
			return out
		}
	}
	return ""
}

// convertAmazon rewrites aiv://aiv/detail?gti=... to the Prime Video web
// detail page keyed by the GTI (Global Title Identifier).
func convertAmazon(link string) string {
	if !strings.HasPrefix(link, "aiv://") {
		return ""
	}
	m := amazonGTI.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("https://app.primevideo.com/detail?gti=%s", m[1])
}

// convertESPN rewrites sportscenter://...showWatchStream?playID=... to
// the ESPN web player.
func convertESPN(link string) string {
	if !strings.HasPrefix(link, "sportscenter://") {
		return ""
	}
	m := espnPlayID.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("https://www.espn.com/watch/player/_/id/%s", m[1])
}

// convertPeacock rewrites peacock://event/X to the Peacock web playback
// URL.
func convertPeacock(link string) string {
	const prefix = "peacock://event/"
	if !strings.HasPrefix(link, prefix) {
		return ""
	}
	return fmt.Sprintf("https://www.peacocktv.com/watch/playback/event/%s", strings.TrimPrefix(link, prefix))
}
