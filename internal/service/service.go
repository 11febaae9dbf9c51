package service

// ID identifies a logical streaming service. Logical services are
// normalized identifiers decoupled from the raw provider strings the
// ingestion pipeline hands us; all ranking and filtering works on IDs.
type ID string

// Known logical service identifiers.
const (
	ESPNPlus   ID = "sportsonespn"
	ESPNApp    ID = "sportscenter"
	ESPNStream ID = "espn_plus"
	ESPNLinear ID = "espn_linear"

	Peacock    ID = "peacock"
	PeacockWeb ID = "peacock_web"
	NBCSports  ID = "nbcsportstve"

	ParamountPlus ID = "pplus"
	CBSSports     ID = "cbssportsapp"
	CBS           ID = "cbstve"

	Max     ID = "max"
	TNT     ID = "watchtnt"
	TruTV   ID = "watchtru"
	TBS     ID = "watchtbs"
	FoxOne  ID = "foxone"
	FoxApp  ID = "fsapp"
	Marquee ID = "marquee"

	AppleMLS   ID = "apple_mls"
	AppleMLB   ID = "apple_mlb"
	AppleNBA   ID = "apple_nba"
	AppleNHL   ID = "apple_nhl"
	AppleOther ID = "apple_other"

	NBALeaguePass ID = "nba"
	MLBTV         ID = "mlb"
	NHLTV         ID = "nhl"
	F1TV          ID = "f1tv"
	DAZN          ID = "dazn"
	ViX           ID = "vixapp"
	NFLPlus       ID = "nflctv"
	NFLApp        ID = "nflmobile"
	KayoWeb       ID = "kayo_web"

	PrimeVideo     ID = "aiv"
	PrimeGametime  ID = "gametime"
	PrimeDirect    ID = "aiv_prime"
	PrimeFree      ID = "aiv_free"
	PrimePeacock   ID = "aiv_peacock"
	PrimeMax       ID = "aiv_max"
	PrimeDAZN      ID = "aiv_dazn"
	PrimeFox       ID = "aiv_fox"
	PrimeVix       ID = "aiv_vix"
	PrimeFanDuel   ID = "aiv_fanduel"
	PrimeNBA       ID = "aiv_nba_league_pass"
	PrimeUnmatched ID = "aiv_aggregator"

	WebHTTPS ID = "https"
	WebHTTP  ID = "http"
)

// Info describes a registry entry for a logical service.
type Info struct {
	Display string
	// Priority is the built-in default ranking weight on a 1-100 scale.
	// Higher is preferred. User preference overrides share the same scale.
	Priority int
	// AmazonFamily marks services delivered through the Amazon storefront,
	// which are jointly subject to penalty-based de-prioritization.
	AmazonFamily bool
}

// registry is the single source of truth for logical services: display
// name, default priority tier, and Amazon-family membership.
//
// Priority tiers:
//
//	90-100 premium direct sports services
//	70-89  cable/network sports
//	50-69  league-specific and niche services
//	30-49  free/broadcast
//	10-29  aggregators with redirects
//	1-9    generic web fallbacks
var registry = map[ID]Info{
	ESPNPlus:   {Display: "ESPN+", Priority: 100},
	ESPNStream: {Display: "ESPN+", Priority: 100},
	ESPNApp:    {Display: "ESPN", Priority: 79},
	ESPNLinear: {Display: "ESPN (Linear)", Priority: 80},

	Peacock:    {Display: "Peacock", Priority: 98},
	PeacockWeb: {Display: "Peacock (Web)", Priority: 97},
	NBCSports:  {Display: "NBC Sports", Priority: 82},

	ParamountPlus: {Display: "Paramount+", Priority: 96},
	CBSSports:     {Display: "CBS Sports", Priority: 95},
	CBS:           {Display: "CBS", Priority: 46},

	Max:     {Display: "Max", Priority: 94},
	TNT:     {Display: "TNT", Priority: 88},
	TruTV:   {Display: "truTV", Priority: 87},
	TBS:     {Display: "TBS", Priority: 86},
	FoxOne:  {Display: "FOX Sports", Priority: 85},
	FoxApp:  {Display: "FOX Sports (Alt)", Priority: 84},
	Marquee: {Display: "Marquee Sports Network", Priority: 50},

	AppleMLS:   {Display: "Apple MLS", Priority: 92},
	AppleMLB:   {Display: "Apple MLB", Priority: 92},
	AppleNBA:   {Display: "Apple NBA", Priority: 91},
	AppleNHL:   {Display: "Apple NHL", Priority: 91},
	AppleOther: {Display: "Apple TV+", Priority: 90},

	NBALeaguePass: {Display: "NBA League Pass", Priority: 68},
	MLBTV:         {Display: "MLB.TV", Priority: 66},
	NHLTV:         {Display: "NHL.TV", Priority: 67},
	F1TV:          {Display: "F1 TV", Priority: 65},
	DAZN:          {Display: "DAZN", Priority: 64},
	ViX:           {Display: "ViX", Priority: 60},
	NFLPlus:       {Display: "NFL+", Priority: 58},
	NFLApp:        {Display: "NFL", Priority: 57},
	KayoWeb:       {Display: "Kayo Sports", Priority: 55},

	PrimeVideo:     {Display: "Prime Video", Priority: 15, AmazonFamily: true},
	PrimeGametime:  {Display: "Prime Video (TNF)", Priority: 16, AmazonFamily: true},
	PrimeDirect:    {Display: "Amazon Prime", Priority: 45, AmazonFamily: true},
	PrimeFree:      {Display: "Free with Ads (Amazon)", Priority: 70, AmazonFamily: true},
	PrimePeacock:   {Display: "Peacock (Amazon)", Priority: 40, AmazonFamily: true},
	PrimeMax:       {Display: "Max (Amazon)", Priority: 40, AmazonFamily: true},
	PrimeDAZN:      {Display: "DAZN (Amazon)", Priority: 40, AmazonFamily: true},
	PrimeFox:       {Display: "FOX One (Amazon)", Priority: 40, AmazonFamily: true},
	PrimeVix:       {Display: "ViX (Amazon)", Priority: 30, AmazonFamily: true},
	PrimeFanDuel:   {Display: "FanDuel Sports (Amazon)", Priority: 35, AmazonFamily: true},
	PrimeNBA:       {Display: "NBA League Pass (Amazon)", Priority: 68, AmazonFamily: true},
	PrimeUnmatched: {Display: "Amazon (Unknown)", Priority: 12, AmazonFamily: true},

	WebHTTPS: {Display: "Web", Priority: 5},
	WebHTTP:  {Display: "Web", Priority: 4},
}

// Known reports whether id is a registered logical service or the
// exclusive variant of one.
func Known(id ID) bool {
	_, ok := registry[Base(id)]
	return ok
}

// Lookup returns the registry entry for id. Exclusive variants inherit
// the base entry with a nudged priority so that, all else equal, the more
// specific variant wins.
func Lookup(id ID) (Info, bool) {
	if info, ok := registry[id]; ok {
		return info, true
	}
	base, ok := registry[Base(id)]
	if !ok {
		return Info{}, false
	}
	base.Display += " (Exclusive)"
	if base.Priority < 100 {
		base.Priority++
	}
	return base, true
}

// DisplayName returns the human-readable name for a logical service.
// Unknown IDs fall back to the raw identifier.
func DisplayName(id ID) string {
	if info, ok := Lookup(id); ok {
		return info.Display
	}
	return string(id)
}

// DefaultPriority returns the built-in ranking weight for a logical
// service. Unknown IDs rank in the middle of the scale.
func DefaultPriority(id ID) int {
	if info, ok := Lookup(id); ok {
		return info.Priority
	}
	return 25
}

// InAmazonFamily reports whether a logical service (or its exclusive
// variant) is delivered through the Amazon storefront.
func InAmazonFamily(id ID) bool {
	info, ok := Lookup(id)
	return ok && info.AmazonFamily
}

// All returns every registered logical service ID in unspecified order.
func All() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}
