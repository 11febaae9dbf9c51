package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RebuildsTotal counts schedule rebuilds by outcome
	RebuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lanecast_rebuilds_total",
		Help: "Total number of schedule rebuilds",
	}, []string{"outcome"})

	// RebuildDuration tracks how long schedule rebuilds take
	RebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lanecast_rebuild_duration_seconds",
		Help:    "Duration of schedule rebuilds in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// ScheduledEvents tracks the number of events in the published schedule
	ScheduledEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lanecast_scheduled_events",
		Help: "Number of events in the published schedule",
	})

	// PlaceholderSlots tracks the number of placeholder slots in the published schedule
	PlaceholderSlots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lanecast_placeholder_slots",
		Help: "Number of placeholder slots in the published schedule",
	})

	// DroppedEvents tracks events that no lane could host in the last rebuild
	DroppedEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lanecast_dropped_events",
		Help: "Number of events dropped in the last rebuild",
	})

	// ResolutionsTotal counts deeplink resolutions by outcome
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lanecast_resolutions_total",
		Help: "Total number of deeplink resolutions",
	}, []string{"outcome"})

	// NowPlayingQueries counts now-playing lookups by resulting state
	NowPlayingQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lanecast_now_playing_queries_total",
		Help: "Total number of now-playing queries",
	}, []string{"state"})
)

// RecordRebuild records one rebuild outcome ("ok", "error" or "busy")
// and its duration.
func RecordRebuild(outcome string, elapsed time.Duration) {
	RebuildsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		RebuildDuration.Observe(elapsed.Seconds())
	}
}

// SetScheduleGauges publishes the slot composition of the current schedule.
func SetScheduleGauges(scheduled, placeholders, dropped int) {
	ScheduledEvents.Set(float64(scheduled))
	PlaceholderSlots.Set(float64(placeholders))
	DroppedEvents.Set(float64(dropped))
}

// RecordResolution records one resolve outcome ("ok", "fallback" or
// "no_candidate").
func RecordResolution(outcome string) {
	ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordNowPlaying records the state returned by a now-playing query.
func RecordNowPlaying(state string) {
	NowPlayingQueries.WithLabelValues(state).Inc()
}
