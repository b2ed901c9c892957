package refresh

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cyclesTotal tracks completed refresh cycles by outcome (ok, error).
	cyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfmkt_refresh_cycles_total",
			Help: "Total number of refresh cycles by outcome",
		},
		[]string{"outcome"},
	)

	// cycleDuration tracks wall time per refresh cycle. Cycle latency
	// scales linearly with working-set size under the pacing policy.
	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tfmkt_refresh_cycle_duration_seconds",
			Help:    "Refresh cycle duration in seconds",
			Buckets: []float64{1, 10, 60, 300, 900, 3600, 14400},
		},
	)

	// playersRefreshed counts player profiles successfully republished.
	playersRefreshed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tfmkt_refresh_players_refreshed_total",
			Help: "Total number of player profiles refreshed",
		},
	)

	// clubsSeeded counts clubs discovered via the league seed fallback.
	clubsSeeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tfmkt_refresh_clubs_seeded_total",
			Help: "Total number of clubs discovered from seed leagues",
		},
	)

	// itemFailures counts skipped items by kind (league, club, player).
	itemFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tfmkt_refresh_item_failures_total",
			Help: "Total number of per-item refresh failures",
		},
		[]string{"kind"},
	)
)
