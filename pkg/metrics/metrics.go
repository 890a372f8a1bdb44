package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbeTotal counts peer reachability probes by outcome
	ProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mkbgp_probe_total",
			Help: "Total number of peer reachability probes",
		},
		[]string{"result"},
	)

	// ProbeDuration tracks how long a single TCP connect attempt took
	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mkbgp_probe_duration_seconds",
			Help:    "Duration of peer TCP connect probes",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// ProbeFallbackTotal counts runs where every probe failed and all peers were reset to active
	ProbeFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mkbgp_probe_fallback_total",
			Help: "Total number of runs where every peer was unreachable",
		},
	)

	// PeersGenerated tracks the number of peers in the last rendered configuration
	PeersGenerated = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mkbgp_peers_generated",
			Help: "Number of peers in the last generated configuration",
		},
		[]string{"family", "passive"},
	)

	// CommunitiesSkipped counts communities that contributed no peers
	CommunitiesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mkbgp_communities_skipped_total",
			Help: "Total number of communities skipped for missing or malformed data",
		},
	)
)

// WriteTextfile writes all registered metrics in the node_exporter
// textfile collector format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
