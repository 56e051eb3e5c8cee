package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinksDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_links_dropped_total",
		Help: "Total number of discovery links rejected during graph build, labelled by reason.",
	}, []string{"reason"})

	DiscoveryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_discovery_requests_total",
		Help: "Total number of discovery requests, labelled by outcome.",
	}, []string{"outcome"})

	DiscoveryRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relgraph_discovery_retries_total",
		Help: "Total number of discovery retry attempts after transient failures.",
	})

	DiscoveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relgraph_discovery_duration_ms",
		Help:    "End-to-end discovery request latency in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	SimulationTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relgraph_simulation_ticks_total",
		Help: "Total number of simulation integration steps executed.",
	})

	SimulationSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relgraph_simulation_settled_total",
		Help: "Total number of times a simulation cooled below the settle threshold.",
	})

	RenderOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_render_ops_total",
		Help: "Total number of draw operations emitted to the rendering surface, labelled by kind.",
	}, []string{"kind"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relgraph_active_sessions",
		Help: "Number of currently open engine sessions.",
	})

	PathQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relgraph_path_queries_total",
		Help: "Total number of path discovery queries executed.",
	})
)
