package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	renderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "choromap_render_total",
		Help: "Render requests by output format and result",
	}, []string{"format", "result"})

	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "choromap_render_duration_seconds",
		Help:    "Time spent drawing and encoding a map",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"format"})

	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "choromap_render_cache_total",
		Help: "Render cache lookups and evictions by result",
	}, []string{"result"})

	topologyReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "choromap_topology_reloads_total",
		Help: "Topology reloads triggered by file changes, by result",
	}, []string{"result"})
)
