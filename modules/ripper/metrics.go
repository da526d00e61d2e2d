package ripper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mpegscan"

var (
	metricTracks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "tracks_total",
		Help:      "Number of tracks started.",
	})

	metricReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "reconnects_total",
		Help:      "Number of times the stream was reopened after ending or failing.",
	})

	metricRegionBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "region_bytes_total",
		Help:      "Stream bytes read, by region kind.",
	}, []string{"kind"})
)
