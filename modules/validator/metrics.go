package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mpegscan"

var (
	metricStreams = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "streams_total",
		Help:      "Number of streams validated, by result.",
	}, []string{"result"})

	metricFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "failures_total",
		Help:      "Validation failures found, by type.",
	}, []string{"type"})

	metricRegions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "regions_total",
		Help:      "Regions found in validated streams, by kind.",
	}, []string{"kind"})

	metricJunkBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: module,
		Name:      "junk_bytes_total",
		Help:      "Bytes of junk found in validated streams.",
	})
)

const (
	resultValid   = "valid"
	resultInvalid = "invalid"
	resultError   = "error"
)
