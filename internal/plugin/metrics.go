package plugin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagedeck",
		Subsystem: "plugin",
		Name:      "executions_total",
		Help:      "Plugin executions by plugin id and outcome.",
	}, []string{"plugin", "outcome"})

	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagedeck",
		Subsystem: "plugin",
		Name:      "reloads_total",
		Help:      "Plugin reloads by outcome.",
	}, []string{"outcome"})

	registeredPlugins = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pagedeck",
		Subsystem: "plugin",
		Name:      "registered",
		Help:      "Number of plugins currently registered.",
	})
)
