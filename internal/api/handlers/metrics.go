package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SimulationsTotal counts simulation requests by preset and outcome
	SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecgsim_simulations_total",
			Help: "Total number of simulations run",
		},
		[]string{"preset", "status"},
	)

	// SimulationSeconds tracks engine time per run (cache hits excluded)
	SimulationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ecgsim_simulation_seconds",
			Help:    "Time spent synthesizing one record",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	// BeatsTotal counts synthesized beats
	BeatsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecgsim_beats_total",
			Help: "Total number of beats synthesized",
		},
	)
)

func init() {
	prometheus.MustRegister(SimulationsTotal)
	prometheus.MustRegister(SimulationSeconds)
	prometheus.MustRegister(BeatsTotal)
}
