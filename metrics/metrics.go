package metrics

import (
	"sync"

	"github.com/jsphweid/topliner/model"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	blocksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topliner",
			Subsystem: "http",
			Name:      "blocks_total",
			Help:      "Blocks processed over HTTP.",
		},
		[]string{"mode"},
	)
	eventsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topliner",
			Subsystem: "http",
			Name:      "events_total",
			Help:      "Events seen over HTTP, by direction and kind.",
		},
		[]string{"direction", "kind"},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "topliner",
			Subsystem: "http",
			Name:      "sessions",
			Help:      "Open processing sessions.",
		},
	)
)

// Register adds the collectors to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(blocksProcessed, eventsProcessed, activeSessions)
	})
}

func ObserveBlock(mode string, in, out []model.Event) {
	blocksProcessed.WithLabelValues(mode).Inc()
	for _, e := range in {
		eventsProcessed.WithLabelValues("in", e.Kind.String()).Inc()
	}
	for _, e := range out {
		eventsProcessed.WithLabelValues("out", e.Kind.String()).Inc()
	}
}

func SetSessions(n int) {
	activeSessions.Set(float64(n))
}
