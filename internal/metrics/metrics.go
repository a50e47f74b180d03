// Package metrics registers the server's Prometheus instrumentation on the
// default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "snakearena"

var (
	// SessionsStarted counts game sessions started since boot.
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Game sessions started.",
	})

	// PlayersConnected tracks currently connected player workers.
	PlayersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "players_connected",
		Help:      "Currently connected players.",
	})

	// TicksTotal counts simulation ticks advanced across all workers.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "Simulation ticks advanced.",
	})

	// FramesSent counts frame messages written to clients.
	FramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_sent_total",
		Help:      "Frame messages sent to clients.",
	})

	// DeathsTotal counts snake deaths.
	DeathsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deaths_total",
		Help:      "Snake deaths.",
	})

	// WorkerFailures counts workers aborted by fatal protocol or lookup
	// errors.
	WorkerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_failures_total",
		Help:      "Player workers aborted by fatal errors.",
	})
)

// Handler exposes the default registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}
