// Package metrics defines the prometheus instruments of the client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts received state updates (mementos).
	TurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socha_turns_total",
		Help: "Number of state updates received from the server",
	})

	// MoveRequestsTotal counts move requests by outcome.
	MoveRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socha_move_requests_total",
		Help: "Number of move requests answered, by result",
	}, []string{"result"})

	// MoveSelectionDuration tracks how long the strategy took to pick a move.
	// The server's soft timeout is 2 seconds, so the buckets cluster there.
	MoveSelectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "socha_move_selection_duration_seconds",
		Help:    "Time spent selecting a move",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 1.8, 2, 3},
	})

	// PossibleMoves tracks the branching factor seen at move requests.
	PossibleMoves = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "socha_possible_moves",
		Help:    "Number of legal moves available when a move was requested",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 400},
	})

	// GamesTotal counts finished games by own score cause.
	GamesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socha_games_total",
		Help: "Number of finished games, by own score cause",
	}, []string{"cause"})

	// ConnectionUp is 1 while the client is connected to the game server.
	ConnectionUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socha_connection_up",
		Help: "Whether the client currently holds a server connection",
	})
)

// ObserveMoveSelection records one answered move request.
func ObserveMoveSelection(duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	MoveRequestsTotal.WithLabelValues(result).Inc()
	MoveSelectionDuration.Observe(duration.Seconds())
}
